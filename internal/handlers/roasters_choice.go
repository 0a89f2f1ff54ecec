package handlers

import (
	"context"
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"roasters-choice/internal/alerts"
	"roasters-choice/internal/db"
	"roasters-choice/internal/fault"
	"roasters-choice/internal/pick"
	"roasters-choice/internal/secrets"
	"roasters-choice/internal/shopify"

	"github.com/aws/aws-lambda-go/events"
)

const (
	tagPicked  = "RC_PICKED"
	tagNoteSet = "RC_NOTE_SET"

	defaultCollectionHandle = "single-origin-coffee"
)

// Shared across invocations on a warm instance so the admin token cache
// survives between requests.
var shopClient *shopify.Client

func getClient(ctx context.Context) (*shopify.Client, error) {
	if shopClient != nil {
		return shopClient, nil
	}
	c, err := shopify.NewFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	shopClient = c
	return c, nil
}

func collectionHandle() string {
	if h := strings.TrimSpace(os.Getenv("RC_COLLECTION_HANDLE")); h != "" {
		return h
	}
	return defaultCollectionHandle
}

// RoastersChoice is the webhook entrypoint. Shared-secret gate, then POST
// only, then either the note-repair pass (?mode=note) or the pick pass.
func RoastersChoice(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	expected, err := secrets.Resolve(ctx, "RC_SHARED_SECRET")
	if err != nil || expected == "" {
		return errResp(500, "shared secret not configured")
	}

	incoming := req.Headers["x-rc-token"]
	if incoming == "" || !hmac.Equal([]byte(incoming), []byte(expected)) {
		return errResp(401, "Unauthorized")
	}

	if req.RequestContext.HTTP.Method != "POST" {
		return errResp(405, "Method Not Allowed")
	}

	raw := req.Body
	if req.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return errResp(400, "Invalid JSON")
		}
		raw = string(b)
	}

	var payload struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return errResp(400, "Invalid JSON")
	}
	if payload.OrderID == "" {
		return errResp(400, "Missing order_id")
	}

	c, err := getClient(ctx)
	if err != nil {
		return failure(ctx, err)
	}

	if req.QueryStringParameters["mode"] == "note" {
		return noteMode(ctx, c, payload.OrderID)
	}
	return pickMode(ctx, c, payload.OrderID)
}

// noteMode re-applies the stored pick text to the order note after a
// downstream system has overwritten it.
func noteMode(ctx context.Context, c *shopify.Client, orderID string) (events.APIGatewayV2HTTPResponse, error) {
	// Optional claim so a re-delivered trigger doesn't append twice. When
	// RC_IDEMPOTENCY_TABLE is unset this is a no-op and every invocation
	// re-appends, which is what the upstream Flow expects today.
	dup, err := db.ClaimNoteRepair(ctx, orderID)
	if err != nil {
		log.Printf("roasters-choice: note claim failed, continuing: %v", err)
	}
	if dup {
		return jsonResp(200, map[string]any{"success": true, "mode": "note", "deduped": true})
	}

	pickText, err := shopify.OrderPickText(ctx, c, orderID)
	if err != nil {
		return failure(ctx, err)
	}

	// Pick pass hasn't run yet; exit cleanly so the trigger can retry later.
	if pickText == "" {
		return jsonResp(200, map[string]any{"success": true, "mode": "note", "message": "No pick saved yet"})
	}

	if err := shopify.AppendOrderNote(ctx, c, orderID, pickText); err != nil {
		return failure(ctx, err)
	}
	if err := shopify.AddOrderTags(ctx, c, orderID, []string{tagNoteSet}); err != nil {
		return failure(ctx, err)
	}

	return jsonResp(200, map[string]any{"success": true, "mode": "note"})
}

func pickMode(ctx context.Context, c *shopify.Client, orderID string) (events.APIGatewayV2HTTPResponse, error) {
	order, err := shopify.GetOrder(ctx, c, orderID)
	if err != nil {
		return failure(ctx, err)
	}

	if order.Customer == nil || order.Customer.ID == "" {
		return failure(ctx, fault.New(fault.Conflict, "Order has no customer; cannot enforce repeat protection"))
	}

	size, grind, ok := pick.SizeAndGrind(order.LineItems.Nodes)
	if !ok {
		return failure(ctx, fault.WithDetail(fault.Conflict,
			"Could not determine Size and Grind Size from order line items",
			map[string]any{"order_name": order.Name}))
	}

	key := pick.Key(size, grind)

	lastMap, err := shopify.LastPickMap(ctx, c, order.Customer.ID)
	if err != nil {
		return failure(ctx, err)
	}

	candidates, err := shopify.EligibleInCollection(ctx, c, collectionHandle(), size, grind)
	if err != nil {
		return failure(ctx, err)
	}
	if len(candidates) == 0 {
		return failure(ctx, fault.WithDetail(fault.Conflict, "No eligible coffees found",
			map[string]any{"size": size, "grind": grind}))
	}

	chosen := pick.Choose(candidates, lastMap[key], rand.Intn)

	pickText := fmt.Sprintf("%s — %s / %s", chosen.ProductTitle, size, grind)

	if err := shopify.SetOrderPick(ctx, c, orderID, pickText); err != nil {
		return failure(ctx, err)
	}
	if err := shopify.AddOrderTags(ctx, c, orderID, []string{tagPicked, pick.SafeTag(chosen.ProductHandle)}); err != nil {
		return failure(ctx, err)
	}
	if err := shopify.AppendOrderNote(ctx, c, orderID, pickText); err != nil {
		return failure(ctx, err)
	}

	lastMap[key] = chosen.ProductID
	if err := shopify.SetLastPickMap(ctx, c, order.Customer.ID, lastMap); err != nil {
		return failure(ctx, err)
	}

	return jsonResp(200, map[string]any{
		"success": true,
		"order":   order.Name,
		"pick": map[string]any{
			"product_title":  chosen.ProductTitle,
			"product_handle": chosen.ProductHandle,
			"size":           size,
			"grind":          grind,
		},
	})
}

// failure maps a fault kind to its HTTP status and serializes the error
// body, merging any structured detail fields alongside "error".
func failure(ctx context.Context, err error) (events.APIGatewayV2HTTPResponse, error) {
	log.Printf("roasters-choice: %v", err)

	status := 500
	body := map[string]any{"error": err.Error()}

	var f *fault.Error
	if errors.As(err, &f) {
		switch f.Kind {
		case fault.Auth:
			status = 401
		case fault.Validation:
			status = 400
		case fault.Conflict:
			status = 409
		}
		if extra, ok := f.Detail.(map[string]any); ok {
			body["error"] = f.Msg
			for k, v := range extra {
				body[k] = v
			}
		}
	}

	if status >= 500 {
		alerts.NotifyFailure(ctx, "roasters-choice failure", err.Error())
	}

	return jsonResp(status, body)
}
