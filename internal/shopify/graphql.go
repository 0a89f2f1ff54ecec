package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"roasters-choice/internal/fault"
)

type GraphQLError struct {
	Message    string `json:"message"`
	Path       []any  `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// UserError is a GraphQL mutation-level error.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// PostGraphQL issues an authenticated Admin GraphQL call and returns the data
// payload. Any non-2xx status or GraphQL-level error array becomes a Vendor
// fault carrying the serialized detail. No retry.
func PostGraphQL[T any](ctx context.Context, c *Client, query string, variables any) (T, error) {
	var zero T

	token, err := c.AccessToken(ctx)
	if err != nil {
		return zero, err
	}

	endpoint := fmt.Sprintf("%s/admin/api/%s/graphql.json", c.origin(), c.APIVersion)

	body := map[string]any{
		"query":     query,
		"variables": variables,
	}
	b, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	req.Header.Set("content-type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", token)

	res, err := c.httpClient().Do(req)
	if err != nil {
		return zero, fault.New(fault.Vendor, "graphql request failed: %v", err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)

	var out GraphQLResponse[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fault.New(fault.Vendor, "graphql error: %d %s", res.StatusCode, string(raw))
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 || len(out.Errors) > 0 {
		detail := any(out.Errors)
		if len(out.Errors) == 0 {
			detail = string(raw)
		}
		return zero, fault.WithDetail(fault.Vendor, fmt.Sprintf("graphql error: %d", res.StatusCode), detail)
	}

	return out.Data, nil
}

// userErrorsFault converts mutation userErrors into a Vendor fault, or nil.
func userErrorsFault(op string, errs []UserError) error {
	if len(errs) == 0 {
		return nil
	}
	return fault.WithDetail(fault.Vendor, op+" errors", errs)
}
