package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productNode(id, title, handle, status string, tags []string, variants ...map[string]any) map[string]any {
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":     id,
		"title":  title,
		"handle": handle,
		"status": status,
		"tags":   tags,
		"variants": map[string]any{
			"nodes": variants,
		},
	}
}

func coffeeVariant(id string, available bool, size, grind string) map[string]any {
	return map[string]any{
		"id":               id,
		"title":            size + " / " + grind,
		"availableForSale": available,
		"selectedOptions": []map[string]any{
			{"name": "Size", "value": size},
			{"name": "Whole Bean or Ground", "value": grind},
		},
	}
}

func collectionPageBody(hasNext bool, endCursor string, nodes ...map[string]any) string {
	if nodes == nil {
		nodes = []map[string]any{}
	}
	b, _ := json.Marshal(map[string]any{
		"data": map[string]any{
			"collectionByHandle": map[string]any{
				"id":    "gid://shopify/Collection/1",
				"title": "Single Origin Coffee",
				"products": map[string]any{
					"pageInfo": map[string]any{"hasNextPage": hasNext, "endCursor": endCursor},
					"nodes":    nodes,
				},
			},
		},
	})
	return string(b)
}

func TestEligibleInCollectionPaginatesAndFilters(t *testing.T) {
	srv := fakeAdmin(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Handle string  `json:"handle"`
				Cursor *string `json:"cursor"`
			} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "single-origin-coffee", req.Variables.Handle)

		if req.Variables.Cursor == nil {
			fmt.Fprint(w, collectionPageBody(true, "page-2",
				productNode("gid://shopify/Product/1", "Kenya AA", "kenya-aa", "ACTIVE", nil,
					coffeeVariant("gid://shopify/ProductVariant/11", true, "12oz", "Whole Bean")),
				// draft product, skipped
				productNode("gid://shopify/Product/2", "Honduras Marcala", "honduras-marcala", "DRAFT", nil,
					coffeeVariant("gid://shopify/ProductVariant/21", true, "12oz", "Whole Bean")),
				// excluded by tag
				productNode("gid://shopify/Product/3", "House Blend", "house-blend", "ACTIVE", []string{"exclude_roasters_choice"},
					coffeeVariant("gid://shopify/ProductVariant/31", true, "12oz", "Whole Bean")),
			))
			return
		}

		require.Equal(t, "page-2", *req.Variables.Cursor)
		fmt.Fprint(w, collectionPageBody(false, "",
			// sold out variant, skipped
			productNode("gid://shopify/Product/4", "Peru Cajamarca", "peru-cajamarca", "ACTIVE", nil,
				coffeeVariant("gid://shopify/ProductVariant/41", false, "12oz", "Whole Bean")),
			// wrong size, skipped
			productNode("gid://shopify/Product/5", "Brazil Cerrado", "brazil-cerrado", "ACTIVE", nil,
				coffeeVariant("gid://shopify/ProductVariant/51", true, "5lb", "Whole Bean")),
			// second match, picked up from page two
			productNode("gid://shopify/Product/6", "Ethiopia Sidamo", "ethiopia-sidamo", "ACTIVE", nil,
				coffeeVariant("gid://shopify/ProductVariant/61", true, "12oz", "Ground"),
				coffeeVariant("gid://shopify/ProductVariant/62", true, "12oz", "Whole Bean")),
		))
	})
	defer srv.Close()

	now := time.Now()
	c := testClient(t, srv.URL, &now)

	got, err := EligibleInCollection(context.Background(), c, "single-origin-coffee", "12oz", "Whole Bean")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Candidate{
		ProductID:     "gid://shopify/Product/1",
		ProductTitle:  "Kenya AA",
		ProductHandle: "kenya-aa",
		VariantID:     "gid://shopify/ProductVariant/11",
	}, got[0])
	assert.Equal(t, "gid://shopify/ProductVariant/62", got[1].VariantID)
}

func TestEligibleInCollectionMissingCollection(t *testing.T) {
	srv := fakeAdmin(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"collectionByHandle":null}}`)
	})
	defer srv.Close()

	now := time.Now()
	c := testClient(t, srv.URL, &now)

	_, err := EligibleInCollection(context.Background(), c, "nope", "12oz", "Whole Bean")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection not found: nope")
}
