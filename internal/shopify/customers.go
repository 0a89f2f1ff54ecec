package shopify

import (
	"context"
	"encoding/json"
)

const lastPickMapQuery = `
query($id: ID!) {
  customer(id: $id) {
    id
    metafield(namespace: "roasters_choice", key: "last_pick_map") { value }
  }
}`

// LastPickMap returns the customer's "size|grind" -> last product id map.
// A missing or unparseable metafield yields an empty map.
func LastPickMap(ctx context.Context, c *Client, customerID string) (map[string]string, error) {
	data, err := PostGraphQL[struct {
		Customer *struct {
			Metafield *struct {
				Value string `json:"value"`
			} `json:"metafield"`
		} `json:"customer"`
	}](ctx, c, lastPickMapQuery, map[string]any{"id": customerID})
	if err != nil {
		return nil, err
	}

	m := map[string]string{}
	if data.Customer == nil || data.Customer.Metafield == nil {
		return m, nil
	}
	if err := json.Unmarshal([]byte(data.Customer.Metafield.Value), &m); err != nil {
		return map[string]string{}, nil
	}
	return m, nil
}

// SetLastPickMap writes the whole map back as one JSON metafield value.
// Read-modify-write with no concurrency check: concurrent updates clobber.
func SetLastPickMap(ctx context.Context, c *Client, customerID string, m map[string]string) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}

	data, err := PostGraphQL[metafieldsSetData](ctx, c, metafieldsSetMutation, map[string]any{
		"metafields": []map[string]any{{
			"ownerId":   customerID,
			"namespace": "roasters_choice",
			"key":       "last_pick_map",
			"type":      "single_line_text_field",
			"value":     string(raw),
		}},
	})
	if err != nil {
		return err
	}
	return userErrorsFault("customer metafieldsSet", data.MetafieldsSet.UserErrors)
}
