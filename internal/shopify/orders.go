package shopify

import (
	"context"

	"roasters-choice/internal/fault"
)

// Option names used on coffee variants.
const (
	OptionSize      = "Size"
	OptionGrindSize = "Grind Size"
	OptionWholeBean = "Whole Bean or Ground"
)

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ProductRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

type Variant struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
	Product         ProductRef       `json:"product"`
}

type LineItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Quantity int      `json:"quantity"`
	Variant  *Variant `json:"variant"`
}

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Order struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Customer  *Customer `json:"customer"`
	LineItems struct {
		Nodes []LineItem `json:"nodes"`
	} `json:"lineItems"`
}

// Option returns the value of the named selected option, or "".
func (v *Variant) Option(name string) string {
	for _, o := range v.SelectedOptions {
		if o.Name == name {
			return o.Value
		}
	}
	return ""
}

const getOrderQuery = `
query($id: ID!) {
  order(id: $id) {
    id
    name
    customer { id email }
    lineItems(first: 50) {
      nodes {
        id
        title
        quantity
        variant {
          id
          title
          selectedOptions { name value }
          product { id title handle }
        }
      }
    }
  }
}`

func GetOrder(ctx context.Context, c *Client, orderID string) (*Order, error) {
	data, err := PostGraphQL[struct {
		Order *Order `json:"order"`
	}](ctx, c, getOrderQuery, map[string]any{"id": orderID})
	if err != nil {
		return nil, err
	}
	if data.Order == nil {
		return nil, fault.New(fault.Vendor, "order not found")
	}
	return data.Order, nil
}

const metafieldsSetMutation = `
mutation($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    userErrors { field message }
  }
}`

type metafieldsSetData struct {
	MetafieldsSet struct {
		UserErrors []UserError `json:"userErrors"`
	} `json:"metafieldsSet"`
}

// SetOrderPick stores the pick text as the order's pick metafield.
func SetOrderPick(ctx context.Context, c *Client, orderID, pickText string) error {
	data, err := PostGraphQL[metafieldsSetData](ctx, c, metafieldsSetMutation, map[string]any{
		"metafields": []map[string]any{{
			"ownerId":   orderID,
			"namespace": "custom",
			"key":       "roasters_choice_pick",
			"type":      "single_line_text_field",
			"value":     pickText,
		}},
	})
	if err != nil {
		return err
	}
	return userErrorsFault("order metafieldsSet", data.MetafieldsSet.UserErrors)
}

const orderPickTextQuery = `
query($id: ID!) {
  order(id: $id) {
    metafield(namespace: "custom", key: "roasters_choice_pick") {
      value
    }
  }
}`

// OrderPickText reads back a previously stored pick, "" when absent.
func OrderPickText(ctx context.Context, c *Client, orderID string) (string, error) {
	data, err := PostGraphQL[struct {
		Order *struct {
			Metafield *struct {
				Value string `json:"value"`
			} `json:"metafield"`
		} `json:"order"`
	}](ctx, c, orderPickTextQuery, map[string]any{"id": orderID})
	if err != nil {
		return "", err
	}
	if data.Order == nil || data.Order.Metafield == nil {
		return "", nil
	}
	return data.Order.Metafield.Value, nil
}

const tagsAddMutation = `
mutation($id: ID!, $tags: [String!]!) {
  tagsAdd(id: $id, tags: $tags) {
    userErrors { field message }
  }
}`

func AddOrderTags(ctx context.Context, c *Client, orderID string, tags []string) error {
	data, err := PostGraphQL[struct {
		TagsAdd struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"tagsAdd"`
	}](ctx, c, tagsAddMutation, map[string]any{"id": orderID, "tags": tags})
	if err != nil {
		return err
	}
	return userErrorsFault("tagsAdd", data.TagsAdd.UserErrors)
}

const orderNoteQuery = `
query($id: ID!) {
  order(id: $id) {
    id
    note
  }
}`

const orderUpdateMutation = `
mutation($input: OrderInput!) {
  orderUpdate(input: $input) {
    order { id note }
    userErrors { field message }
  }
}`

// AppendOrderNote reads the current note and writes it back with noteText
// appended. Read-then-write, not atomic: concurrent appends are
// last-write-wins.
func AppendOrderNote(ctx context.Context, c *Client, orderID, noteText string) error {
	existing, err := PostGraphQL[struct {
		Order *struct {
			ID   string `json:"id"`
			Note string `json:"note"`
		} `json:"order"`
	}](ctx, c, orderNoteQuery, map[string]any{"id": orderID})
	if err != nil {
		return err
	}

	updated := noteText
	if existing.Order != nil && existing.Order.Note != "" {
		updated = existing.Order.Note + "\n\n" + noteText
	}

	data, err := PostGraphQL[struct {
		OrderUpdate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"orderUpdate"`
	}](ctx, c, orderUpdateMutation, map[string]any{
		"input": map[string]any{
			"id":   orderID,
			"note": updated,
		},
	})
	if err != nil {
		return err
	}
	return userErrorsFault("orderUpdate", data.OrderUpdate.UserErrors)
}
