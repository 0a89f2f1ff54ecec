package shopify

import (
	"context"
	"slices"

	"roasters-choice/internal/fault"
)

// Products carrying this tag never qualify for a pick.
const ExcludeTag = "exclude_roasters_choice"

// Candidate is a product with a variant matching the requested size/grind.
type Candidate struct {
	ProductID     string `json:"product_id"`
	ProductTitle  string `json:"product_title"`
	ProductHandle string `json:"product_handle"`
	VariantID     string `json:"variant_id"`
}

const collectionProductsQuery = `
query($handle: String!, $cursor: String) {
  collectionByHandle(handle: $handle) {
    id
    title
    products(first: 100, after: $cursor) {
      pageInfo { hasNextPage endCursor }
      nodes {
        id
        title
        handle
        status
        tags
        variants(first: 100) {
          nodes {
            id
            title
            availableForSale
            selectedOptions { name value }
          }
        }
      }
    }
  }
}`

type collectionProduct struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Handle   string   `json:"handle"`
	Status   string   `json:"status"`
	Tags     []string `json:"tags"`
	Variants struct {
		Nodes []struct {
			ID               string           `json:"id"`
			Title            string           `json:"title"`
			AvailableForSale bool             `json:"availableForSale"`
			SelectedOptions  []SelectedOption `json:"selectedOptions"`
		} `json:"nodes"`
	} `json:"variants"`
}

type collectionPage struct {
	CollectionByHandle *struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Products struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Nodes []collectionProduct `json:"nodes"`
		} `json:"products"`
	} `json:"collectionByHandle"`
}

// EligibleInCollection pages through the collection and keeps every active,
// non-excluded product with an available variant whose Size and
// "Whole Bean or Ground" options equal the requested values.
func EligibleInCollection(ctx context.Context, c *Client, handle, size, grind string) ([]Candidate, error) {
	var cursor *string
	var candidates []Candidate

	for {
		data, err := PostGraphQL[collectionPage](ctx, c, collectionProductsQuery, map[string]any{
			"handle": handle,
			"cursor": cursor,
		})
		if err != nil {
			return nil, err
		}

		col := data.CollectionByHandle
		if col == nil {
			return nil, fault.New(fault.Vendor, "collection not found: %s", handle)
		}

		page := col.Products
		for _, p := range page.Nodes {
			if p.Status != "ACTIVE" {
				continue
			}
			if slices.Contains(p.Tags, ExcludeTag) {
				continue
			}

			for _, v := range p.Variants.Nodes {
				if !v.AvailableForSale {
					continue
				}
				vv := Variant{SelectedOptions: v.SelectedOptions}
				if vv.Option(OptionSize) != size || vv.Option(OptionWholeBean) != grind {
					continue
				}
				candidates = append(candidates, Candidate{
					ProductID:     p.ID,
					ProductTitle:  p.Title,
					ProductHandle: p.Handle,
					VariantID:     v.ID,
				})
				break
			}
		}

		if !page.PageInfo.HasNextPage {
			return candidates, nil
		}
		next := page.PageInfo.EndCursor
		cursor = &next
	}
}
