// Package pick holds the Roaster's Choice selection logic: reading the
// requested size/grind off an order's line items, narrowing candidates so a
// customer doesn't get the same coffee twice in a row, and choosing one.
package pick

import (
	"regexp"
	"strings"

	"roasters-choice/internal/shopify"
)

// Key is the customer last-pick map key for a size/grind pair.
func Key(size, grind string) string {
	return size + "|" + grind
}

// SizeAndGrind scans line items in order and returns the first variant's
// Size plus grind value, preferring "Grind Size" over "Whole Bean or Ground".
func SizeAndGrind(items []shopify.LineItem) (size, grind string, ok bool) {
	for _, li := range items {
		if li.Variant == nil {
			continue
		}
		size = li.Variant.Option(shopify.OptionSize)
		grind = li.Variant.Option(shopify.OptionGrindSize)
		if grind == "" {
			grind = li.Variant.Option(shopify.OptionWholeBean)
		}
		if size != "" && grind != "" {
			return size, grind, true
		}
	}
	return "", "", false
}

// Choose selects one candidate uniformly via intn. When the customer's last
// pick is among multiple candidates it is excluded, but never down to zero.
// Candidates must be non-empty.
func Choose(candidates []shopify.Candidate, lastProductID string, intn func(n int) int) shopify.Candidate {
	if lastProductID != "" && len(candidates) > 1 {
		filtered := make([]shopify.Candidate, 0, len(candidates))
		for _, c := range candidates {
			if c.ProductID != lastProductID {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	return candidates[intn(len(candidates))]
}

var tagRun = regexp.MustCompile(`[^a-z0-9-_]+`)

// SafeTag turns a product handle into an RC_ order tag: lowercased, runs
// outside [a-z0-9-_] collapsed to one hyphen, capped at 50 characters total.
func SafeTag(s string) string {
	t := tagRun.ReplaceAllString(strings.ToLower(s), "-")
	t = "RC_" + strings.Trim(t, "-")
	if len(t) > 50 {
		t = t[:50]
	}
	return t
}
