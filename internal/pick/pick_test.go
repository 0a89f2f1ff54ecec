package pick

import (
	"testing"

	"roasters-choice/internal/shopify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variant(opts ...shopify.SelectedOption) *shopify.Variant {
	return &shopify.Variant{SelectedOptions: opts}
}

func opt(name, value string) shopify.SelectedOption {
	return shopify.SelectedOption{Name: name, Value: value}
}

func TestSizeAndGrind(t *testing.T) {
	cases := []struct {
		name      string
		items     []shopify.LineItem
		wantSize  string
		wantGrind string
		wantOK    bool
	}{
		{
			name: "grind size option",
			items: []shopify.LineItem{
				{Variant: variant(opt("Size", "12oz"), opt("Grind Size", "Whole Bean"))},
			},
			wantSize:  "12oz",
			wantGrind: "Whole Bean",
			wantOK:    true,
		},
		{
			name: "whole bean or ground fallback",
			items: []shopify.LineItem{
				{Variant: variant(opt("Size", "5lb"), opt("Whole Bean or Ground", "Ground"))},
			},
			wantSize:  "5lb",
			wantGrind: "Ground",
			wantOK:    true,
		},
		{
			name: "grind size preferred over fallback",
			items: []shopify.LineItem{
				{Variant: variant(
					opt("Size", "12oz"),
					opt("Grind Size", "Espresso"),
					opt("Whole Bean or Ground", "Ground"),
				)},
			},
			wantSize:  "12oz",
			wantGrind: "Espresso",
			wantOK:    true,
		},
		{
			name: "first matching line item wins",
			items: []shopify.LineItem{
				{Variant: variant(opt("Flavor", "Hazelnut"))},
				{Variant: nil},
				{Variant: variant(opt("Size", "12oz"), opt("Grind Size", "Whole Bean"))},
				{Variant: variant(opt("Size", "5lb"), opt("Grind Size", "Ground"))},
			},
			wantSize:  "12oz",
			wantGrind: "Whole Bean",
			wantOK:    true,
		},
		{
			name: "size without grind",
			items: []shopify.LineItem{
				{Variant: variant(opt("Size", "12oz"))},
			},
		},
		{
			name: "grind without size",
			items: []shopify.LineItem{
				{Variant: variant(opt("Grind Size", "Whole Bean"))},
			},
		},
		{
			name:  "no line items",
			items: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			size, grind, ok := SizeAndGrind(tc.items)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantSize, size)
			assert.Equal(t, tc.wantGrind, grind)
		})
	}
}

func TestChooseExcludesLastPick(t *testing.T) {
	kenya := shopify.Candidate{ProductID: "gid://shopify/Product/1", ProductTitle: "Kenya AA"}
	huila := shopify.Candidate{ProductID: "gid://shopify/Product/2", ProductTitle: "Colombia Huila"}
	sidamo := shopify.Candidate{ProductID: "gid://shopify/Product/3", ProductTitle: "Ethiopia Sidamo"}

	// With the last pick excluded, every possible roll lands elsewhere.
	for i := 0; i < 2; i++ {
		roll := i
		got := Choose([]shopify.Candidate{kenya, huila, sidamo}, kenya.ProductID, func(n int) int {
			require.Equal(t, 2, n)
			return roll
		})
		assert.NotEqual(t, kenya.ProductID, got.ProductID)
	}
}

func TestChooseSoleCandidateIsLastPick(t *testing.T) {
	kenya := shopify.Candidate{ProductID: "gid://shopify/Product/1", ProductTitle: "Kenya AA"}

	got := Choose([]shopify.Candidate{kenya}, kenya.ProductID, func(n int) int {
		require.Equal(t, 1, n)
		return 0
	})
	assert.Equal(t, kenya.ProductID, got.ProductID)
}

func TestChooseNoLastPick(t *testing.T) {
	kenya := shopify.Candidate{ProductID: "gid://shopify/Product/1"}
	huila := shopify.Candidate{ProductID: "gid://shopify/Product/2"}

	got := Choose([]shopify.Candidate{kenya, huila}, "", func(n int) int {
		require.Equal(t, 2, n)
		return 1
	})
	assert.Equal(t, huila.ProductID, got.ProductID)
}

func TestSafeTag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"kenya-aa", "RC_kenya-aa"},
		{"Ethiopia Yirgacheffe!!", "RC_ethiopia-yirgacheffe"},
		{"Guatemala / Antigua (Washed)", "RC_guatemala-antigua-washed"},
		{"", "RC_"},
		{"!!!", "RC_"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, SafeTag(tc.in), "input %q", tc.in)
	}

	long := SafeTag("a-very-long-product-handle-that-keeps-going-and-going-and-going")
	assert.Len(t, long, 50)
	assert.Equal(t, "RC_a-very-long-product-handle-that-keeps-going-and", long)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "12oz|Whole Bean", Key("12oz", "Whole Bean"))
}
