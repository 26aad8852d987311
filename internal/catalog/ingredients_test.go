package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/skinrec/internal/catalog"
)

func TestParseIngredientList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`['Water', 'Glycerin', 'niacinamide']`, []string{"glycerin", "niacinamide", "water"}},
		{`["Shea Butter", 'tea tree oil']`, []string{"shea butter", "tea tree oil"}},
		{`('a', "b",)`, []string{"a", "b"}},
		{`['it\'s', 'x']`, []string{"it's", "x"}},
		{`['salicylic acid', 'salicylic acid', '  ']`, []string{"salicylic acid"}},
		{`[]`, nil},
		{``, nil},
		{`   `, nil},
		{`water, Glycerin ,, zinc`, []string{"glycerin", "water", "zinc"}},
		{`[water, 'aloe']`, []string{"aloe", "water"}},
	}
	for _, tt := range tests {
		got, err := catalog.ParseIngredientList(tt.input)
		require.NoError(t, err, "ParseIngredientList(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseIngredientList(%q)", tt.input)
	}
}

func TestParseIngredientList_NeverEvaluates(t *testing.T) {
	got, err := catalog.ParseIngredientList(`__import__('os').system('rm -rf /')`)
	// Not a list literal, so it is treated as a plain comma-separated string.
	require.NoError(t, err)
	assert.Equal(t, []string{"__import__('os').system('rm -rf /')"}, got)

	_, err = catalog.ParseIngredientList(`[__import__('os').system('x')]`)
	assert.ErrorIs(t, err, catalog.ErrMalformedList)
}

func TestParseIngredientList_Malformed(t *testing.T) {
	inputs := []string{
		`['water', 'glycerin'`,
		`['water`,
		`[['nested']]`,
		`['a' 'b']`,
	}
	for _, in := range inputs {
		_, err := catalog.ParseIngredientList(in)
		assert.ErrorIs(t, err, catalog.ErrMalformedList, "input %q", in)
	}
}

func TestNormalizeIngredients(t *testing.T) {
	got := catalog.NormalizeIngredients([]string{" Zinc ", "zinc", "", "Aloe"})
	assert.Equal(t, []string{"aloe", "zinc"}, got)
	assert.Nil(t, catalog.NormalizeIngredients([]string{" ", ""}))
}
