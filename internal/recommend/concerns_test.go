package recommend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tayloree/skinrec/internal/recommend"
)

func TestExpandConcerns_AcneKeywords(t *testing.T) {
	got := recommend.ExpandConcerns([]string{"acne"}, nil)
	for _, kw := range []string{"salicylic", "benzoyl", "niacinamide", "tea tree", "sulfur"} {
		assert.Contains(t, got, kw)
	}
}

func TestExpandConcerns_AcneKeywordsWithCatalog(t *testing.T) {
	got := recommend.ExpandConcerns([]string{" ACNE "}, []string{"water", "anti-acne complex"})
	assert.Contains(t, got, "salicylic")
	assert.Contains(t, got, "sulfur")
	assert.Contains(t, got, "anti-acne complex")
	assert.NotContains(t, got, "water")
}

func TestExpandConcerns_CatalogSubstringForUnknownConcern(t *testing.T) {
	got := recommend.ExpandConcerns([]string{"butter"}, []string{"shea butter", "cocoa butter", "glycerin"})
	assert.Equal(t, []string{"cocoa butter", "shea butter"}, got)
}

func TestExpandConcerns_FallsBackToRawTerms(t *testing.T) {
	got := recommend.ExpandConcerns([]string{"Nonexistent Concern", "  "}, []string{"water"})
	assert.Equal(t, []string{"nonexistent concern"}, got)
}

func TestExpandConcerns_EmptyInput(t *testing.T) {
	assert.Empty(t, recommend.ExpandConcerns(nil, []string{"water"}))
	assert.Empty(t, recommend.ExpandConcerns([]string{"", "   "}, []string{"water"}))
}

func TestExpandConcerns_SortedAndUnique(t *testing.T) {
	got := recommend.ExpandConcerns([]string{"acne", "pores", "oiliness"}, nil)
	assert.IsIncreasing(t, got)
}

func TestSupportedConcerns(t *testing.T) {
	concerns := recommend.SupportedConcerns()
	assert.Len(t, concerns, 9)
	assert.Equal(t, "acne", concerns[0])
	for _, c := range concerns {
		assert.True(t, recommend.IsKnownConcern(c), c)
		assert.NotEmpty(t, recommend.ConcernKeywords(c), c)
	}

	concerns[0] = "mutated"
	assert.Equal(t, "acne", recommend.SupportedConcerns()[0])
}

func TestConcernKeywords_Unknown(t *testing.T) {
	assert.Nil(t, recommend.ConcernKeywords("freckles"))
	assert.False(t, recommend.IsKnownConcern("freckles"))
	assert.True(t, recommend.IsKnownConcern(" Dark Circles "))
}

func TestNormalizeTerms(t *testing.T) {
	got := recommend.NormalizeTerms([]string{" Acne", "", "DRYNESS ", "acne"})
	assert.Equal(t, []string{"acne", "dryness", "acne"}, got)
}
