package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/recommend"
)

func TestConcernNotes_FlagsUnknownTermsOnly(t *testing.T) {
	c := tuiTestCatalog()

	notes := concernNotes([]string{"acne", "acnee", "glyc", ""}, c)

	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "concern `acnee` is not a supported concern")
	assert.Contains(t, notes[0], "did you mean `acne`?")
}

func TestConcernNotes_NoSuggestionForGibberish(t *testing.T) {
	notes := concernNotes([]string{"qqqqqqqq"}, catalog.New(nil))

	require.Len(t, notes, 1)
	assert.NotContains(t, notes[0], "did you mean")
}

func TestSuggestConcern(t *testing.T) {
	got, ok := suggestConcern("drk")
	assert.True(t, ok)
	assert.Equal(t, "dark circles", got)

	got, ok = suggestConcern("wrinkels")
	assert.True(t, ok)
	assert.Equal(t, "wrinkles", got)
}

func TestSkinTypeCounts_SplitsAndSkipsAll(t *testing.T) {
	c := catalog.New([]catalog.Product{
		{Name: "A", SkinType: "combination, oily"},
		{Name: "B", SkinType: "oily"},
		{Name: "C", SkinType: "all"},
		{Name: "D", SkinType: "Dry"},
	})

	assert.Equal(t, map[string]int{"combination": 1, "oily": 2, "dry": 1}, skinTypeCounts(c))
}

func TestTierRank(t *testing.T) {
	assert.Less(t, tierRank(recommend.TierPrimary), tierRank(recommend.TierFallback))
	assert.Less(t, tierRank(recommend.TierFallback), tierRank(recommend.TierNone))
}

func TestTopLabel(t *testing.T) {
	assert.Equal(t, "", topLabel(compareSkinTypeResult{}))
	assert.Equal(t, "Clear Gel (4.5)", topLabel(compareSkinTypeResult{TopProduct: "Clear Gel", TopRating: 4.5}))
}
