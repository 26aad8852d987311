package cmd

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/recommend"
)

func tuiTestCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Product{
		{Name: "Clear Gel", Brand: "Acme", Category: "Cleanser", SkinType: "oily", Ingredients: []string{"salicylic acid", "niacinamide"}, GoodStuff: true, Rating: 4.5},
		{Name: "Pore Serum", Brand: "Dewy", Category: "Serum", SkinType: "combination, oily", Ingredients: []string{"niacinamide", "zinc"}, GoodStuff: true, Rating: 4.8},
		{Name: "Spot Wash", Brand: "Dewy", Category: "Cleanser", SkinType: "oily", Ingredients: []string{"benzoyl peroxide"}, GoodStuff: true, Rating: 4.1},
		{Name: "Rich Cream", Brand: "Dewy", Category: "Moisturizer", SkinType: "dry", Ingredients: []string{"glycerin", "shea butter"}, GoodStuff: true, Rating: 4.2},
	})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedTUIModel(t *testing.T, q recommend.Query) productsTUIModel {
	t.Helper()
	m := newLoadingProductsTUIModel(tuiLoadConfig{ctx: context.Background(), initialQuery: q})

	next, _ := m.Update(tuiDataLoadedMsg{catalog: tuiTestCatalog(), initialQuery: q})
	next, _ = next.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	model, ok := next.(productsTUIModel)
	require.True(t, ok)
	return model
}

func TestBuildGroupedListItems_SectionsFollowRanking(t *testing.T) {
	products := []catalog.Product{
		{Name: "Pore Serum", Category: "serum"},
		{Name: "Clear Gel", Category: "cleanser"},
		{Name: "Night Serum", Category: "serum"},
		{Name: "Mystery"},
	}

	items, starts := buildGroupedListItems(products, nil)

	require.Len(t, items, 7)
	assert.Equal(t, []int{0, 3, 5}, starts)

	header, ok := items[0].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, "Serum", header.name)
	assert.Equal(t, 2, header.count)
	assert.Equal(t, 1, header.ordinal)

	second, ok := items[2].(tuiProductItem)
	require.True(t, ok)
	assert.Equal(t, "Night Serum", second.product.Name)
	assert.Equal(t, 3, second.rank)

	header2, ok := items[3].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, "Cleanser", header2.name)

	header3, ok := items[5].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, "Other", header3.name)
}

func TestBuildGroupedListItems_Empty(t *testing.T) {
	items, starts := buildGroupedListItems(nil, nil)
	assert.Empty(t, items)
	assert.Empty(t, starts)
}

func TestBuildTUIProductItem_DescribesMatches(t *testing.T) {
	p := catalog.Product{Name: "Clear Gel", Brand: "Acme", Category: "Cleanser", Ingredients: []string{"salicylic acid", "water"}, Rating: 4.5}

	item := buildTUIProductItem(p, 1, "Cleanser", []string{"salicylic"})

	assert.Equal(t, "1. Clear Gel", item.title)
	assert.Contains(t, item.description, "★ 4.5")
	assert.Contains(t, item.description, "Acme")
	assert.Contains(t, item.description, "1 match(es)")
	assert.Contains(t, item.filterValue, "salicylic acid")
}

func TestBuildCountedChoices_OrdersByCountAndIncludesCurrent(t *testing.T) {
	choices := buildCountedChoices(map[string]int{"Serum": 1, "Cleanser": 3, "Toner": 1}, "Mask")

	assert.Equal(t, "", choices[0])
	assert.Equal(t, "Cleanser", choices[1])
	assert.Contains(t, choices, "Mask")
	assert.Contains(t, choices, "Serum")
	assert.Len(t, choices, 5)
}

func TestBuildSkinTypeChoices_SplitsCompoundTypes(t *testing.T) {
	choices := buildSkinTypeChoices(tuiTestCatalog(), "sensitive")

	assert.Equal(t, []string{"all", "oily", "combination", "dry", "sensitive"}, choices)
}

func TestBuildLimitChoices(t *testing.T) {
	assert.Equal(t, []int{5, 10, 25, 0}, buildLimitChoices(5))
	assert.Equal(t, []int{7, 5, 10, 25, 0}, buildLimitChoices(7))
	assert.Equal(t, []int{5, 10, 25, 0}, buildLimitChoices(0))
}

func TestCanonicalizeTUIQuery(t *testing.T) {
	q := canonicalizeTUIQuery(recommend.Query{SkinType: "  ", Sort: "Name", Brand: " Acme "})

	assert.Equal(t, catalog.SkinTypeAll, q.SkinType)
	assert.Equal(t, recommend.SortBrand, q.Sort)
	assert.Equal(t, "Acme", q.Brand)
}

func TestHumanizeLabel(t *testing.T) {
	assert.Equal(t, "Eye Cream", humanizeLabel("eye_cream"))
	assert.Equal(t, "Face Mask", humanizeLabel("FACE-mask"))
	assert.Equal(t, "Other", humanizeLabel(" "))
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, "salicylic acid\nniacinamide", wrapText("salicylic acid niacinamide", 14))
	assert.Equal(t, "", wrapText("   ", 20))
}

func TestProductsTUIModel_LoadedShowsPrimaryRecommendations(t *testing.T) {
	m := loadedTUIModel(t, recommend.Query{SkinType: "oily", Concerns: []string{"acne"}, Sort: recommend.SortRating, Limit: 5})

	assert.False(t, m.loading)
	assert.Equal(t, recommend.TierPrimary, m.result.Tier)
	assert.Equal(t, 3, m.visibleProducts)

	selected, ok := m.list.SelectedItem().(tuiProductItem)
	require.True(t, ok)
	assert.Equal(t, "Clear Gel", selected.product.Name)

	view := m.View()
	assert.Contains(t, view, recommend.MessagePrimary)
	assert.Contains(t, view, "Pore Serum")
}

func TestProductsTUIModel_InlineCyclingAndReset(t *testing.T) {
	m := loadedTUIModel(t, recommend.Query{SkinType: "oily", Concerns: []string{"acne"}, Sort: recommend.SortRating, Limit: 5})

	next, _ := m.Update(keyRunes("s"))
	m = next.(productsTUIModel)
	assert.Equal(t, recommend.SortBrand, m.query.Sort)

	next, _ = m.Update(keyRunes("l"))
	m = next.(productsTUIModel)
	assert.Equal(t, 10, m.query.Limit)

	next, _ = m.Update(keyRunes("c"))
	m = next.(productsTUIModel)
	assert.Equal(t, "Cleanser", m.query.Category)
	assert.Equal(t, 2, m.visibleProducts)

	next, _ = m.Update(keyRunes("r"))
	m = next.(productsTUIModel)
	assert.Equal(t, recommend.SortRating, m.query.Sort)
	assert.Equal(t, "", m.query.Category)
	assert.Equal(t, 5, m.query.Limit)
	assert.Equal(t, 3, m.visibleProducts)
}

func TestProductsTUIModel_SkinTypeCycleFallsBack(t *testing.T) {
	m := loadedTUIModel(t, recommend.Query{SkinType: "oily", Concerns: []string{"acne"}, Sort: recommend.SortRating})

	// oily -> combination -> dry
	for i := 0; i < 2; i++ {
		next, _ := m.Update(keyRunes("t"))
		m = next.(productsTUIModel)
	}
	assert.Equal(t, "dry", m.query.SkinType)
	assert.Equal(t, recommend.TierFallback, m.result.Tier)
}

func TestProductsTUIModel_SectionJump(t *testing.T) {
	m := loadedTUIModel(t, recommend.Query{SkinType: "oily", Concerns: []string{"acne"}, Sort: recommend.SortRating})
	require.Len(t, m.groupStarts, 2)

	next, _ := m.Update(keyRunes("]"))
	m = next.(productsTUIModel)

	selected, ok := m.list.SelectedItem().(tuiProductItem)
	require.True(t, ok)
	assert.Equal(t, "Serum", selected.group)
	assert.Equal(t, "Pore Serum", selected.product.Name)
}

func TestProductsTUIModel_TabSwitchesFocus(t *testing.T) {
	m := loadedTUIModel(t, recommend.Query{SkinType: "oily", Concerns: []string{"acne"}})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(productsTUIModel)
	assert.Equal(t, tuiFocusDetail, m.focus)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(productsTUIModel)
	assert.Equal(t, tuiFocusList, m.focus)
}

func TestProductsTUIModel_LoadErrorQuits(t *testing.T) {
	m := newLoadingProductsTUIModel(tuiLoadConfig{ctx: context.Background()})

	next, cmd := m.Update(tuiDataLoadErrMsg{err: errors.New("boom")})
	model := next.(productsTUIModel)

	assert.EqualError(t, model.fatalErr, "boom")
	assert.NotNil(t, cmd)
}

func TestProductsTUIModel_TooSmall(t *testing.T) {
	m := loadedTUIModel(t, recommend.Query{SkinType: "oily", Concerns: []string{"acne"}})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Contains(t, next.View(), "Terminal too small")
}

func TestComputeTUILayout(t *testing.T) {
	l := computeTUILayout(120, 40, false)
	assert.False(t, l.tooSmall)
	assert.Equal(t, 51, l.listWidth)
	assert.Equal(t, 68, l.detailWidth)
	assert.Equal(t, 34, l.bodyHeight)

	withHelp := computeTUILayout(120, 40, true)
	assert.Equal(t, 29, withHelp.bodyHeight)

	assert.True(t, computeTUILayout(80, 40, false).tooSmall)
	assert.True(t, computeTUILayout(120, 10, false).tooSmall)
}

func TestProductsTUIModel_SectionJumpWrapsBackwards(t *testing.T) {
	m := loadedTUIModel(t, recommend.Query{SkinType: "oily", Concerns: []string{"acne"}, Sort: recommend.SortRating})

	next, _ := m.Update(keyRunes("["))
	m = next.(productsTUIModel)

	selected, ok := m.list.SelectedItem().(tuiProductItem)
	require.True(t, ok)
	assert.Equal(t, "Serum", selected.group)
}
