package recommend

import (
	"strings"

	"github.com/tayloree/skinrec/internal/catalog"
)

// Points awarded per match.
const (
	KeywordPoints = 3
	ConcernPoints = 1
)

// Filters are the hard constraints of a query. All values are expected to
// be normalized (trimmed, lowercase); an empty Brand or Category is unset.
type Filters struct {
	Avoid    []string
	Brand    string
	Category string
}

// Disqualified reports whether a hard filter rejects the product.
func Disqualified(p catalog.Product, f Filters) bool {
	if f.Brand != "" && !strings.Contains(strings.ToLower(p.Brand), f.Brand) {
		return true
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(p.Category), f.Category) {
		return true
	}
	for _, a := range f.Avoid {
		if anyIngredientContains(p.Ingredients, a) {
			return true
		}
	}
	return false
}

// Score computes a product's relevance. Disqualification is checked first
// and always yields 0. Otherwise each keyword found in any ingredient adds
// KeywordPoints once, and each concern found in the category or name adds
// ConcernPoints.
func Score(p catalog.Product, keywords, concerns []string, f Filters) int {
	if Disqualified(p, f) {
		return 0
	}

	score := 0
	for _, kw := range keywords {
		if anyIngredientContains(p.Ingredients, kw) {
			score += KeywordPoints
		}
	}

	if len(concerns) > 0 {
		category := strings.ToLower(p.Category)
		name := strings.ToLower(p.Name)
		for _, c := range concerns {
			if strings.Contains(category, c) || strings.Contains(name, c) {
				score += ConcernPoints
			}
		}
	}
	return score
}

// MatchedIngredients returns the product ingredients that contain at least
// one keyword, in product order.
func MatchedIngredients(p catalog.Product, keywords []string) []string {
	var out []string
	for _, ing := range p.Ingredients {
		lower := strings.ToLower(ing)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, ing)
				break
			}
		}
	}
	return out
}

func matchesAnyKeyword(p catalog.Product, keywords []string) bool {
	for _, kw := range keywords {
		if anyIngredientContains(p.Ingredients, kw) {
			return true
		}
	}
	return false
}

func anyIngredientContains(ingredients []string, fragment string) bool {
	for _, ing := range ingredients {
		if strings.Contains(strings.ToLower(ing), fragment) {
			return true
		}
	}
	return false
}
