// Package recommend ranks catalog products against a user's skin type and
// concerns.
//
// Recommend is a pure function over an immutable catalog snapshot, so any
// number of calls may run concurrently against the same catalog.
package recommend

import (
	"strings"

	"github.com/tayloree/skinrec/internal/catalog"
)

// Status messages returned with each result tier.
const (
	MessagePrimary  = "Here are your recommendations:"
	MessageFallback = "No products for the selected skin type. Showing results for all skin types:"
	MessageNone     = "No products found for the given concerns."
)

// Tier identifies which stage produced a result.
type Tier int

const (
	// TierNone means neither stage matched anything.
	TierNone Tier = iota
	// TierPrimary is the skin-type-respecting, scored set.
	TierPrimary
	// TierFallback ignores skin type and uses a binary keyword match.
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Query is one recommendation request. Strings may be in any case and
// carry surrounding whitespace; Recommend normalizes them.
type Query struct {
	SkinType string
	Concerns []string
	Avoid    []string
	Brand    string
	Category string
	Sort     SortMode
	// Limit caps results at the presentation boundary (see Present);
	// Recommend itself always returns the full list.
	Limit int
}

// Result is the outcome of one recommendation call.
type Result struct {
	Tier     Tier
	Message  string
	Products []catalog.Product
	// Keywords is the expanded ingredient keyword set used for matching.
	Keywords []string
}

// Recommend filters, scores and orders catalog products for q.
//
// Products must be flagged good stuff and fit the skin type (substring
// match, or product skin type "all"), pass every hard filter, and score
// above zero. If none qualify, a fallback pass ignores skin type and keeps
// any good-stuff product, still subject to the hard filters, whose
// ingredients contain a keyword. Only skin type is relaxed there; brand,
// category and avoid filters stay absolute in both tiers. It never fails;
// empty results are reported through Tier and Message.
func Recommend(c *catalog.Catalog, q Query) Result {
	concerns := NormalizeTerms(q.Concerns)
	filters := Filters{
		Avoid:    NormalizeTerms(q.Avoid),
		Brand:    normalizeTerm(q.Brand),
		Category: normalizeTerm(q.Category),
	}
	skinType := normalizeTerm(q.SkinType)
	keywords := ExpandConcerns(concerns, c.Ingredients())
	products := c.Products()

	var cands []candidate
	for _, p := range products {
		if !p.GoodStuff || !SkinTypeMatches(skinType, p.SkinType) {
			continue
		}
		if score := Score(p, keywords, concerns, filters); score > 0 {
			cands = append(cands, candidate{product: p, score: score})
		}
	}

	if len(cands) > 0 {
		sortCandidates(cands, ParseSortMode(string(q.Sort)))
		out := make([]catalog.Product, len(cands))
		for i, cand := range cands {
			out[i] = cand.product
		}
		return Result{Tier: TierPrimary, Message: MessagePrimary, Products: out, Keywords: keywords}
	}

	var fallback []catalog.Product
	for _, p := range products {
		if !p.GoodStuff || Disqualified(p, filters) {
			continue
		}
		if matchesAnyKeyword(p, keywords) {
			fallback = append(fallback, p)
		}
	}
	if len(fallback) > 0 {
		return Result{Tier: TierFallback, Message: MessageFallback, Products: fallback, Keywords: keywords}
	}
	return Result{Tier: TierNone, Message: MessageNone, Keywords: keywords}
}

// SkinTypeMatches reports whether a product's skin type serves the wanted one.
func SkinTypeMatches(wanted, productSkinType string) bool {
	pst := strings.ToLower(productSkinType)
	return pst == catalog.SkinTypeAll || strings.Contains(pst, wanted)
}

// Present applies the display-boundary top-N view. Primary results keep
// their ranked order; fallback results, which are unordered, are sorted by
// rating first. A limit of zero or less keeps everything.
func Present(res Result, limit int) []catalog.Product {
	var out []catalog.Product
	switch res.Tier {
	case TierPrimary:
		out = make([]catalog.Product, len(res.Products))
		copy(out, res.Products)
	case TierFallback:
		out = SortByRating(res.Products)
	default:
		return nil
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
