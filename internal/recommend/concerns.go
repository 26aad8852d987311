package recommend

import (
	"sort"
	"strings"
)

// concernKeywords maps a known concern onto ingredient keyword fragments.
var concernKeywords = map[string][]string{
	"acne":              {"salicylic", "benzoyl", "niacinamide", "tea tree", "sulfur"},
	"dark circles":      {"caffeine", "retinol", "vitamin c", "niacinamide", "hyaluronic"},
	"dryness":           {"hyaluronic", "glycerin", "shea", "ceramide", "squalane"},
	"redness":           {"aloe", "centella", "green tea", "niacinamide", "azelaic"},
	"pores":             {"niacinamide", "salicylic", "retinol", "clay"},
	"oiliness":          {"salicylic", "clay", "niacinamide", "zinc"},
	"sensitivity":       {"aloe", "oat", "centella", "chamomile", "ceramide"},
	"hyperpigmentation": {"vitamin c", "niacinamide", "azelaic", "licorice"},
	"wrinkles":          {"retinol", "peptide", "collagen", "vitamin c"},
}

var supportedConcerns = []string{
	"acne",
	"dark circles",
	"dryness",
	"redness",
	"pores",
	"oiliness",
	"sensitivity",
	"hyperpigmentation",
	"wrinkles",
}

// SupportedConcerns returns the concerns with curated keyword lists.
func SupportedConcerns() []string {
	out := make([]string, len(supportedConcerns))
	copy(out, supportedConcerns)
	return out
}

// ConcernKeywords returns the curated keywords for a concern, or nil if the
// concern is not in the table.
func ConcernKeywords(concern string) []string {
	kws := concernKeywords[normalizeTerm(concern)]
	if kws == nil {
		return nil
	}
	out := make([]string, len(kws))
	copy(out, kws)
	return out
}

// IsKnownConcern reports whether the concern has a curated keyword list.
func IsKnownConcern(concern string) bool {
	_, ok := concernKeywords[normalizeTerm(concern)]
	return ok
}

// ExpandConcerns turns concern terms into the ingredient keyword set used
// for matching. Each concern contributes its curated keywords plus every
// catalog ingredient containing the concern as a substring. When nothing
// is found the normalized concern terms themselves become the keywords, so
// the result is empty only when no non-blank concern was given.
//
// The result is sorted and free of duplicates.
func ExpandConcerns(concerns []string, catalogIngredients []string) []string {
	terms := NormalizeTerms(concerns)
	if len(terms) == 0 {
		return nil
	}

	set := make(map[string]struct{})
	for _, c := range terms {
		for _, kw := range concernKeywords[c] {
			set[kw] = struct{}{}
		}
		for _, ing := range catalogIngredients {
			ing = strings.ToLower(ing)
			if strings.Contains(ing, c) {
				set[ing] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		for _, c := range terms {
			set[c] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for kw := range set {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// NormalizeTerms trims and lowercases terms and drops blanks. Order and
// duplicates are kept.
func NormalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := normalizeTerm(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
