package recommend

import (
	"sort"
	"strings"

	"github.com/tayloree/skinrec/internal/catalog"
)

// SortMode selects the ordering of primary-tier results.
type SortMode string

const (
	// SortRating orders by score, then rating, both descending.
	SortRating SortMode = "rating"
	// SortBrand orders alphabetically by brand, ignoring score.
	SortBrand SortMode = "brand"
	// SortRelevance currently orders exactly like SortRating.
	SortRelevance SortMode = "relevance"
)

// SortModes lists the accepted modes in display order.
var SortModes = []SortMode{SortRating, SortBrand, SortRelevance}

// ParseSortMode maps user input onto a mode. Unknown input behaves as rating.
func ParseSortMode(raw string) SortMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "brand", "name", "alpha", "alphabetical":
		return SortBrand
	case "relevance", "relevant", "match":
		return SortRelevance
	default:
		return SortRating
	}
}

// IsSortMode reports whether raw names a known mode or alias. Blank counts
// as the default.
func IsSortMode(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "rating", "stars", "brand", "name", "alpha", "alphabetical", "relevance", "relevant", "match":
		return true
	default:
		return false
	}
}

type candidate struct {
	product catalog.Product
	score   int
}

func sortCandidates(cands []candidate, mode SortMode) {
	switch mode {
	case SortBrand:
		sort.SliceStable(cands, func(i, j int) bool {
			return strings.ToLower(cands[i].product.Brand) < strings.ToLower(cands[j].product.Brand)
		})
	default:
		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].score != cands[j].score {
				return cands[i].score > cands[j].score
			}
			return cands[i].product.Rating > cands[j].product.Rating
		})
	}
}

// SortByRating returns a copy of products stably ordered by rating, highest first.
func SortByRating(products []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, len(products))
	copy(out, products)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out
}
