package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/recommend"
	"github.com/tayloree/skinrec/internal/request"
)

type compareSkinTypeResult struct {
	Rank       int     `json:"rank"`
	SkinType   string  `json:"skinType"`
	Products   int     `json:"catalogProducts"`
	Matches    int     `json:"matches"`
	Tier       string  `json:"tier"`
	TopProduct string  `json:"topProduct"`
	TopRating  float64 `json:"topRating"`

	tier recommend.Tier
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare how well each skin type is served for your concerns",
	Example: `  skinrec compare --concerns acne
  skinrec compare -c dryness,redness --avoid fragrance
  skinrec compare -c pores --category serum --json`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	registerConcernFlags(compareCmd.Flags())
}

func runCompare(cmd *cobra.Command, _ []string) error {
	concerns := request.SplitLists(flagConcerns)
	if len(concerns) == 0 {
		return invalidArgsError(
			"--concerns is required for compare",
			"skinrec compare --concerns acne",
			"skinrec compare -c dryness,redness",
		)
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	c, err := loadCatalog(cmd, cfg)
	if err != nil {
		return err
	}

	counts := skinTypeCounts(c)
	if len(counts) == 0 {
		return notFoundError(
			"the catalog lists no specific skin types to compare",
			"skinrec -t all -c "+strings.Join(concerns, ","),
		)
	}

	results := make([]compareSkinTypeResult, 0, len(counts))
	for skinType, n := range counts {
		res := recommend.Recommend(c, recommend.Query{
			SkinType: skinType,
			Concerns: concerns,
			Avoid:    request.SplitLists(flagAvoid),
			Brand:    flagBrand,
			Category: flagCategory,
		})
		r := compareSkinTypeResult{
			SkinType: skinType,
			Products: n,
			Matches:  len(res.Products),
			Tier:     res.Tier.String(),
			tier:     res.Tier,
		}
		if top := recommend.Present(res, 1); len(top) > 0 {
			r.TopProduct = top[0].Name
			r.TopRating = top[0].Rating
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Matches != results[j].Matches {
			return results[i].Matches > results[j].Matches
		}
		if results[i].tier != results[j].tier {
			return tierRank(results[i].tier) < tierRank(results[j].tier)
		}
		return results[i].SkinType < results[j].SkinType
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(results)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nSkin type comparison for %s (%d skin type(s))\n\n", strings.Join(concerns, ", "), len(results))
	for _, r := range results {
		fmt.Fprintf(
			cmd.OutOrStdout(),
			"%d. %s\n   matches: %d | tier: %s | catalog products: %d\n   top: %s\n\n",
			r.Rank,
			r.SkinType,
			r.Matches,
			r.Tier,
			r.Products,
			emptyIf(topLabel(r), "none"),
		)
	}
	return nil
}

// skinTypeCounts splits compound skin types ("combination, oily") into
// single types and counts products per type. "all" is excluded.
func skinTypeCounts(c *catalog.Catalog) map[string]int {
	out := map[string]int{}
	for raw, n := range c.SkinTypes() {
		for _, st := range request.SplitList(strings.ToLower(raw)) {
			if st == catalog.SkinTypeAll {
				continue
			}
			out[st] += n
		}
	}
	return out
}

func tierRank(t recommend.Tier) int {
	switch t {
	case recommend.TierPrimary:
		return 0
	case recommend.TierFallback:
		return 1
	default:
		return 2
	}
}

func topLabel(r compareSkinTypeResult) string {
	if r.TopProduct == "" {
		return ""
	}
	return fmt.Sprintf("%s (%.1f)", r.TopProduct, r.TopRating)
}

func emptyIf(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
