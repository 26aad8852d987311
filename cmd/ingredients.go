package cmd

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/tayloree/skinrec/internal/display"
)

var flagIngredientQuery string

var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "List the catalog's ingredient vocabulary",
	Long:  "List every distinct ingredient in the catalog. Use this to pick terms for --avoid or free-form concerns.",
	Example: `  skinrec ingredients
  skinrec ingredients --query acid
  skinrec ingredients -q oil --json`,
	RunE: runIngredients,
}

func init() {
	rootCmd.AddCommand(ingredientsCmd)
	ingredientsCmd.Flags().StringVarP(&flagIngredientQuery, "query", "q", "", "Only ingredients containing this text (fuzzy match when nothing contains it)")
}

func runIngredients(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	c, err := loadCatalog(cmd, cfg)
	if err != nil {
		return err
	}

	all := c.Ingredients()
	matched := all
	if q := strings.ToLower(strings.TrimSpace(flagIngredientQuery)); q != "" {
		matched = matchIngredients(q, all)
		if len(matched) == 0 {
			return notFoundError(
				fmt.Sprintf("no ingredients match %q", flagIngredientQuery),
				"skinrec ingredients",
			)
		}
	}

	if flagJSON {
		return display.PrintIngredientsJSON(cmd.OutOrStdout(), matched)
	}
	display.PrintIngredients(cmd.OutOrStdout(), matched, len(all))
	return nil
}

// matchIngredients returns the ingredients containing q. When none do, it
// falls back to fuzzy subsequence matches ("slcylc" -> "salicylic acid"),
// best match first.
func matchIngredients(q string, all []string) []string {
	var matched []string
	for _, ing := range all {
		if strings.Contains(ing, q) {
			matched = append(matched, ing)
		}
	}
	if len(matched) > 0 {
		return matched
	}
	for _, m := range fuzzy.Find(q, all) {
		matched = append(matched, m.Str)
	}
	return matched
}
