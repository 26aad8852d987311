package cmd

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/display"
	"github.com/tayloree/skinrec/internal/recommend"
)

var concernsCmd = &cobra.Command{
	Use:   "concerns",
	Short: "List supported skin concerns and their ingredient keywords",
	Example: `  skinrec concerns
  skinrec concerns --catalog products.csv --json`,
	RunE: runConcerns,
}

func init() {
	rootCmd.AddCommand(concernsCmd)
}

func runConcerns(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	c, err := loadCatalog(cmd, cfg)
	if err != nil {
		return err
	}

	concerns := display.Concerns(c)
	if flagJSON {
		return display.PrintConcernsJSON(cmd.OutOrStdout(), concerns)
	}
	display.PrintConcerns(cmd.OutOrStdout(), concerns)
	return nil
}

// concernNotes explains concerns that have no curated keywords and match
// no catalog ingredient, suggesting the closest supported concern.
func concernNotes(concerns []string, c *catalog.Catalog) []string {
	var notes []string
	vocab := c.Ingredients()
	for _, concern := range concerns {
		term := strings.ToLower(strings.TrimSpace(concern))
		if term == "" || recommend.IsKnownConcern(term) || anyContains(vocab, term) {
			continue
		}
		note := fmt.Sprintf("concern `%s` is not a supported concern and matches no catalog ingredient", concern)
		if suggestion, ok := suggestConcern(term); ok {
			note += fmt.Sprintf("; did you mean `%s`?", suggestion)
		}
		notes = append(notes, note)
	}
	return notes
}

// suggestConcern finds the supported concern closest to term, first by
// fuzzy subsequence match ("drk" -> "dark circles"), then by edit distance.
func suggestConcern(term string) (string, bool) {
	supported := recommend.SupportedConcerns()
	if matches := fuzzy.Find(term, supported); len(matches) > 0 {
		return matches[0].Str, true
	}
	return closestMatch(term, supported, 3)
}

func anyContains(values []string, fragment string) bool {
	for _, v := range values {
		if strings.Contains(v, fragment) {
			return true
		}
	}
	return false
}
