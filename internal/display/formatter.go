package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/recommend"
)

// Styles for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	brandStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
	ratingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	matchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// ProductJSON is the JSON output shape for a recommended product.
type ProductJSON struct {
	Name           string   `json:"name"`
	Brand          string   `json:"brand"`
	Category       string   `json:"category"`
	SkinType       string   `json:"skinType"`
	Rating         float64  `json:"rating"`
	URL            string   `json:"url"`
	KeyIngredients []string `json:"keyIngredients"`
	Matched        []string `json:"matchedIngredients"`
}

// RecommendationJSON is the JSON output shape for one recommendation call.
type RecommendationJSON struct {
	Message  string        `json:"message"`
	Tier     string        `json:"tier"`
	Count    int           `json:"count"`
	Products []ProductJSON `json:"products"`
}

// ConcernJSON describes a supported concern.
type ConcernJSON struct {
	Name               string   `json:"name"`
	Keywords           []string `json:"keywords"`
	CatalogIngredients int      `json:"catalogIngredients"`
}

// NewRecommendationJSON builds the output shape for res, cut to the top
// limit products (0 = all).
func NewRecommendationJSON(res recommend.Result, limit int) RecommendationJSON {
	shown := recommend.Present(res, limit)
	out := RecommendationJSON{
		Message:  res.Message,
		Tier:     res.Tier.String(),
		Count:    len(shown),
		Products: make([]ProductJSON, 0, len(shown)),
	}
	for _, p := range shown {
		out.Products = append(out.Products, toProductJSON(p, res.Keywords))
	}
	return out
}

// PrintRecommendations renders the result message followed by the top
// limit products.
func PrintRecommendations(w io.Writer, res recommend.Result, limit int) {
	shown := recommend.Present(res, limit)

	fmt.Fprintf(w, "\n%s", headerStyle.Render(res.Message))
	if len(shown) > 0 {
		fmt.Fprintf(w, " %s", cyanStyle.Render(fmt.Sprintf("(%d of %d)", len(shown), len(res.Products))))
	}
	fmt.Fprint(w, "\n\n")

	for i, p := range shown {
		printProduct(w, i+1, p, res.Keywords)
		fmt.Fprintln(w)
	}
}

// PrintRecommendationsJSON renders the result as JSON.
func PrintRecommendationsJSON(w io.Writer, res recommend.Result, limit int) error {
	return json.NewEncoder(w).Encode(NewRecommendationJSON(res, limit))
}

// Concerns summarizes every supported concern against the catalog.
func Concerns(c *catalog.Catalog) []ConcernJSON {
	vocab := c.Ingredients()
	out := make([]ConcernJSON, 0, len(recommend.SupportedConcerns()))
	for _, name := range recommend.SupportedConcerns() {
		keywords := recommend.ExpandConcerns([]string{name}, vocab)
		matched := 0
		for _, ing := range vocab {
			for _, kw := range keywords {
				if strings.Contains(ing, kw) {
					matched++
					break
				}
			}
		}
		out = append(out, ConcernJSON{
			Name:               name,
			Keywords:           recommend.ConcernKeywords(name),
			CatalogIngredients: matched,
		})
	}
	return out
}

// PrintConcerns renders the supported concerns and their keywords.
func PrintConcerns(w io.Writer, concerns []ConcernJSON) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Supported skin concerns:"))
	for _, c := range concerns {
		fmt.Fprintf(w, "  %s %s\n", cyanStyle.Render(c.Name),
			dimStyle.Render(fmt.Sprintf("(%d catalog ingredients)", c.CatalogIngredients)))
		fmt.Fprintf(w, "    %s\n", strings.Join(c.Keywords, ", "))
	}
	fmt.Fprintln(w)
}

// PrintConcernsJSON renders concerns as JSON.
func PrintConcernsJSON(w io.Writer, concerns []ConcernJSON) error {
	return json.NewEncoder(w).Encode(concerns)
}

// PrintIngredients renders an ingredient list.
func PrintIngredients(w io.Writer, ingredients []string, total int) {
	fmt.Fprintf(w, "\n%s %s\n\n",
		titleStyle.Render("Catalog ingredients:"),
		cyanStyle.Render(fmt.Sprintf("%d of %d", len(ingredients), total)),
	)
	for _, ing := range ingredients {
		fmt.Fprintf(w, "  %s\n", ing)
	}
	fmt.Fprintln(w)
}

// PrintIngredientsJSON renders an ingredient list as JSON.
func PrintIngredientsJSON(w io.Writer, ingredients []string) error {
	if ingredients == nil {
		ingredients = []string{}
	}
	return json.NewEncoder(w).Encode(ingredients)
}

// PrintCatalogContext prints a dim line naming the catalog in use.
func PrintCatalogContext(w io.Writer, c *catalog.Catalog) {
	msg := fmt.Sprintf("Using catalog: %s (%d products)", emptyIf(c.Source(), "inline"), c.Len())
	if skipped := len(c.Issues()); skipped > 0 {
		msg += fmt.Sprintf(", %d row(s) with unreadable ingredients", skipped)
	}
	fmt.Fprintf(w, "%s\n", dimStyle.Render(msg))
}

// PrintError prints a styled error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

// PrintWarning prints a styled warning message.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

func printProduct(w io.Writer, rank int, p catalog.Product, keywords []string) {
	fmt.Fprintf(w, "  %s %s %s\n",
		dimStyle.Render(fmt.Sprintf("%d.", rank)),
		titleStyle.Render(emptyIf(p.Name, "Unnamed product")),
		brandStyle.Render("by "+emptyIf(p.Brand, "unknown brand")),
	)

	meta := []string{ratingStyle.Render(fmt.Sprintf("Rating: %.1f", p.Rating))}
	if p.Category != "" {
		meta = append(meta, p.Category)
	}
	if p.SkinType != "" {
		meta = append(meta, "skin: "+p.SkinType)
	}
	fmt.Fprintf(w, "     %s\n", strings.Join(meta, " | "))

	if matched := recommend.MatchedIngredients(p, keywords); len(matched) > 0 {
		fmt.Fprintf(w, "     %s\n", matchStyle.Render(wordWrap("Matches: "+strings.Join(matched, ", "), 72, "     ")))
	}
	if p.URL != "" {
		fmt.Fprintf(w, "     %s\n", dimStyle.Render(p.URL))
	}
}

func toProductJSON(p catalog.Product, keywords []string) ProductJSON {
	ingredients := p.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	matched := recommend.MatchedIngredients(p, keywords)
	if matched == nil {
		matched = []string{}
	}
	return ProductJSON{
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		SkinType:       p.SkinType,
		Rating:         p.Rating,
		URL:            p.URL,
		KeyIngredients: ingredients,
		Matched:        matched,
	}
}

func emptyIf(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func wordWrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n"+indent)
}
