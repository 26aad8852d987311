package display

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tayloree/skinrec/internal/catalog"
)

// ErrNothingToExport is returned when an export is asked for zero products.
var ErrNothingToExport = errors.New("no products to export")

// ExportColumns is the CSV export header.
var ExportColumns = []string{"name", "brand", "category", "rating", "url", "key_ingredients"}

// ExportCSV writes products as CSV with an ExportColumns header.
func ExportCSV(w io.Writer, products []catalog.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{
			p.Name,
			p.Brand,
			p.Category,
			formatRating(p.Rating),
			p.URL,
			strings.Join(p.Ingredients, ", "),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportText writes one paragraph per product.
func ExportText(w io.Writer, products []catalog.Product) error {
	for _, p := range products {
		_, err := fmt.Fprintf(w, "%s by %s (%s) - Rating: %s\nURL: %s\nIngredients: %s\n\n",
			p.Name,
			p.Brand,
			p.Category,
			formatRating(p.Rating),
			p.URL,
			strings.Join(p.Ingredients, ", "),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ExportFile writes products to path, as text for a .txt extension and as
// CSV otherwise.
func ExportFile(path string, products []catalog.Product) (err error) {
	if len(products) == 0 {
		return ErrNothingToExport
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing export file: %w", cerr)
		}
	}()

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return ExportText(f, products)
	}
	return ExportCSV(f, products)
}

// formatRating keeps at least one decimal place: 4 -> "4.0", 4.25 -> "4.25".
func formatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
