package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Canonical column names.
const (
	ColName        = "name"
	ColBrand       = "brand"
	ColCategory    = "category"
	ColSkinType    = "skin_type"
	ColIngredients = "key_ingredients"
	ColURL         = "url"
	ColGoodStuff   = "good_stuff"
	ColRating      = "rating"
)

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyCatalog is returned when the source holds no header or records at all.
	ErrEmptyCatalog = errors.New("empty catalog source")
)

// RequiredColumns must be present in every catalog source.
var RequiredColumns = []string{ColName, ColBrand, ColCategory, ColSkinType, ColIngredients, ColGoodStuff}

// columnAliases maps source header spellings onto canonical column names.
var columnAliases = map[string]string{
	"product":             ColName,
	"product_name":        ColName,
	"name":                ColName,
	"brand":               ColBrand,
	"category":            ColCategory,
	"skin_type":           ColSkinType,
	"skintype":            ColSkinType,
	"ingredients_cleaned": ColIngredients,
	"key_ingredients":     ColIngredients,
	"keyingredients":      ColIngredients,
	"ingredients":         ColIngredients,
	"product_url":         ColURL,
	"producturl":          ColURL,
	"url":                 ColURL,
	"good_stuff":          ColGoodStuff,
	"goodstuff":           ColGoodStuff,
	"rating_stars":        ColRating,
	"ratingstars":         ColRating,
	"rating":              ColRating,
}

// Format identifies a catalog serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFromPath guesses the format from a file name or URL path.
func FormatFromPath(path string) Format {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

type rawRow struct {
	fields      map[string]string
	ingredients []string
	listGiven   bool
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	c.source = path
	return c, nil
}

// Load parses a catalog. An empty format sniffs the first non-space byte.
func Load(r io.Reader, format Format) (*Catalog, error) {
	br := bufio.NewReader(r)
	if format == "" {
		format = sniffFormat(br)
	}

	var (
		rows    []rawRow
		headers map[string]struct{}
		err     error
	)
	switch format {
	case FormatJSON:
		rows, headers, err = readJSONRows(br)
	default:
		rows, headers, err = readCSVRows(br)
	}
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := headers[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	products := make([]Product, 0, len(rows))
	var issues []RowIssue
	for i, row := range rows {
		p, issue := buildProduct(i+1, row)
		products = append(products, p)
		if issue != nil {
			issues = append(issues, *issue)
		}
	}

	c := New(products)
	c.issues = issues
	return c, nil
}

func sniffFormat(br *bufio.Reader) Format {
	for n := 1; n <= 512; n++ {
		peek, err := br.Peek(n)
		if len(peek) == n {
			b := peek[n-1]
			if b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == 0xEF || b == 0xBB || b == 0xBF {
				continue
			}
			if b == '[' || b == '{' {
				return FormatJSON
			}
			return FormatCSV
		}
		if err != nil {
			break
		}
	}
	return FormatCSV
}

func canonicalColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	if canonical, ok := columnAliases[h]; ok {
		return canonical
	}
	return h
}

func readCSVRows(r io.Reader) ([]rawRow, map[string]struct{}, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmptyCatalog
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make([]string, len(header))
	headers := make(map[string]struct{}, len(header))
	for i, h := range header {
		columns[i] = canonicalColumn(h)
		headers[columns[i]] = struct{}{}
	}

	var rows []rawRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading record %d: %w", len(rows)+1, err)
		}
		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				fields[col] = record[i]
			}
		}
		rows = append(rows, rawRow{fields: fields})
	}
	return rows, headers, nil
}

func readJSONRows(r io.Reader) ([]rawRow, map[string]struct{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, ErrEmptyCatalog
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("decoding catalog: %w", err)
	}

	headers := make(map[string]struct{})
	rows := make([]rawRow, 0, len(records))
	for _, rec := range records {
		row := rawRow{fields: make(map[string]string, len(rec))}
		for key, value := range rec {
			col := canonicalColumn(key)
			headers[col] = struct{}{}
			if col == ColIngredients {
				if list, ok := value.([]any); ok {
					row.listGiven = true
					for _, item := range list {
						row.ingredients = append(row.ingredients, jsonScalar(item))
					}
					continue
				}
			}
			row.fields[col] = jsonScalar(value)
		}
		rows = append(rows, row)
	}
	return rows, headers, nil
}

func jsonScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(t)
	}
}

func buildProduct(row int, r rawRow) (Product, *RowIssue) {
	p := Product{
		Name:      strings.TrimSpace(r.fields[ColName]),
		Brand:     strings.TrimSpace(r.fields[ColBrand]),
		Category:  strings.TrimSpace(r.fields[ColCategory]),
		SkinType:  NormalizeSkinType(r.fields[ColSkinType]),
		URL:       strings.TrimSpace(r.fields[ColURL]),
		GoodStuff: ParseGoodStuff(r.fields[ColGoodStuff]),
		Rating:    ParseRating(r.fields[ColRating]),
	}

	if r.listGiven {
		p.Ingredients = NormalizeIngredients(r.ingredients)
		return p, nil
	}

	ings, err := ParseIngredientList(r.fields[ColIngredients])
	if err != nil {
		return p, &RowIssue{Row: row, Product: p.Name, Reason: err.Error()}
	}
	p.Ingredients = ings
	return p, nil
}

// NormalizeSkinType lowercases a skin type, defaulting blanks to "all".
func NormalizeSkinType(raw string) string {
	st := strings.ToLower(strings.TrimSpace(raw))
	if st == "" || st == "nan" {
		return SkinTypeAll
	}
	return st
}

// ParseGoodStuff reports whether the flag is numerically equal to 1.
// Anything unparseable disqualifies the product.
func ParseGoodStuff(raw string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return false
	}
	return v == 1
}

// ParseRating parses a star rating, treating anything unparseable as 0.
func ParseRating(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
