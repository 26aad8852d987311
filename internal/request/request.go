// Package request turns raw user input from the CLI, the TUI and the HTTP
// adapter into a validated recommend.Query.
package request

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tayloree/skinrec/internal/recommend"
)

// MaxLimit bounds the top-N view a caller may ask for.
const MaxLimit = 1000

// Request is a recommendation request as it arrives at a presentation
// boundary. Call Normalize before Validate.
type Request struct {
	SkinType string   `json:"skin_type" validate:"required"`
	Concerns []string `json:"concerns" validate:"min=1,dive,required"`
	Detected []string `json:"detected,omitempty"`
	Avoid    []string `json:"avoid,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	Category string   `json:"category,omitempty"`
	Sort     string   `json:"sort,omitempty" validate:"omitempty,oneof=rating brand relevance"`
	Limit    int      `json:"limit,omitempty" validate:"gte=0,lte=1000"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationError collects every rejected field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid request"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Normalize trims every field, splits comma-joined list entries, merges
// detected concerns into Concerns and canonicalizes sort aliases. Unknown
// sort values are left lowercased so Validate can reject them.
func (r *Request) Normalize() {
	r.SkinType = strings.ToLower(strings.TrimSpace(r.SkinType))
	r.Concerns = MergeConcerns(SplitLists(r.Concerns), SplitLists(r.Detected))
	r.Avoid = SplitLists(r.Avoid)
	r.Brand = strings.TrimSpace(r.Brand)
	r.Category = strings.TrimSpace(r.Category)

	sort := strings.ToLower(strings.TrimSpace(r.Sort))
	if sort != "" && recommend.IsSortMode(sort) {
		sort = string(recommend.ParseSortMode(sort))
	}
	r.Sort = sort
}

// Validate checks a normalized request.
func (r *Request) Validate() error {
	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating request: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   topLevelField(fe.Namespace(), fe.Field()),
			Tag:     fe.Tag(),
			Message: translate(fe),
		})
	}
	return out
}

// Query converts the request into the engine's input.
func (r Request) Query() recommend.Query {
	return recommend.Query{
		SkinType: r.SkinType,
		Concerns: r.Concerns,
		Avoid:    r.Avoid,
		Brand:    r.Brand,
		Category: r.Category,
		Sort:     recommend.ParseSortMode(r.Sort),
		Limit:    r.Limit,
	}
}

// FromValues reads a request from URL query parameters. List parameters
// may be repeated or comma-joined. The result is not yet normalized.
func FromValues(v url.Values) (Request, error) {
	r := Request{
		SkinType: v.Get("skin_type"),
		Concerns: v["concerns"],
		Detected: v["detected"],
		Avoid:    v["avoid"],
		Brand:    v.Get("brand"),
		Category: v.Get("category"),
		Sort:     v.Get("sort"),
	}
	if raw := strings.TrimSpace(v.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return r, &ValidationError{Fields: []FieldError{{
				Field:   "limit",
				Tag:     "number",
				Message: fmt.Sprintf("limit must be a whole number, got %q", raw),
			}}}
		}
		r.Limit = n
	}
	return r, nil
}

// SplitList splits a comma-separated string, trimming entries and dropping
// blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SplitLists applies SplitList to each value and concatenates the results.
func SplitLists(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, SplitList(v)...)
	}
	return out
}

// MergeConcerns appends detected concerns to the manual ones, keeping the
// first occurrence of each concern (case-insensitive) in order.
func MergeConcerns(manual, detected []string) []string {
	seen := make(map[string]struct{}, len(manual)+len(detected))
	var out []string
	for _, list := range [][]string{manual, detected} {
		for _, c := range list {
			c = strings.TrimSpace(c)
			key := strings.ToLower(c)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func topLevelField(namespace, field string) string {
	// "Request.concerns[0]" -> "concerns"
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		name, _, _ := strings.Cut(rest, "[")
		return name
	}
	return field
}

func translate(fe validator.FieldError) string {
	field := topLevelField(fe.Namespace(), fe.Field())
	switch fe.Tag() {
	case "required":
		if strings.Contains(fe.Namespace(), "[") {
			return fmt.Sprintf("%s must not contain blank entries", field)
		}
		return fmt.Sprintf("%s is required", field)
	case "min":
		if field == "concerns" {
			return "at least one concern is required"
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
