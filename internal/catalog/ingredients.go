package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedList is returned when an ingredient cell looks like a list
// literal but cannot be parsed as one.
var ErrMalformedList = errors.New("malformed ingredient list")

// ParseIngredientList parses an ingredients cell into a normalized set.
//
// Accepted shapes are a bracketed list literal of quoted or bare items
// (['water', "shea butter"], ("a", "b"), []) or a plain comma-separated
// string. The cell is data, never evaluated.
func ParseIngredientList(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	var closer byte
	switch s[0] {
	case '[':
		closer = ']'
	case '(':
		closer = ')'
	default:
		return NormalizeIngredients(strings.Split(s, ",")), nil
	}
	if s[len(s)-1] != closer {
		return nil, fmt.Errorf("%w: missing closing %q", ErrMalformedList, closer)
	}

	items, err := scanListBody(s[1 : len(s)-1])
	if err != nil {
		return nil, err
	}
	return NormalizeIngredients(items), nil
}

func scanListBody(body string) ([]string, error) {
	var items []string
	i := 0
	for i < len(body) {
		for i < len(body) && isListSpace(body[i]) {
			i++
		}
		if i >= len(body) {
			break
		}

		switch c := body[i]; c {
		case '\'', '"':
			item, next, err := scanQuoted(body, i)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			i = next
		case ',':
			// empty slot, e.g. trailing comma
		case '[', ']', '(', ')', '{', '}':
			return nil, fmt.Errorf("%w: nested or stray %q at offset %d", ErrMalformedList, c, i)
		default:
			start := i
			for i < len(body) && body[i] != ',' {
				if strings.IndexByte("'\"[](){}", body[i]) >= 0 {
					return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedList, body[i], i)
				}
				i++
			}
			items = append(items, body[start:i])
		}

		for i < len(body) && isListSpace(body[i]) {
			i++
		}
		if i < len(body) {
			if body[i] != ',' {
				return nil, fmt.Errorf("%w: expected ',' at offset %d", ErrMalformedList, i)
			}
			i++
		}
	}
	return items, nil
}

func scanQuoted(body string, start int) (string, int, error) {
	quote := body[start]
	var b strings.Builder
	for i := start + 1; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			b.WriteByte(body[i])
		case c == quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated quote at offset %d", ErrMalformedList, start)
}

func isListSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// NormalizeIngredients trims and lowercases entries, drops blanks and
// duplicates, and returns them sorted.
func NormalizeIngredients(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		ing := strings.ToLower(strings.TrimSpace(r))
		if ing == "" {
			continue
		}
		if _, ok := seen[ing]; ok {
			continue
		}
		seen[ing] = struct{}{}
		out = append(out, ing)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
