package cmd

import (
	"fmt"
	"sort"
	"strings"
)

type flagSpec struct {
	name          string
	requiresValue bool
}

var knownFlags = map[string]flagSpec{
	"skin-type": {name: "skin-type", requiresValue: true},
	"concerns":  {name: "concerns", requiresValue: true},
	"avoid":     {name: "avoid", requiresValue: true},
	"brand":     {name: "brand", requiresValue: true},
	"category":  {name: "category", requiresValue: true},
	"sort":      {name: "sort", requiresValue: true},
	"limit":     {name: "limit", requiresValue: true},
	"image":     {name: "image", requiresValue: true},
	"export":    {name: "export", requiresValue: true},
	"catalog":   {name: "catalog", requiresValue: true},
	"config":    {name: "config", requiresValue: true},
	"query":     {name: "query", requiresValue: true},
	"addr":      {name: "addr", requiresValue: true},
	"watch":     {name: "watch", requiresValue: false},
	"json":      {name: "json", requiresValue: false},
	"verbose":   {name: "verbose", requiresValue: false},
	"help":      {name: "help", requiresValue: false},
}

// shorthandFlags mirrors the one-letter shorthands registered on the commands.
var shorthandFlags = map[string]string{
	"t": "skin-type",
	"c": "concerns",
	"a": "avoid",
	"b": "brand",
	"n": "limit",
	"i": "image",
	"o": "export",
	"q": "query",
	"v": "verbose",
	"w": "watch",
	"h": "help",
}

var knownCommands = []string{
	"concerns",
	"ingredients",
	"compare",
	"detect",
	"tui",
	"serve",
	"completion",
	"help",
}

var flagAliases = map[string]string{
	"skin":       "skin-type",
	"skintype":   "skin-type",
	"type":       "skin-type",
	"concern":    "concerns",
	"issues":     "concerns",
	"exclude":    "avoid",
	"without":    "avoid",
	"max":        "limit",
	"top":        "limit",
	"top-n":      "limit",
	"order":      "sort",
	"sort-by":    "sort",
	"photo":      "image",
	"picture":    "image",
	"output":     "export",
	"out":        "export",
	"data":       "catalog",
	"products":   "catalog",
	"dataset":    "catalog",
	"listen":     "addr",
	"address":    "addr",
	"search":     "query",
}

// argNormalizer rewrites near-miss CLI syntax (`-flag`, `key=value`, bare
// flag names, typos) into canonical cobra arguments, one token at a time.
type argNormalizer struct {
	out   []string
	notes []string

	command       string
	nestedAllowed bool
	nestedChosen  bool
	bareRewrite   bool
	expectValue   bool
	passthrough   bool
}

// rewrittenToken is the outcome of normalizing a single token.
type rewrittenToken struct {
	value      string
	note       string
	flag       bool
	needsValue bool
	command    bool
}

func normalizeCLIArgs(args []string) ([]string, []string) {
	n := &argNormalizer{
		out:         make([]string, 0, len(args)),
		notes:       make([]string, 0, 2),
		bareRewrite: true,
	}
	for i, tok := range args {
		n.feed(tok, i == len(args)-1)
	}
	return n.out, n.notes
}

func (n *argNormalizer) feed(tok string, last bool) {
	switch {
	case n.passthrough:
		n.out = append(n.out, tok)
		return
	case n.expectValue:
		n.out = append(n.out, tok)
		n.expectValue = false
		return
	case tok == "--":
		n.out = append(n.out, tok)
		n.passthrough = true
		return
	}

	canBeCommand := n.command == "" || (n.nestedAllowed && !n.nestedChosen)
	rt := normalizeToken(tok, canBeCommand, n.bareRewrite)
	if rt.note != "" {
		n.notes = append(n.notes, rt.note)
	}
	n.out = append(n.out, rt.value)

	if rt.command {
		if n.command == "" {
			n.command = rt.value
			n.bareRewrite = bareFlagRewriteAllowed(n.command)
			n.nestedAllowed = allowsNestedCommandArg(n.command)
			return
		}
		if n.nestedAllowed {
			n.nestedChosen = true
		}
	}
	if rt.flag && rt.needsValue && !strings.Contains(rt.value, "=") && !last {
		n.expectValue = true
	}
}

func normalizeToken(tok string, canBeCommand, allowBareFlagRewrite bool) rewrittenToken {
	switch {
	case tok == "--":
		return rewrittenToken{value: tok}

	case strings.HasPrefix(tok, "--"):
		name, rest := splitFlag(strings.TrimPrefix(tok, "--"))
		canonical, ok := resolveFlagName(name)
		if !ok {
			return rewrittenToken{value: tok, flag: true}
		}
		return flagRewrite(tok, "--"+canonical+rest, canonical)

	case strings.HasPrefix(tok, "-") && len(tok) > 2:
		name, rest := splitFlag(strings.TrimPrefix(tok, "-"))
		canonical, ok := resolveFlagName(name)
		if !ok {
			return rewrittenToken{value: tok, flag: true}
		}
		return flagRewrite(tok, "--"+canonical+rest, canonical)

	case strings.HasPrefix(tok, "-"):
		// Single-character shorthands pass through untouched; pflag parses them.
		canonical, ok := shorthandFlags[strings.TrimPrefix(tok, "-")]
		if !ok {
			return rewrittenToken{value: tok}
		}
		return rewrittenToken{value: tok, flag: true, needsValue: knownFlags[canonical].requiresValue}
	}

	if strings.Contains(tok, "=") {
		name, rest := splitFlag(tok)
		if canonical, ok := resolveFlagName(name); ok {
			return flagRewrite(tok, "--"+canonical+rest, canonical)
		}
	}

	if canBeCommand {
		if corrected, ok := resolveCommand(tok); ok {
			rt := rewrittenToken{value: corrected, command: true}
			if corrected != tok {
				rt.note = fmt.Sprintf("interpreted command `%s` as `%s`; use `%s` next time.", tok, corrected, corrected)
			}
			return rt
		}
	}

	if allowBareFlagRewrite {
		if canonical, ok := resolveFlagName(tok); ok {
			return flagRewrite(tok, "--"+canonical, canonical)
		}
	}
	return rewrittenToken{value: tok}
}

func flagRewrite(from, to, canonical string) rewrittenToken {
	rt := rewrittenToken{value: to, flag: true, needsValue: knownFlags[canonical].requiresValue}
	if from != to {
		rt.note = fmt.Sprintf("interpreted `%s` as `%s`; use `%s` next time.", from, to, to)
	}
	return rt
}

func bareFlagRewriteAllowed(command string) bool {
	// Flag-only commands, where rewriting bare tokens like `json` -> `--json`
	// cannot swallow a positional argument.
	switch command {
	case "concerns", "ingredients", "compare", "serve":
		return true
	default:
		return false
	}
}

func allowsNestedCommandArg(command string) bool {
	// These commands accept another command token as a positional argument.
	switch command {
	case "help", "completion":
		return true
	default:
		return false
	}
}

func resolveFlagName(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, "_", "-")

	if canonical, ok := flagAliases[name]; ok {
		return canonical, true
	}
	if _, ok := knownFlags[name]; ok {
		return name, true
	}

	if suggestion, ok := closestMatch(name, sortedKeys(knownFlags), 2); ok {
		return suggestion, true
	}
	return "", false
}

func resolveCommand(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, cmd := range knownCommands {
		if name == cmd {
			return cmd, true
		}
	}
	if suggestion, ok := closestMatch(name, knownCommands, 2); ok {
		return suggestion, true
	}
	return "", false
}

func explainCLIError(err error) string {
	return formatCLIErrorText(classifyCLIError(err))
}

func splitFlag(value string) (string, string) {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) == 2 {
		return parts[0], "=" + parts[1]
	}
	return value, ""
}

func extractUnknownValue(msg, marker string) string {
	idx := strings.Index(msg, marker)
	if idx == -1 {
		return ""
	}

	remaining := strings.TrimSpace(msg[idx+len(marker):])
	remaining = strings.TrimPrefix(remaining, ":")
	remaining = strings.TrimSpace(remaining)

	if strings.HasPrefix(remaining, "\"") {
		remaining = strings.TrimPrefix(remaining, "\"")
		end := strings.Index(remaining, "\"")
		if end >= 0 {
			return remaining[:end]
		}
	}

	if strings.HasPrefix(remaining, "`") {
		remaining = strings.TrimPrefix(remaining, "`")
		end := strings.Index(remaining, "`")
		if end >= 0 {
			return remaining[:end]
		}
	}

	if fields := strings.Fields(remaining); len(fields) > 0 {
		return strings.Trim(fields[0], "\"`")
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// closestMatch returns the candidate with the smallest edit distance to
// target, if within maxDistance. Ties go to the earliest candidate.
func closestMatch(target string, candidates []string, maxDistance int) (string, bool) {
	best, bestDist := "", maxDistance+1
	for _, candidate := range candidates {
		if d := levenshtein(target, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best, bestDist <= maxDistance
}

// levenshtein is the byte-wise edit distance between a and b.
func levenshtein(a, b string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := minInt(row[j]+1, row[j-1]+1, diag+cost)
			diag = row[j]
			row[j] = next
		}
	}
	return row[len(b)]
}

func minInt(vals ...int) int {
	best := vals[0]
	for _, v := range vals[1:] {
		if v < best {
			best = v
		}
	}
	return best
}
