package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/term"
)

const (
	// ExitSuccess is returned when the command succeeds.
	ExitSuccess = 0
	// ExitNotFound is returned when no product, catalog or ingredient matches.
	ExitNotFound = 1
	// ExitInvalidArgs is returned when the command input is invalid.
	ExitInvalidArgs = 2
	// ExitUpstream is returned when the catalog cannot be read or fetched.
	ExitUpstream = 3
	// ExitInternal is returned for unexpected internal failures.
	ExitInternal = 4
)

type cliError struct {
	Code        string
	Message     string
	Suggestions []string
	ExitCode    int
}

func (e *cliError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidArgsError(message string, suggestions ...string) error {
	return &cliError{
		Code:        "INVALID_ARGS",
		Message:     message,
		Suggestions: suggestions,
		ExitCode:    ExitInvalidArgs,
	}
}

func notFoundError(message string, suggestions ...string) error {
	return &cliError{
		Code:        "NOT_FOUND",
		Message:     message,
		Suggestions: suggestions,
		ExitCode:    ExitNotFound,
	}
}

func upstreamError(action string, err error) error {
	return &cliError{
		Code:        "UPSTREAM_ERROR",
		Message:     fmt.Sprintf("%s: %v", action, err),
		Suggestions: []string{"Retry in a moment."},
		ExitCode:    ExitUpstream,
	}
}

type jsonErrorPayload struct {
	Error jsonErrorBody `json:"error"`
}

type jsonErrorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	ExitCode    int      `json:"exitCode"`
}

func printCLIErrorJSON(w io.Writer, err *cliError) error {
	if err == nil {
		return nil
	}
	payload := jsonErrorPayload{
		Error: jsonErrorBody{
			Code:        err.Code,
			Message:     err.Message,
			Suggestions: err.Suggestions,
			ExitCode:    err.ExitCode,
		},
	}
	return json.NewEncoder(w).Encode(payload)
}

func formatCLIErrorText(err *cliError) string {
	if err == nil {
		return ""
	}

	lines := []string{
		fmt.Sprintf("error[%s]: %s", strings.ToLower(err.Code), err.Message),
	}
	if len(err.Suggestions) > 0 {
		lines = append(lines, "suggestions:")
		for _, suggestion := range err.Suggestions {
			lines = append(lines, "  "+suggestion)
		}
	}
	return strings.Join(lines, "\n")
}

// errorRule maps raw error text onto a cliError. Rules are tried in order.
type errorRule struct {
	code     string
	exitCode int
	match    []string
	suggest  func(msg string) []string
}

var errorRules = []errorRule{
	{
		code:     "INVALID_ARGS",
		exitCode: ExitInvalidArgs,
		match:    []string{"unknown command"},
		suggest: func(msg string) []string {
			out := []string{"skinrec concerns", "skinrec compare --concerns acne"}
			if bad := extractUnknownValue(msg, "unknown command"); bad != "" {
				if suggestion, ok := closestMatch(strings.ToLower(bad), knownCommands, 2); ok {
					out = append([]string{fmt.Sprintf("Did you mean `%s`?", suggestion)}, out...)
				}
			}
			return out
		},
	},
	{
		code:     "INVALID_ARGS",
		exitCode: ExitInvalidArgs,
		match:    []string{"unknown flag", "unknown shorthand flag"},
		suggest: func(msg string) []string {
			out := []string{"skinrec --skin-type oily --concerns acne", "skinrec -t dry -c dryness --avoid fragrance"}
			if bad := extractUnknownValue(msg, "unknown flag"); bad != "" {
				if suggestion, ok := resolveFlagName(strings.TrimLeft(bad, "-")); ok {
					out = append([]string{fmt.Sprintf("Try `--%s`.", suggestion)}, out...)
				}
			}
			return out
		},
	},
	{
		code:     "INVALID_ARGS",
		exitCode: ExitInvalidArgs,
		match: []string{
			"requires an argument for flag",
			"flag needs an argument",
			"invalid argument",
			"accepts 1 arg(s)",
			"required flag(s)",
		},
		suggest: staticSuggestions("skinrec --skin-type oily --concerns acne", "skinrec detect selfie.jpg"),
	},
	{
		code:     "NOT_FOUND",
		exitCode: ExitNotFound,
		match:    []string{"no products found", "catalog not found", "no ingredients match", "no products to export"},
	},
	{
		code:     "UPSTREAM_ERROR",
		exitCode: ExitUpstream,
		match: []string{
			"unexpected status",
			"fetching catalog",
			"loading catalog",
			"opening catalog",
			"missing required column",
		},
		suggest: staticSuggestions("Check the --catalog path or URL and retry."),
	},
}

func staticSuggestions(s ...string) func(string) []string {
	return func(string) []string { return s }
}

func (r errorRule) matches(lowerMsg string) bool {
	for _, m := range r.match {
		if strings.Contains(lowerMsg, m) {
			return true
		}
	}
	return false
}

func classifyCLIError(err error) *cliError {
	if err == nil {
		return nil
	}

	var typed *cliError
	if errors.As(err, &typed) {
		return typed
	}

	msg := strings.TrimSpace(err.Error())
	lowerMsg := strings.ToLower(msg)
	for _, rule := range errorRules {
		if !rule.matches(lowerMsg) {
			continue
		}
		out := &cliError{Code: rule.code, Message: msg, ExitCode: rule.exitCode}
		if rule.suggest != nil {
			out.Suggestions = rule.suggest(msg)
		}
		return out
	}
	return &cliError{
		Code:        "INTERNAL_ERROR",
		Message:     msg,
		Suggestions: []string{"Run `skinrec --help` for usage details."},
		ExitCode:    ExitInternal,
	}
}

func isTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func hasJSONPreference(args []string) bool {
	return anyArg(args, func(arg string) bool { return arg == "--json" || strings.HasPrefix(arg, "--json=") })
}

func hasHelpRequest(args []string) bool {
	return anyArg(args, func(arg string) bool { return arg == "-h" || arg == "--help" })
}

func anyArg(args []string, pred func(string) bool) bool {
	for _, arg := range args {
		if pred(arg) {
			return true
		}
	}
	return false
}

// interactiveCommands never switch to JSON on their own: they either talk to
// a terminal, emit shell code, or run as a long-lived service.
var interactiveCommands = map[string]bool{
	"completion": true,
	"help":       true,
	"tui":        true,
	"serve":      true,
}

// shouldAutoJSON reports whether output should default to JSON because
// stdout is not a terminal (pipes, agents, scripts).
func shouldAutoJSON(args []string, stdoutIsTTY bool) bool {
	if stdoutIsTTY || len(args) == 0 || hasJSONPreference(args) || hasHelpRequest(args) {
		return false
	}
	return !interactiveCommands[firstCommand(args)]
}

// knownShorthands maps single-character shorthands to whether they require a value.
var knownShorthands = map[byte]bool{
	't': true,  // --skin-type
	'c': true,  // --concerns
	'a': true,  // --avoid
	'b': true,  // --brand
	'n': true,  // --limit
	'i': true,  // --image
	'o': true,  // --export
	'q': true,  // --query
	'w': false, // --watch
	'v': false, // --verbose
}

// firstCommand returns the first positional argument, skipping the values
// of flags that take one.
func firstCommand(args []string) string {
	skip := false
	for _, arg := range args {
		switch {
		case skip:
			skip = false
		case arg == "--":
			return ""
		case !strings.HasPrefix(arg, "-"):
			return arg
		case strings.HasPrefix(arg, "--"):
			name, rest := splitFlag(strings.TrimPrefix(arg, "--"))
			spec, ok := knownFlags[name]
			skip = ok && spec.requiresValue && rest == ""
		case len(arg) == 2:
			skip = knownShorthands[arg[1]]
		}
	}
	return ""
}

type quickStartJSON struct {
	Name     string   `json:"name"`
	Usage    string   `json:"usage"`
	Examples []string `json:"examples"`
}

var quickStart = quickStartJSON{
	Name:  "skinrec",
	Usage: "skinrec [flags] | [concerns|ingredients|compare|detect|tui|serve] [flags]",
	Examples: []string{
		"skinrec --skin-type oily --concerns acne,pores --limit 5",
		"skinrec concerns",
		"skinrec compare --concerns dryness",
	},
}

const quickStartFlags = "--skin-type --concerns --avoid --brand --category --sort --limit --image --export --catalog --json"

// printQuickStart is shown when skinrec runs without arguments.
func printQuickStart(w io.Writer, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(quickStart)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nusage: %s\nexamples:\n", quickStart.Name, quickStart.Usage)
	for _, ex := range quickStart.Examples {
		fmt.Fprintf(&b, "  %s\n", ex)
	}
	fmt.Fprintf(&b, "flags: %s\n", quickStartFlags)
	_, err := io.WriteString(w, b.String())
	return err
}
