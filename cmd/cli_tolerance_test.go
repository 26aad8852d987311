package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCLIArgs_RewritesCommonFlagSyntax(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"-skin-type", "oily", "json"})

	assert.Equal(t, []string{"--skin-type", "oily", "--json"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesTypoFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"--concers", "acne"})

	assert.Equal(t, []string{"--concerns", "acne"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesAliasAndAssignment(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"--skin", "dry", "exclude=fragrance"})

	assert.Equal(t, []string{"--skin-type", "dry", "--avoid=fragrance"}, args)
	assert.Len(t, notes, 2)
}

func TestNormalizeCLIArgs_RewritesCommandTypo(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"concernss", "--catalog", "products.csv"})

	assert.Equal(t, []string{"concerns", "--catalog", "products.csv"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_DoesNotRewriteCompletionPositionalArgs(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"completion", "zsh"})

	assert.Equal(t, []string{"completion", "zsh"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_DoesNotRewriteHelpCommandArgAsFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"help", "concerns"})

	assert.Equal(t, []string{"help", "concerns"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_DoesNotRewriteDetectImageArg(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"detect", "json"})

	assert.Equal(t, []string{"detect", "json"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_RespectsDoubleDashBoundary(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"concerns", "--", "json", "catalog"})

	assert.Equal(t, []string{"concerns", "--", "json", "catalog"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_LeavesKnownShorthandUntouched(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"-t", "oily", "-n", "5"})

	assert.Equal(t, []string{"-t", "oily", "-n", "5"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_ShorthandValueIsNotRewritten(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "ingredients query",
			args: []string{"ingredients", "-q", "acid"},
			want: []string{"ingredients", "-q", "acid"},
		},
		{
			name: "compare concerns",
			args: []string{"compare", "-c", "catalog"},
			want: []string{"compare", "-c", "catalog"},
		},
		{
			name: "boolean shorthand takes no value",
			args: []string{"serve", "-w", "json"},
			want: []string{"serve", "-w", "--json"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, _ := normalizeCLIArgs(tt.args)
			assert.Equal(t, tt.want, args)
		})
	}
}

func TestNormalizeCLIArgs_FlagValueIsNotRewritten(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"--catalog", "json", "concerns"})

	assert.Equal(t, []string{"--catalog", "json", "concerns"}, args)
	assert.Empty(t, notes)
}

func TestExplainCLIError_UnknownFlagIncludesSuggestionAndExamples(t *testing.T) {
	msg := explainCLIError(errors.New("unknown flag: --concers"))

	assert.Contains(t, msg, "Try `--concerns`.")
	assert.Contains(t, msg, "skinrec --skin-type oily --concerns acne")
	assert.Contains(t, msg, "skinrec -t dry -c dryness --avoid fragrance")
}

func TestExplainCLIError_UnknownCommandIncludesSuggestionAndExamples(t *testing.T) {
	msg := explainCLIError(errors.New("unknown command \"comapre\" for \"skinrec\""))

	assert.Contains(t, msg, "Did you mean `compare`?")
	assert.Contains(t, msg, "skinrec concerns")
	assert.Contains(t, msg, "skinrec compare --concerns acne")
}

func TestClassifyCLIError_CatalogFailures(t *testing.T) {
	upstream := classifyCLIError(errors.New("loading catalog: missing required column \"name\""))
	assert.Equal(t, "UPSTREAM_ERROR", upstream.Code)
	assert.Equal(t, ExitUpstream, upstream.ExitCode)

	notFound := classifyCLIError(errors.New("exporting recommendations: no products to export"))
	assert.Equal(t, "NOT_FOUND", notFound.Code)
	assert.Equal(t, ExitNotFound, notFound.ExitCode)

	internal := classifyCLIError(errors.New("something odd"))
	assert.Equal(t, ExitInternal, internal.ExitCode)
}

func TestClosestMatch(t *testing.T) {
	match, ok := closestMatch("ingredeints", knownCommands, 2)
	assert.True(t, ok)
	assert.Equal(t, "ingredients", match)

	_, ok = closestMatch("zzzzzz", knownCommands, 2)
	assert.False(t, ok)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("acne", "acne"))
	assert.Equal(t, 1, levenshtein("acne", "acnee"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}
