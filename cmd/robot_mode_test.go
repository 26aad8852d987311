package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldAutoJSON(t *testing.T) {
	assert.True(t, shouldAutoJSON([]string{"concerns"}, false))
	assert.True(t, shouldAutoJSON([]string{"-t", "oily", "-c", "acne"}, false))
	assert.False(t, shouldAutoJSON([]string{"concerns", "--json"}, false))
	assert.False(t, shouldAutoJSON([]string{"completion", "zsh"}, false))
	assert.False(t, shouldAutoJSON([]string{"--help"}, false))
	assert.False(t, shouldAutoJSON([]string{"serve", "--addr", ":9000"}, false))
	assert.False(t, shouldAutoJSON([]string{"tui"}, false))
	assert.False(t, shouldAutoJSON([]string{"concerns"}, true))
}

func TestFirstCommand_SkipsFlagValues(t *testing.T) {
	assert.Equal(t, "compare", firstCommand([]string{"-t", "oily", "compare"}))
	assert.Equal(t, "ingredients", firstCommand([]string{"--catalog", "products.csv", "ingredients"}))
	assert.Equal(t, "serve", firstCommand([]string{"-v", "serve"}))
	assert.Equal(t, "", firstCommand([]string{"--skin-type=oily", "--", "serve"}))
}

func TestPrintQuickStart_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := printQuickStart(&buf, true)
	require.NoError(t, err)

	var payload quickStartJSON
	err = json.Unmarshal(buf.Bytes(), &payload)
	require.NoError(t, err)

	assert.Equal(t, "skinrec", payload.Name)
	assert.NotEmpty(t, payload.Usage)
	assert.Len(t, payload.Examples, 3)
}

func TestPrintQuickStart_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printQuickStart(&buf, false))

	assert.Contains(t, buf.String(), "usage: skinrec")
	assert.Contains(t, buf.String(), "skinrec concerns")
	assert.Contains(t, buf.String(), "--skin-type")
}

func TestPrintCLIErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	err := printCLIErrorJSON(&buf, classifyCLIError(invalidArgsError("bad flag", "skinrec -t oily -c acne")))
	require.NoError(t, err)

	var payload map[string]any
	err = json.Unmarshal(buf.Bytes(), &payload)
	require.NoError(t, err)

	errorObject, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INVALID_ARGS", errorObject["code"])
	assert.Equal(t, "bad flag", errorObject["message"])
	assert.EqualValues(t, ExitInvalidArgs, errorObject["exitCode"])
}

func TestFormatCLIErrorText(t *testing.T) {
	text := formatCLIErrorText(classifyCLIError(notFoundError("no products found", "Try different criteria for better results.")))

	assert.Equal(t, "error[not_found]: no products found\nsuggestions:\n  Try different criteria for better results.", text)
}

func TestUpstreamError_WrapsCause(t *testing.T) {
	err := upstreamError("loading catalog", errors.New("unexpected status 500"))

	cliErr := classifyCLIError(err)
	assert.Equal(t, "UPSTREAM_ERROR", cliErr.Code)
	assert.Equal(t, "loading catalog: unexpected status 500", cliErr.Message)
}
