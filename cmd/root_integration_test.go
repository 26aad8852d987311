package cmd

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/skinrec/internal/display"
)

const testCatalogCSV = `Product,Brand,Category,Skin_Type,Ingredients_Cleaned,Product_Url,Good_Stuff,Rating_Stars
Clear Gel,Acme,Cleanser,oily,"['salicylic acid', 'niacinamide']",https://example.com/gel,1,4.5
Pore Serum,Dewy,Serum,"combination, oily","['niacinamide', 'zinc']",,1,4.8
Rich Cream,Dewy,Moisturizer,dry,"['glycerin', 'shea butter']",,1,4.2
Calm Mist,Leaf,Toner,sensitive,"['aloe', 'fragrance']",,1,3.9
`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skindataall.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogCSV), 0o644))
	return path
}

func runTestCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = runCLI(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunCLI_CompletionZsh(t *testing.T) {
	code, stdout, stderr := runTestCLI("completion", "zsh")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "#compdef skinrec")
	assert.Empty(t, stderr)
}

func TestRunCLI_HelpConcerns(t *testing.T) {
	code, stdout, stderr := runTestCLI("help", "concerns")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "skinrec concerns [flags]")
	assert.Empty(t, stderr)
}

func TestRunCLI_TolerantRewriteWithoutCatalogRead(t *testing.T) {
	code, stdout, stderr := runTestCLI("concerns", "-catalog", "missing.csv", "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "skinrec concerns [flags]")
	assert.Contains(t, stderr, "interpreted `-catalog` as `--catalog`")
}

func TestRunCLI_HelpDoesNotLeakIntoNextRun(t *testing.T) {
	path := writeTestCatalog(t)

	code, stdout, _ := runTestCLI("concerns", "--help")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "skinrec concerns [flags]")

	code, stdout, stderr := runTestCLI("concerns", "--catalog", path, "--json")
	require.Equal(t, 0, code, stderr)
	var concerns []display.ConcernJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &concerns))
	assert.Len(t, concerns, 9)
}

func TestRunCLI_SliceFlagsResetBetweenRuns(t *testing.T) {
	path := writeTestCatalog(t)

	code, _, stderr := runTestCLI("--catalog", path, "-t", "oily", "-c", "acne", "--avoid", "salicylic", "--json")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runTestCLI("--catalog", path, "-t", "oily", "-c", "acne", "--json")
	require.Equal(t, 0, code, stderr)
	var payload display.RecommendationJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	require.NotEmpty(t, payload.Products)
	assert.Equal(t, "Clear Gel", payload.Products[0].Name)
}

func TestRunCLI_QuickStartWithoutArgs(t *testing.T) {
	code, stdout, _ := runTestCLI()

	assert.Equal(t, 0, code)
	var payload quickStartJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "skinrec", payload.Name)
}

func TestRunCLI_RecommendJSON(t *testing.T) {
	path := writeTestCatalog(t)

	code, stdout, stderr := runTestCLI("--catalog", path, "-t", "oily", "-c", "acne")

	require.Equal(t, 0, code, stderr)
	var payload display.RecommendationJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))

	assert.Equal(t, "primary", payload.Tier)
	assert.Equal(t, "Here are your recommendations:", payload.Message)
	require.Equal(t, 2, payload.Count)
	assert.Equal(t, "Clear Gel", payload.Products[0].Name)
	assert.Equal(t, []string{"niacinamide", "salicylic acid"}, payload.Products[0].Matched)
	assert.Equal(t, "Pore Serum", payload.Products[1].Name)
}

func TestRunCLI_RecommendFallbackAndLimit(t *testing.T) {
	path := writeTestCatalog(t)

	code, stdout, stderr := runTestCLI("--catalog", path, "-t", "dry", "-c", "acne", "--limit", "1")

	require.Equal(t, 0, code, stderr)
	var payload display.RecommendationJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))

	assert.Equal(t, "fallback", payload.Tier)
	require.Equal(t, 1, payload.Count)
	assert.Equal(t, "Pore Serum", payload.Products[0].Name)
}

func TestRunCLI_AvoidRemovesProducts(t *testing.T) {
	path := writeTestCatalog(t)

	code, stdout, stderr := runTestCLI("--catalog", path, "-t", "oily", "-c", "acne", "--avoid", "salicylic")

	require.Equal(t, 0, code, stderr)
	var payload display.RecommendationJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	require.Equal(t, 1, payload.Count)
	assert.Equal(t, "Pore Serum", payload.Products[0].Name)
}

func TestRunCLI_NoMatchesIsNotFound(t *testing.T) {
	path := writeTestCatalog(t)

	code, stdout, stderr := runTestCLI("--catalog", path, "-t", "oily", "-c", "wrinkles")

	assert.Equal(t, ExitNotFound, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `"code":"NOT_FOUND"`)
	assert.Contains(t, stderr, "Try different criteria for better results.")
}

func TestRunCLI_UnknownConcernNote(t *testing.T) {
	path := writeTestCatalog(t)

	code, _, stderr := runTestCLI("--catalog", path, "-t", "oily", "-c", "acnee,acne")

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "did you mean `acne`?")
}

func TestRunCLI_MissingCatalog(t *testing.T) {
	code, _, stderr := runTestCLI("--catalog", filepath.Join(t.TempDir(), "nope.csv"), "-t", "oily", "-c", "acne")

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, "catalog not found")
}

func TestRunCLI_InvalidSort(t *testing.T) {
	code, _, stderr := runTestCLI("-t", "oily", "-c", "acne", "--sort", "price")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "invalid value for --sort")
}

func TestRunCLI_MissingConcerns(t *testing.T) {
	path := writeTestCatalog(t)

	code, _, stderr := runTestCLI("--catalog", path, "-t", "oily")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "at least one concern is required")
}

func TestRunCLI_ExportCSV(t *testing.T) {
	path := writeTestCatalog(t)
	out := filepath.Join(t.TempDir(), "picks.csv")

	code, _, stderr := runTestCLI("--catalog", path, "-t", "oily", "-c", "acne", "--export", out)

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "recommendations saved to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name,brand,category,rating,url,key_ingredients")
	assert.Contains(t, string(data), "Clear Gel,Acme,Cleanser,4.5")
}

func TestRunCLI_Compare(t *testing.T) {
	path := writeTestCatalog(t)

	code, stdout, stderr := runTestCLI("compare", "--catalog", path, "-c", "acne")

	require.Equal(t, 0, code, stderr)
	var results []compareSkinTypeResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 4)

	assert.Equal(t, "oily", results[0].SkinType)
	assert.Equal(t, "primary", results[0].Tier)
	assert.Equal(t, 2, results[0].Matches)
	assert.Equal(t, "Clear Gel", results[0].TopProduct)

	assert.Equal(t, "dry", results[1].SkinType)
	assert.Equal(t, "fallback", results[1].Tier)
	assert.Equal(t, "sensitive", results[2].SkinType)
	assert.Equal(t, "combination", results[3].SkinType)
	assert.Equal(t, 4, results[3].Rank)
}

func TestRunCLI_CompareRequiresConcerns(t *testing.T) {
	code, _, stderr := runTestCLI("compare")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "--concerns is required for compare")
}

func TestRunCLI_ConcernsJSON(t *testing.T) {
	path := writeTestCatalog(t)

	code, stdout, stderr := runTestCLI("concerns", "--catalog", path)

	require.Equal(t, 0, code, stderr)
	var concerns []display.ConcernJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &concerns))
	assert.Len(t, concerns, 9)
	assert.Equal(t, "acne", concerns[0].Name)
}

func TestRunCLI_IngredientsQuery(t *testing.T) {
	path := writeTestCatalog(t)

	code, stdout, stderr := runTestCLI("ingredients", "--catalog", path, "-q", "acid")
	require.Equal(t, 0, code, stderr)

	var ingredients []string
	require.NoError(t, json.Unmarshal([]byte(stdout), &ingredients))
	assert.Equal(t, []string{"salicylic acid"}, ingredients)

	code, stdout, stderr = runTestCLI("ingredients", "--catalog", path, "-q", "slcylc")
	require.Equal(t, 0, code, stderr)
	require.NoError(t, json.Unmarshal([]byte(stdout), &ingredients))
	assert.Equal(t, []string{"salicylic acid"}, ingredients)

	code, _, stderr = runTestCLI("ingredients", "--catalog", path, "-q", "mercury")
	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, "no ingredients match")
}

func TestRunCLI_DetectSmallImageFindsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 10, 10))))
	require.NoError(t, f.Close())

	code, stdout, stderr := runTestCLI("detect", path)

	require.Equal(t, 0, code, stderr)
	var payload detectResultJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, path, payload.Image)
	assert.Empty(t, payload.Concerns)
}

func TestRunCLI_DetectRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	code, _, stderr := runTestCLI("detect", path)

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "is not a JPEG, PNG or GIF image")
}

func TestRunCLI_ServeWatchRejectsRemoteCatalog(t *testing.T) {
	code, _, stderr := runTestCLI("serve", "--catalog", "https://example.com/skindataall.csv", "--watch")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "--watch needs a local catalog file")
}
