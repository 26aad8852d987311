package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/config"
	"github.com/tayloree/skinrec/internal/detect"
	"github.com/tayloree/skinrec/internal/display"
	"github.com/tayloree/skinrec/internal/logging"
	"github.com/tayloree/skinrec/internal/recommend"
	"github.com/tayloree/skinrec/internal/request"
)

var (
	flagCatalog  string
	flagConfig   string
	flagJSON     bool
	flagVerbose  bool
	flagSkinType string
	flagConcerns []string
	flagAvoid    []string
	flagBrand    string
	flagCategory string
	flagSort     string
	flagLimit    int
	flagImage    string
	flagExport   string
)

var rootCmd = &cobra.Command{
	Use:   "skinrec",
	Short: "Recommend skincare products for a skin type and concerns",
	Long: "CLI tool that ranks products from a skincare catalog against your skin type\n" +
		"and concerns, using curated concern-to-ingredient keywords.\n\n" +
		"Agent-friendly mode: minor syntax issues are auto-corrected when intent is clear " +
		"(for example: -concerns acne, concerns=acne, --concers acne).",
	Example: `  skinrec --skin-type oily --concerns acne,pores
  skinrec -t dry -c dryness --avoid fragrance --limit 10
  skinrec -t combination -c redness --sort brand --export picks.csv
  skinrec -t normal --image selfie.jpg
  skinrec concerns
  skinrec compare --concerns acne`,
	RunE: runRecommend,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagCatalog, "catalog", "", "Catalog CSV/JSON file or http(s) URL (default from config: skindataall.csv)")
	pf.StringVar(&flagConfig, "config", "", "Config file (default: ./skinrec.yaml)")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug details to stderr")

	registerRecommendFlags(rootCmd.Flags())
	rootCmd.Flags().StringVarP(&flagImage, "image", "i", "", "Face photo to detect extra concerns from (JPEG/PNG/GIF)")
	rootCmd.Flags().StringVarP(&flagExport, "export", "o", "", "Also write the shown products to a .csv or .txt file")
}

// Execute runs the root command.
func Execute() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	normalizedArgs, notes := normalizeCLIArgs(args)
	for _, note := range notes {
		fmt.Fprintf(stderr, "note: %s\n", note)
	}

	if len(normalizedArgs) == 0 {
		if err := printQuickStart(stdout, !isTTY(stdout)); err != nil {
			cliErr := classifyCLIError(err)
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
			return cliErr.ExitCode
		}
		return ExitSuccess
	}

	if shouldAutoJSON(normalizedArgs, isTTY(stdout)) {
		normalizedArgs = append(normalizedArgs, "--json")
	}

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(normalizedArgs)

	if err := rootCmd.Execute(); err != nil {
		cliErr := classifyCLIError(err)
		if hasJSONPreference(normalizedArgs) {
			if jerr := printCLIErrorJSON(stderr, cliErr); jerr != nil {
				fmt.Fprintln(stderr, formatCLIErrorText(classifyCLIError(jerr)))
				return ExitInternal
			}
		} else {
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
		}
		return cliErr.ExitCode
	}
	return ExitSuccess
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

func resetCLIState() {
	flagCatalog = ""
	flagConfig = ""
	flagJSON = false
	flagVerbose = false
	flagSkinType = ""
	flagConcerns = nil
	flagAvoid = nil
	flagBrand = ""
	flagCategory = ""
	flagSort = ""
	flagLimit = 0
	flagImage = ""
	flagExport = ""
	flagIngredientQuery = ""
	flagServeAddr = ""
	flagServeWatch = false

	// Flags without a bound variable (cobra's --help) keep their value
	// between in-process runs unless reset here.
	resetChangedFlags(rootCmd)
}

func resetChangedFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetChangedFlags(child)
	}
}

func registerRecommendFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagSkinType, "skin-type", "t", "", "Your skin type (e.g., oily, dry, combination, normal, sensitive)")
	registerConcernFlags(f)
	f.StringVar(&flagSort, "sort", "", "Order results by rating, brand, or relevance")
	f.IntVarP(&flagLimit, "limit", "n", 0, "Number of products to show (0 = all; default from config: 5)")
}

func registerConcernFlags(f *pflag.FlagSet) {
	f.StringSliceVarP(&flagConcerns, "concerns", "c", nil, "Comma-separated skin concerns (e.g., acne,pores)")
	f.StringSliceVarP(&flagAvoid, "avoid", "a", nil, "Comma-separated ingredients to exclude (e.g., fragrance,alcohol)")
	f.StringVarP(&flagBrand, "brand", "b", "", "Only products whose brand contains this text")
	f.StringVar(&flagCategory, "category", "", "Only products whose category contains this text (e.g., serum)")
}

func validateSortMode() error {
	if recommend.IsSortMode(flagSort) {
		return nil
	}
	return invalidArgsError(
		"invalid value for --sort (use rating, brand, or relevance)",
		"skinrec -t oily -c acne --sort rating",
		"skinrec -t oily -c acne --sort brand",
	)
}

// loadSettings reads configuration and applies --catalog and --verbose.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, invalidArgsError(err.Error(), "skinrec --config ./skinrec.yaml", "skinrec --catalog skindataall.csv")
	}
	if flagCatalog != "" {
		cfg.Catalog.Path = flagCatalog
	}

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	return cfg, nil
}

// loadCatalog opens the configured catalog and logs what was skipped.
func loadCatalog(cmd *cobra.Command, cfg *config.Config) (*catalog.Catalog, error) {
	log := logging.Logger()
	location := cfg.Catalog.Path

	c, err := catalog.Open(cmd.Context(), location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundError(
				fmt.Sprintf("catalog not found at %s", location),
				"skinrec --catalog path/to/skindataall.csv",
				"export SKINREC_CATALOG_PATH=path/to/skindataall.csv",
			)
		}
		return nil, upstreamError("loading catalog", err)
	}

	logCatalogIssues(log, c)
	log.Debug().
		Str("catalog", location).
		Int("products", c.Len()).
		Int("ingredients", len(c.Ingredients())).
		Int("skipped_rows", len(c.Issues())).
		Msg("catalog loaded")
	return c, nil
}

func logCatalogIssues(log zerolog.Logger, c *catalog.Catalog) {
	for _, issue := range c.Issues() {
		log.Warn().
			Int("row", issue.Row).
			Str("product", issue.Product).
			Str("reason", issue.Reason).
			Msg("ingredient list unreadable; product kept without ingredients")
	}
}

// buildRequest assembles and validates a request from flags, config
// defaults and any detected concerns.
func buildRequest(cmd *cobra.Command, cfg *config.Config, detected []string) (request.Request, error) {
	req := request.Request{
		SkinType: flagSkinType,
		Concerns: flagConcerns,
		Detected: detected,
		Avoid:    flagAvoid,
		Brand:    flagBrand,
		Category: flagCategory,
		Sort:     flagSort,
		Limit:    flagLimit,
	}
	if strings.TrimSpace(req.SkinType) == "" {
		req.SkinType = cfg.Defaults.SkinType
	}
	if strings.TrimSpace(req.Sort) == "" {
		req.Sort = cfg.Defaults.Sort
	}
	if f := cmd.Flags().Lookup("limit"); f == nil || !f.Changed {
		req.Limit = cfg.Defaults.Limit
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return req, invalidArgsError(
			err.Error(),
			"skinrec --skin-type oily --concerns acne,pores",
			"skinrec concerns",
		)
	}
	return req, nil
}

func detectImageConcerns(path string) ([]string, error) {
	concerns, err := detect.DetectFile(detect.NewHeuristic(), path)
	if err != nil {
		if errors.Is(err, detect.ErrUnsupportedImage) {
			return nil, invalidArgsError(
				fmt.Sprintf("%s is not a JPEG, PNG or GIF image", path),
				"skinrec detect selfie.jpg",
			)
		}
		return nil, invalidArgsError(fmt.Sprintf("reading image: %v", err))
	}
	return concerns, nil
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	var detected []string
	if flagImage != "" {
		detected, err = detectImageConcerns(flagImage)
		if err != nil {
			return err
		}
		if len(detected) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "note: no concerns detected from the image; using --concerns only.")
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: detected concerns from image: %s\n", strings.Join(detected, ", "))
		}
	}
	req, err := buildRequest(cmd, cfg, detected)
	if err != nil {
		return err
	}

	c, err := loadCatalog(cmd, cfg)
	if err != nil {
		return err
	}
	for _, note := range concernNotes(req.Concerns, c) {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: %s\n", note)
	}

	res := recommend.Recommend(c, req.Query())
	log := logging.Logger()
	log.Debug().
		Str("tier", res.Tier.String()).
		Int("matches", len(res.Products)).
		Strs("keywords", res.Keywords).
		Msg("recommendation computed")

	if res.Tier == recommend.TierNone {
		return notFoundError(
			recommend.MessageNone,
			"Try different criteria for better results.",
			"skinrec concerns",
			"skinrec -t all -c "+strings.Join(req.Concerns, ","),
		)
	}

	if flagExport != "" {
		if err := display.ExportFile(flagExport, recommend.Present(res, req.Limit)); err != nil {
			return fmt.Errorf("exporting recommendations: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "note: recommendations saved to %s\n", flagExport)
	}

	if flagJSON {
		return display.PrintRecommendationsJSON(cmd.OutOrStdout(), res, req.Limit)
	}
	display.PrintCatalogContext(cmd.OutOrStdout(), c)
	display.PrintRecommendations(cmd.OutOrStdout(), res, req.Limit)
	return nil
}
