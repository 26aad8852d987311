package cmd

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/display"
	"github.com/tayloree/skinrec/internal/recommend"
	"golang.org/x/term"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse recommendations interactively in the terminal",
	Example: `  skinrec tui --skin-type oily --concerns acne,pores
  skinrec tui -t dry -c dryness --category moisturizer --sort brand`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	registerRecommendFlags(tuiCmd.Flags())
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	if !flagJSON && !isInteractiveSession(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return invalidArgsError(
			"`skinrec tui` requires an interactive terminal",
			"Use `skinrec -t oily -c acne --json` in pipelines.",
		)
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	req, err := buildRequest(cmd, cfg, nil)
	if err != nil {
		return err
	}

	if flagJSON {
		c, err := loadCatalog(cmd, cfg)
		if err != nil {
			return err
		}
		return display.PrintRecommendationsJSON(cmd.OutOrStdout(), recommend.Recommend(c, req.Query()), req.Limit)
	}

	model := newLoadingProductsTUIModel(tuiLoadConfig{
		ctx:          cmd.Context(),
		location:     cfg.Catalog.Path,
		initialQuery: req.Query(),
	})
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(cmd.Context()),
	)
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(productsTUIModel); ok && m.fatalErr != nil {
		return upstreamError("loading catalog", m.fatalErr)
	}
	return nil
}

func loadTUIData(ctx context.Context, location string) (*catalog.Catalog, error) {
	return catalog.Open(ctx, location)
}

func isInteractiveSession(stdin io.Reader, stdout io.Writer) bool {
	inputFile, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(inputFile.Fd())) {
		return false
	}
	return isTTY(stdout)
}
