package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tayloree/skinrec/internal/catalog"
	"github.com/tayloree/skinrec/internal/logging"
	"github.com/tayloree/skinrec/internal/metrics"
	"github.com/tayloree/skinrec/internal/server"
)

var (
	flagServeAddr  string
	flagServeWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over HTTP",
	Long: "Run the HTTP adapter. Endpoints: GET /healthz, GET /api/concerns,\n" +
		"GET|POST /api/recommendations, POST /api/detect, GET /metrics.",
	Example: `  skinrec serve
  skinrec serve --addr 127.0.0.1:9000 --watch
  curl 'localhost:8080/api/recommendations?skin_type=oily&concerns=acne,pores'`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config: :8080)")
	serveCmd.Flags().BoolVarP(&flagServeWatch, "watch", "w", false, "Reload the catalog when its file changes")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// The server reports requests at info level even when the CLI default is quieter.
	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	} else if lvl := logging.ParseLevel(level); lvl > zerolog.InfoLevel && lvl != zerolog.Disabled {
		level = "info"
	}
	format := cfg.Log.Format
	if !isTTY(cmd.ErrOrStderr()) {
		format = "json"
	}
	logging.Init(logging.Config{Level: level, Format: format, Output: cmd.ErrOrStderr()})
	log := logging.Logger()

	if flagServeAddr != "" {
		cfg.Server.Addr = flagServeAddr
	}
	watch := flagServeWatch || cfg.Catalog.Watch
	if watch && catalog.IsRemote(cfg.Catalog.Path) {
		return invalidArgsError(
			"--watch needs a local catalog file",
			"skinrec serve --catalog skindataall.csv --watch",
		)
	}

	c, err := loadCatalog(cmd, cfg)
	if err != nil {
		return err
	}
	store := catalog.NewStore(c)
	metrics.SetCatalogProducts(c.Len())
	log.Info().Str("catalog", cfg.Catalog.Path).Int("products", c.Len()).Msg("catalog loaded")

	if watch {
		w, err := catalog.NewWatcher(cfg.Catalog.Path, store, log, catalog.WithReloadHook(func(c *catalog.Catalog, err error) {
			metrics.RecordCatalogReload(c.Len(), err)
		}))
		if err != nil {
			return upstreamError("watching catalog", err)
		}
		if err := w.Start(); err != nil {
			return upstreamError("watching catalog", err)
		}
		defer w.Stop()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(store, server.Options{
		RateLimit:       cfg.Server.RateLimit,
		CORSOrigins:     cfg.Server.CORSOrigins,
		DefaultSkinType: cfg.Defaults.SkinType,
		DefaultSort:     cfg.Defaults.Sort,
		DefaultLimit:    cfg.Defaults.Limit,
		Logger:          log,
	})
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		return upstreamError("serving http", err)
	}
	return nil
}
