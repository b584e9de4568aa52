package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apiscout/apiscout/internal/config"
	"github.com/apiscout/apiscout/internal/extract"
	"github.com/apiscout/apiscout/internal/logging"
	"github.com/apiscout/apiscout/internal/pipeline"
)

type generateFlags struct {
	maxPages     int
	maxDepth     int
	workers      int
	overrideURLs []string
	noRender     bool
	noCache      bool
}

func newGenerateCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate <base-url>",
		Short: "Run the discovery and extraction pipeline against a site",
		Long: `Runs the full pipeline against one documentation site: seed paths,
sitemap, and a prioritized crawl find candidate pages; each page is
cleaned, rendered if needed, and extracted; the merged endpoint set and
the run report are written to stdout as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], flags)
		},
	}

	cmd.Flags().IntVar(&flags.maxPages, "max-pages", 0, "cap on accepted documentation pages")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "cap on crawl depth from the base URL")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "extraction worker pool width")
	cmd.Flags().StringSliceVar(&flags.overrideURLs, "url", nil, "documentation URL to use directly, skipping discovery (repeatable)")
	cmd.Flags().BoolVar(&flags.noRender, "no-render", false, "disable the headless rendering fallback")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable both cache namespaces")

	return cmd
}

func runGenerate(cmd *cobra.Command, baseURL string, flags generateFlags) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyFlags(&cfg, cmd, flags)

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	if cfg.Extraction.Endpoint == "" {
		return fmt.Errorf("extraction.endpoint must be set (APISCOUT_EXTRACTION_ENDPOINT)")
	}
	extractor := extract.NewHTTPExtractor(extract.HTTPExtractorConfig{
		Endpoint: cfg.Extraction.Endpoint,
		APIKey:   cfg.Extraction.APIKey,
		Timeout:  time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
	}, logger)

	result, err := pipeline.New(cfg, extractor, logger).Run(cmd.Context(), baseURL)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if n := len(result.Report.Failures); n > 0 {
		logger.Warn("run finished with per-page failures", zap.Int("failures", n))
	}
	return nil
}

// applyFlags layers explicit flag values over the loaded configuration.
func applyFlags(cfg *config.Config, cmd *cobra.Command, flags generateFlags) {
	if cmd.Flags().Changed("max-pages") {
		cfg.Discovery.MaxPages = flags.maxPages
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Discovery.MaxDepth = flags.maxDepth
	}
	if cmd.Flags().Changed("workers") {
		cfg.Extraction.Workers = flags.workers
	}
	if len(flags.overrideURLs) > 0 {
		cfg.Discovery.OverrideURLs = flags.overrideURLs
	}
	if flags.noRender {
		cfg.Renderer.Enabled = false
	}
	if flags.noCache {
		cfg.Cache.PagesEnabled = false
		cfg.Cache.ExtractionsEnabled = false
		cfg.Cache.Backend = "memory"
	}
}
