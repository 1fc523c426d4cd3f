package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/govcrawl/govcrawl/internal/artifact"
	"github.com/govcrawl/govcrawl/internal/config"
	"github.com/govcrawl/govcrawl/internal/crawler"
	"github.com/govcrawl/govcrawl/internal/database"
	"github.com/govcrawl/govcrawl/internal/extractor"
	"github.com/govcrawl/govcrawl/internal/fetcher"
	"github.com/govcrawl/govcrawl/internal/log"
	"github.com/govcrawl/govcrawl/internal/model"
	"github.com/govcrawl/govcrawl/internal/progress"
	"github.com/govcrawl/govcrawl/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl a site and write one HTML artifact per page",
		Long: `Crawl starts from the seed URLs, follows in-scope links, extracts the
content region of each page, and writes one standalone HTML file per
URL under the output directory.

The scope defaults to the host of the first seed. Pass --scope to
widen it to a parent domain or narrow it to a path prefix.

Examples:
  # Archive an act and everything it links to on the same host
  govcrawl crawl http://www.legislation.gov.uk/ukpga/2010/15/contents

  # Restrict the crawl to one act's pages
  govcrawl crawl --scope legislation.gov.uk/ukpga/2010/15 \
      http://www.legislation.gov.uk/ukpga/2010/15/contents

  # Resume an interrupted crawl without re-fetching finished pages
  govcrawl crawl --skip-existing http://www.legislation.gov.uk/ukpga/2010/15/contents

  # Machine-readable summary
  govcrawl crawl --json -r report.json http://www.legislation.gov.uk/ukpga/2010/15/contents

Configuration file (.govcrawl) example:
  sites:
    www.legislation.gov.uk:
      crawlDelaySeconds: 2
      rules:
        contentSelectors: ["#content"]`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().StringP("scope", "s", "",
		"Scope prefix, e.g. \"gov.uk\" or \"legislation.gov.uk/ukpga\" (default: host of first seed)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory to write HTML artifacts into")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("retries", "R", config.DefaultMaxRetries,
		"Total fetch attempts per URL")
	cmd.Flags().Int("max-redirects", config.DefaultMaxRedirects,
		"Maximum redirect hops per request")
	cmd.Flags().DurationP("delay", "d", config.DefaultCrawlDelay,
		"Politeness delay between requests to the same host")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of URLs processed concurrently")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to process (0 = unlimited)")
	cmd.Flags().Bool("skip-existing", false,
		"Skip URLs whose artifact file already exists")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .govcrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write summary to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-progress", false,
		"Disable the live progress display")
	cmd.Flags().Bool("no-db", false,
		"Do not record this run in the crawl history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing in-flight pages...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Seeds = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.ScopePrefix, err = cmd.Flags().GetString("scope")
	if err != nil {
		return nil, err
	}
	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}
	cfg.MaxRedirects, err = cmd.Flags().GetInt("max-redirects")
	if err != nil {
		return nil, err
	}
	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}
	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}
	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}
	cfg.SkipExisting, err = cmd.Flags().GetBool("skip-existing")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}
	cfg.NoProgress, err = cmd.Flags().GetBool("no-progress")
	if err != nil {
		return nil, err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if !noDB {
		cfg.DBDir = config.XDGDataDir()
	}

	// Load site-specific configurations from the config file.
	// If the user explicitly named a file, error if not found; if no
	// path was given, missing files are fine.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	return cfg, nil
}

// applySiteConfig layers the first seed's site overrides over the
// global configuration.
func applySiteConfig(cfg *config.Config) config.SiteConfig {
	host := ""
	if len(cfg.Seeds) > 0 {
		if u, err := url.Parse(cfg.Seeds[0]); err == nil {
			host = u.Hostname()
		}
	}

	site := cfg.SiteConfigs.GetSiteConfig(host)
	if site.ScopePrefix != "" && cfg.ScopePrefix == "" {
		cfg.ScopePrefix = site.ScopePrefix
	}
	if site.CrawlDelaySeconds > 0 {
		cfg.CrawlDelay = time.Duration(site.CrawlDelaySeconds * float64(time.Second))
	}
	cfg.Rules = config.MergeRules(cfg.Rules, site.Rules)
	if len(site.UnavailableTexts) > 0 {
		cfg.UnavailableTexts = site.UnavailableTexts
	}
	return site
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	site := applySiteConfig(cfg)

	if err := cfg.EnsureOutputDir(); err != nil {
		return fmt.Errorf("output directory error: %w", err)
	}

	// Open the history database unless disabled
	var db *database.CrawlDB
	if cfg.DBDir != "" {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "dir", cfg.DBDir)
	}

	scope, err := resolveScope(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"scope", scope.String(),
		"outputDir", cfg.OutputDir,
		"workers", cfg.Workers,
	)

	fetchOpts := []fetcher.Option{
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxRetries(cfg.MaxRetries),
		fetcher.WithBackoff(cfg.RetryBackoff),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithUnavailableTexts(cfg.UnavailableTexts),
		fetcher.WithLogger(logger),
	}
	if site.Cookie != "" {
		fetchOpts = append(fetchOpts, fetcher.WithCookie(site.Cookie))
	}
	if len(site.Headers) > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithHeaders(site.Headers))
	}

	var observer crawler.Observer = progress.Noop{}
	var reporter *progress.Reporter
	if !cfg.NoProgress && !cfg.Verbose {
		reporter = progress.NewReporter(os.Stderr)
		reporter.Start()
		observer = reporter
	}

	driver := crawler.NewDriver(
		crawler.NewFrontier(scope),
		fetcher.New(cfg.Timeout, cfg.MaxRedirects, fetchOpts...),
		extractor.New(cfg.Rules),
		artifact.NewWriter(cfg.OutputDir),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithSkipExisting(cfg.SkipExisting),
		crawler.WithLimiter(crawler.NewHostLimiter(cfg.CrawlDelay)),
		crawler.WithObserver(observer),
		crawler.WithDriverLogger(logger),
	)

	startTime := time.Now()
	summary, err := driver.Run(ctx, cfg.Seeds)
	if reporter != nil {
		reporter.Stop()
	}
	if err != nil {
		return fmt.Errorf("crawl failed to start: %w", err)
	}

	elapsed := time.Since(startTime)
	if summary.Cancelled {
		fmt.Fprintf(os.Stderr, "Crawl cancelled after %s; partial results follow.\n",
			elapsed.Round(time.Millisecond))
	}

	if err := outputReport(cfg, summary); err != nil {
		logger.Error("report failed", "error", err)
	}

	if err := saveRun(ctx, db, summary, logger); err != nil {
		logger.Error("failed to save run", "error", err)
	}

	return nil
}

// resolveScope derives the crawl scope from the --scope flag or the
// first seed's host.
func resolveScope(cfg *config.Config) (crawler.Scope, error) {
	if cfg.ScopePrefix != "" {
		scope, err := crawler.ParseScope(cfg.ScopePrefix)
		if err != nil {
			return crawler.Scope{}, fmt.Errorf("invalid scope %q: %w", cfg.ScopePrefix, err)
		}
		return scope, nil
	}
	scope, err := crawler.ScopeFromURL(cfg.Seeds[0])
	if err != nil {
		return crawler.Scope{}, err
	}
	return scope, nil
}

// outputReport outputs the crawl summary in the requested format.
func outputReport(cfg *config.Config, summary *model.CrawlSummary) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(summary)
	return err
}

// saveRun saves the crawl summary to the database if enabled.
// If db is nil, this function is a no-op.
func saveRun(ctx context.Context, db *database.CrawlDB, summary *model.CrawlSummary, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// A cancelled run's context is already done; saving still has to
	// happen so the partial run is inspectable later.
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	runID, err := db.SaveRun(ctx, summary)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("run saved", "runID", runID)
	return nil
}
