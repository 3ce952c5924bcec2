package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/crawl"
	"github.com/fwojciec/cratedocs/fs"
	"github.com/fwojciec/cratedocs/goquery"
	"github.com/fwojciec/cratedocs/htmltomarkdown"
	cdhttp "github.com/fwojciec/cratedocs/http"
	"github.com/fwojciec/cratedocs/ingest"
	"github.com/fwojciec/cratedocs/langchaingo"
	"github.com/fwojciec/cratedocs/postgres"
	"github.com/fwojciec/cratedocs/readability"
	cdslog "github.com/fwojciec/cratedocs/slog"
	"github.com/fwojciec/cratedocs/sqlite"
	"github.com/fwojciec/cratedocs/tiktoken"
	"github.com/fwojciec/cratedocs/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	m := NewMain()
	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	m.Close()
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads configuration. Defaults to os.Getenv.
	Getenv func(string) string

	// Services for end-to-end testing. When nil, Run wires the real ones.
	Crates       cratedocs.CrateService
	Loader       cratedocs.DocumentLoader
	TokenCounter cratedocs.TokenCounter
	Factory      ingest.EmbedderFactory

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close releases the store and fetcher opened by Run.
func (m *Main) Close() error {
	var errs []error
	for _, c := range slices.Backward(m.closers) {
		errs = append(errs, c.Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("cratedocs"),
		kong.Description("Populate the crate docs database with embeddings"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if slices.Contains(args, "--help") || slices.Contains(args, "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	if !cli.List && cli.Delete == "" && cli.CrateName == "" {
		return kongCtx.Run(deps)
	}

	getenv := m.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg, err := LoadConfig(getenv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", cratedocs.ErrorMessage(err))
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	crates, err := m.openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}
	deps.Crates = cdslog.NewLoggingCrateService(crates, logger)

	if cli.needsIngester() {
		in, err := m.newIngester(cli, cfg, deps.Crates, logger)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", cratedocs.ErrorMessage(err))
			return err
		}
		deps.Ingester = in
	}

	return kongCtx.Run(deps)
}

// openStore returns the injected store, or opens PostgreSQL when a database
// URL is configured and SQLite otherwise.
func (m *Main) openStore(ctx context.Context, cfg *Config) (cratedocs.CrateService, error) {
	if m.Crates != nil {
		return m.Crates, nil
	}

	if cfg.DatabaseURL != "" {
		db := postgres.NewDB(cfg.DatabaseURL)
		if err := db.Open(ctx); err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		m.closers = append(m.closers, db)
		return postgres.NewCrateService(db), nil
	}

	path := cfg.DBPath
	if path == "" {
		path = defaultDBPath()
	}
	db := sqlite.NewDB(path)
	if err := db.Open(); err != nil {
		return nil, fmt.Errorf("failed to open database at %q (set CRATEDOCS_DB to use a different path): %w", path, err)
	}
	m.closers = append(m.closers, db)
	return sqlite.NewCrateService(db), nil
}

func (m *Main) newIngester(cli *CLI, cfg *Config, crates cratedocs.CrateService, logger *slog.Logger) (*ingest.Ingester, error) {
	// Test mode never counts tokens, so it does not need the encoder ranks.
	counter := m.TokenCounter
	if counter == nil && !cli.Test {
		tc, err := tiktoken.NewTokenCounter(tiktoken.DefaultEncoding)
		if err != nil {
			return nil, err
		}
		counter = tc
	}
	if counter != nil {
		counter = cdslog.NewLoggingTokenCounter(counter, logger)
	}

	loader := m.Loader
	if loader == nil {
		loader = m.newLoader(cli, logger)
	}
	if cli.Export != "" {
		loader = fs.NewExportingLoader(loader, cli.Export)
	}
	loader = cdslog.NewLoggingDocumentLoader(loader, logger)

	factory := m.Factory
	if factory == nil {
		factory = func() (cratedocs.Embedder, error) {
			embCfg, err := cfg.EmbeddingConfig()
			if err != nil {
				return nil, err
			}
			e, err := langchaingo.NewEmbedder(embCfg, counter, langchaingo.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			return cdslog.NewLoggingEmbedder(e, logger), nil
		}
	}

	in := ingest.NewIngester(crates, loader, counter, factory, logger)
	in.Validate = func() error {
		_, err := cfg.EmbeddingConfig()
		return err
	}
	in.CostRate = cfg.CostPerMillion
	return in, nil
}

func (m *Main) newLoader(cli *CLI, logger *slog.Logger) *crawl.Loader {
	fetcher := cdhttp.NewFetcher()
	m.closers = append(m.closers, fetcher)

	rustdoc := goquery.NewRustdocExtractor()
	return &crawl.Loader{
		Fetcher:      cdslog.NewLoggingFetcher(fetcher, logger),
		Resolver:     cdslog.NewLoggingURLResolver(fetcher, logger),
		Extractor:    rustdoc,
		Fallbacks:    []cratedocs.Extractor{trafilatura.NewExtractor(), readability.NewExtractor()},
		Converter:    htmltomarkdown.NewConverter(),
		LinkSelector: goquery.NewRustdocSelector(),
		RateLimiter:  crawl.NewDomainLimiter(crawl.DefaultRequestsPerSecond),
		Versions:     rustdoc,
		Logger:       logger,
		Concurrency:  cli.Concurrency,
	}
}
