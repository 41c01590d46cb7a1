package main

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/okian/persona/internal/adapters/enrich"
	"github.com/okian/persona/internal/adapters/refdata"
	app "github.com/okian/persona/internal/app"
	"github.com/okian/persona/internal/config"
	"github.com/okian/persona/internal/domain/education"
	"github.com/okian/persona/internal/domain/interest"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/socioclass"
	"github.com/okian/persona/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Load reference tables once, before any influencer processing. A table
	// that fails to load disables its branch for the whole session; the
	// failure is surfaced here once, not per influencer.
	loader := refdata.NewLoader()
	classTable := loadClassTable(ctx, log, loader, cfg.ClassTablePath)
	eduTable := loadEducationTable(ctx, log, loader, cfg.EducationTablePath)
	translations := loadTranslations(ctx, log, loader, cfg.TranslationsPath)

	var fetcher enrich.Fetcher = enrich.Disabled{}
	if cfg.EnrichEnabled {
		fetcher = enrich.NewHTTPFetcher(cfg.EnrichBaseURL,
			enrich.WithTimeout(time.Duration(cfg.EnrichTimeoutMS)*time.Millisecond),
			enrich.WithRetries(cfg.EnrichRetries),
		)
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithCountryFilter(cfg.CountryFilter),
		app.WithTopInterests(cfg.TopInterests),
		app.WithTopCities(cfg.TopCities),
		app.WithPostSampleSize(cfg.PostSampleSize),
		app.WithEducationStdDev(cfg.EducationStdDev),
		app.WithClassTable(classTable),
		app.WithEducationTable(eduTable),
		app.WithTranslations(translations),
		app.WithFetcher(fetcher),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return 1
	}
	defer svc.Stop()

	docs, err := readDocuments(cfg.DocumentsDir)
	if err != nil {
		log.Error(ctx, "reading documents failed", logger.String("dir", cfg.DocumentsDir), logger.Error(err))
		return 1
	}
	if len(docs) == 0 {
		log.Warn(ctx, "no documents found", logger.String("dir", cfg.DocumentsDir))
		return 0
	}

	rep, err := svc.RunBatch(ctx, docs)
	if err != nil {
		log.Error(ctx, "batch run failed", logger.Error(err))
		return 1
	}

	if err := writeTable(cfg.OutputPath, rep.Table()); err != nil {
		log.Error(ctx, "writing summary table failed", logger.Error(err))
		return 1
	}

	log.Info(ctx, "summary table written",
		logger.Int("rows", len(rep.Rows)),
		logger.String("output", outputName(cfg.OutputPath)),
	)
	return 0
}

func loadClassTable(ctx context.Context, log logger.Logger, loader *refdata.Loader, path string) socioclass.Table {
	if path == "" {
		log.Warn(ctx, "no class table configured; class-mix branch disabled")
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "class table unavailable; class-mix branch disabled", logger.String("path", path), logger.Error(err))
		return nil
	}
	defer f.Close()
	table, err := loader.LoadClassTable(ctx, f)
	if err != nil {
		log.Error(ctx, "class table unavailable; class-mix branch disabled", logger.String("path", path), logger.Error(err))
		return nil
	}
	return table
}

func loadEducationTable(ctx context.Context, log logger.Logger, loader *refdata.Loader, path string) education.Table {
	if path == "" {
		log.Warn(ctx, "no education table configured; education branch disabled")
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "education table unavailable; education branch disabled", logger.String("path", path), logger.Error(err))
		return nil
	}
	defer f.Close()
	table, err := loader.LoadEducationTable(ctx, f)
	if err != nil {
		log.Error(ctx, "education table unavailable; education branch disabled", logger.String("path", path), logger.Error(err))
		return nil
	}
	return table
}

func loadTranslations(ctx context.Context, log logger.Logger, loader *refdata.Loader, path string) interest.MapTranslator {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Warn(ctx, "translations unavailable; interest names kept as-is", logger.String("path", path), logger.Error(err))
		return nil
	}
	defer f.Close()
	table, err := loader.LoadTranslations(ctx, f)
	if err != nil {
		log.Warn(ctx, "translations unavailable; interest names kept as-is", logger.String("path", path), logger.Error(err))
		return nil
	}
	return table
}

// readDocuments collects the raw *.json exports from dir. I/O stays at this
// edge; the core only ever sees byte payloads.
func readDocuments(dir string) ([]model.Document, error) {
	if dir == "" {
		return nil, errors.New("documents_dir not configured")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var docs []model.Document
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, model.Document{SourceName: e.Name(), Raw: raw})
	}
	return docs, nil
}

// writeTable renders the summary table as CSV to path, or stdout when empty.
func writeTable(path string, table [][]string) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.WriteAll(table); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
