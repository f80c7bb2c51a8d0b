package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"twxcli/internal/app"
	"twxcli/internal/config"
	"twxcli/internal/dataprocessing"
	"twxcli/internal/exporter"
	"twxcli/internal/infrastructure"
	"twxcli/internal/scraper"
	"twxcli/internal/services"
	"twxcli/internal/validation"
	"twxcli/pkg/contracts/domain"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// taipei is the exchanges' calendar zone; the default date is today there.
var taipei = time.FixedZone("CST", 8*60*60)

// cliOptions holds the parsed command line.
type cliOptions struct {
	kind       string
	date       string
	to         string
	format     string
	out        string
	save       bool
	stocks     string
	in         string
	configFile string
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions

	fs := flag.NewFlagSet("decompose", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.kind, "kind", "", "report kind, e.g. taifex-large-traders-futures")
	fs.StringVar(&opts.date, "date", "", "trading day (YYYY-MM-DD, YYYY/MM/DD or ROC 113/01/02); defaults to today in Taipei")
	fs.StringVar(&opts.to, "to", "", "last day of a range; decomposes every weekday from -date to -to")
	fs.StringVar(&opts.format, "format", "", "output format: json, csv or xlsx (defaults to export.format)")
	fs.StringVar(&opts.out, "out", "", "output file; stdout when empty")
	fs.BoolVar(&opts.save, "save", false, "write to the exports directory as kind_from[_to].ext")
	fs.StringVar(&opts.stocks, "stocks", "", "list the securities of a market (TSE or OTC) instead of decomposing")
	fs.StringVar(&opts.in, "in", "", "decompose a downloaded CSV or XLSX file instead of fetching")
	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: decompose -kind KIND [-date D] [-to D2] [-format json|csv|xlsx] [-out FILE | -save]\n")
		fmt.Fprintf(stderr, "       decompose -kind KIND -date D -in FILE\n")
		fmt.Fprintf(stderr, "       decompose -stocks TSE|OTC\n\nKinds:\n")
		for _, kind := range domain.AllReportKinds() {
			fmt.Fprintf(stderr, "  %s\n", kind)
		}
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch {
	case opts.stocks != "":
		return opts, nil
	case opts.kind == "":
		fs.Usage()
		return opts, errors.New("-kind is required")
	case opts.in != "" && opts.to != "":
		return opts, errors.New("-in decomposes a single day; drop -to")
	case opts.out != "" && opts.save:
		return opts, errors.New("-out and -save are mutually exclusive")
	}
	return opts, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(exitError)
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		slog.Error("Failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(exitError)
	}

	// stdout carries report data only
	logCfg := cfg.Logging
	logCfg.FilePath = paths.LogFile(logCfg.FilePath)
	logger, err := infrastructure.InitializeLoggerWithConsole(logCfg, os.Stderr)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, opts, cfg, paths, logger, os.Stdout)
	stop()

	infrastructure.CloseLogFile()
	os.Exit(code)
}

func run(ctx context.Context, opts cliOptions, cfg *config.Config, paths *config.Paths, logger *slog.Logger, stdout io.Writer) int {
	ctx = infrastructure.EnsureTraceID(ctx)
	container := app.BuildServices(cfg, paths, logger)
	files := validation.NewFileValidator(validation.DefaultMaxInputBytes, logger)

	if opts.stocks != "" {
		return listStocks(ctx, container.Reports, opts, logger, stdout)
	}

	kind, ok := domain.ParseReportKind(opts.kind)
	if !ok {
		logger.Error("Unknown report kind", slog.String("kind", opts.kind))
		return exitUsage
	}

	from, err := parseDay(opts.date)
	if err != nil {
		logger.Error("Invalid -date", slog.String("error", err.Error()))
		return exitUsage
	}
	to := from
	if opts.to != "" {
		if to, err = parseDay(opts.to); err != nil {
			logger.Error("Invalid -to", slog.String("error", err.Error()))
			return exitUsage
		}
	}

	formatName := opts.format
	if formatName == "" {
		formatName = cfg.Export.Format
	}
	format, err := exporter.ParseFormat(formatName)
	if err != nil {
		logger.Error("Invalid -format", slog.String("error", err.Error()))
		return exitUsage
	}

	var input validation.InputType
	if opts.in != "" {
		if input, err = files.ValidateReportFile(opts.in); err != nil {
			logger.Error("Invalid -in", slog.String("error", err.Error()))
			return exitUsage
		}
	}
	if opts.out != "" || opts.save {
		dir := paths.ExportsDir
		if opts.out != "" {
			dir = filepath.Dir(opts.out)
		}
		if err := files.ValidateOutputDirectory(dir); err != nil {
			logger.Error("Output directory unusable", slog.String("error", err.Error()))
			return exitError
		}
	}

	logger.InfoContext(ctx, "Decomposing",
		slog.String("kind", string(kind)),
		slog.String("from", domain.DayKey(from)),
		slog.String("to", domain.DayKey(to)),
		slog.String("input", opts.in))

	var records []*domain.OutputRecord
	switch {
	case opts.in != "" && dataprocessing.IsWeekend(from):
		err = services.ErrNoData
	case opts.in != "":
		var record *domain.OutputRecord
		if record, err = decomposeFile(container.Engine, input, opts.in, kind, from); err == nil {
			records = []*domain.OutputRecord{record}
		}
	case from.Equal(to):
		var record *domain.OutputRecord
		if record, err = container.Reports.Decompose(ctx, kind, from); err == nil {
			records = []*domain.OutputRecord{record}
		}
	default:
		records, err = container.Reports.DecomposeRange(ctx, kind, from, to)
	}

	if errors.Is(err, services.ErrNoData) || (err == nil && len(records) == 0) {
		logger.WarnContext(ctx, "No data published",
			slog.String("kind", string(kind)),
			slog.String("from", domain.DayKey(from)),
			slog.String("to", domain.DayKey(to)))
		return exitOK
	}
	if err != nil {
		logger.ErrorContext(ctx, "Decomposition failed", slog.String("error", err.Error()))
		return exitError
	}

	if opts.out == "" && !opts.save {
		if err := container.Exporter.Write(stdout, records, format, kind); err != nil {
			logger.ErrorContext(ctx, "Failed to write output", slog.String("error", err.Error()))
			return exitError
		}
		return exitOK
	}

	if _, err := container.Exporter.ExportFile(opts.out, records, format, kind, domain.DayKey(from), domain.DayKey(to)); err != nil {
		logger.ErrorContext(ctx, "Failed to export", slog.String("error", err.Error()))
		return exitError
	}
	return exitOK
}

// parseDay accepts every date form the exchanges publish. Empty means today
// in Taipei.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return dataprocessing.TradingDay(time.Now().In(taipei)), nil
	}
	day, ok := dataprocessing.ParseReportDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("cannot parse %q as a date", s)
	}
	return day, nil
}

// decomposeFile reads a report downloaded by hand. Workbooks are located by
// their header labels; CSV may be Big5 or UTF-8.
func decomposeFile(engine *dataprocessing.Engine, input validation.InputType, path string, kind domain.ReportKind, date time.Time) (*domain.OutputRecord, error) {
	var (
		table domain.Table
		err   error
	)
	if input == validation.InputXLSX {
		dict, ok := engine.Catalog().Dictionary(kind)
		if !ok {
			return nil, fmt.Errorf("%w: no field dictionary for %s", services.ErrUnknownKind, kind)
		}
		if table, err = dataprocessing.ParseWorkbook(path, dict); err != nil {
			return nil, err
		}
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if data, err = scraper.DecodeBig5(data); err != nil {
			return nil, err
		}
		if table, err = scraper.ReadCSV(data); err != nil {
			return nil, err
		}
	}

	record := engine.Decompose(table, kind, date)
	if record == nil {
		return nil, fmt.Errorf("%w: %s has no %s rows for %s", services.ErrNoData, path, kind, domain.DayKey(date))
	}
	return record, nil
}

func listStocks(ctx context.Context, reports *services.ReportService, opts cliOptions, logger *slog.Logger, stdout io.Writer) int {
	stocks, err := reports.ListedStocks(ctx, opts.stocks)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list stocks", slog.String("error", err.Error()))
		return exitError
	}

	logger.InfoContext(ctx, "Listed stocks",
		slog.String("market", opts.stocks),
		slog.Int("count", len(stocks)))

	if strings.EqualFold(opts.format, string(exporter.FormatCSV)) {
		w := csv.NewWriter(stdout)
		w.Write([]string{"code", "name", "market", "industry"})
		for _, s := range stocks {
			w.Write([]string{s.Code, s.Name, s.Market, s.Industry})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			logger.ErrorContext(ctx, "Failed to write output", slog.String("error", err.Error()))
			return exitError
		}
		return exitOK
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stocks); err != nil {
		logger.ErrorContext(ctx, "Failed to write output", slog.String("error", err.Error()))
		return exitError
	}
	return exitOK
}
