package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"twxcli/internal/config"
	"twxcli/internal/dataprocessing"
	"twxcli/internal/infrastructure"
	"twxcli/pkg/contracts/domain"
)

// ReportFetcher downloads report tables and the listed-stock directory.
type ReportFetcher interface {
	Fetch(ctx context.Context, kind domain.ReportKind, date time.Time) (domain.Table, error)
	ListedStocks(ctx context.Context, market string) ([]domain.ListedStock, error)
}

// Decomposer turns one decoded table into a record; nil means no data.
type Decomposer interface {
	Decompose(table domain.Table, kind domain.ReportKind, date time.Time) *domain.OutputRecord
}

// ReportService fetches exchange reports and decomposes them.
type ReportService struct {
	fetcher ReportFetcher
	engine  Decomposer
	limits  config.RangeConfig
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// ReportServiceOption customizes a ReportService.
type ReportServiceOption func(*ReportService)

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *slog.Logger) ReportServiceOption {
	return func(s *ReportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records decompositions on metrics.
func WithMetrics(metrics *infrastructure.BusinessMetrics) ReportServiceOption {
	return func(s *ReportService) {
		s.metrics = metrics
	}
}

// WithTracer sets the tracer; the global provider's tracer is used otherwise.
func WithTracer(tracer trace.Tracer) ReportServiceOption {
	return func(s *ReportService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewReportService creates a report service.
func NewReportService(fetcher ReportFetcher, engine Decomposer, limits config.RangeConfig, opts ...ReportServiceOption) *ReportService {
	if limits.MaxDays <= 0 {
		limits.MaxDays = config.Default().Range.MaxDays
	}
	if limits.Concurrency <= 0 {
		limits.Concurrency = 1
	}

	s := &ReportService{
		fetcher: fetcher,
		engine:  engine,
		limits:  limits,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = infrastructure.WithComponent(s.logger, "report_service")
	return s
}

// Kinds returns the supported report kinds.
func (s *ReportService) Kinds() []domain.ReportKind {
	return domain.AllReportKinds()
}

// Decompose fetches one report for one day and decomposes it. Weekends and
// days the exchange published nothing for return ErrNoData.
func (s *ReportService) Decompose(ctx context.Context, kind domain.ReportKind, date time.Time) (*domain.OutputRecord, error) {
	if _, ok := domain.ParseReportKind(string(kind)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	date = dataprocessing.TradingDay(date)
	day := domain.DayKey(date)

	ctx, span := s.tracer.Start(ctx, "report.decompose",
		trace.WithAttributes(
			attribute.String("report.kind", string(kind)),
			attribute.String("report.date", day),
		))
	defer span.End()

	start := time.Now()
	logger := infrastructure.WithReport(s.logger, string(kind), day)

	if dataprocessing.IsWeekend(date) {
		infrastructure.RecordDecomposition(ctx, s.metrics, string(kind), infrastructure.ResultNoData, time.Since(start))
		return nil, fmt.Errorf("%w: %s is a %s", ErrNoData, day, date.Weekday())
	}

	table, err := s.fetcher.Fetch(ctx, kind, date)
	infrastructure.RecordFetch(ctx, s.metrics, kind.Exchange(), string(kind), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordDecomposition(ctx, s.metrics, string(kind), infrastructure.ResultError, time.Since(start))
		logger.ErrorContext(ctx, "Report fetch failed", slog.String("error", err.Error()))
		return nil, err
	}

	record := s.engine.Decompose(table, kind, date)
	if record == nil {
		infrastructure.RecordDecomposition(ctx, s.metrics, string(kind), infrastructure.ResultNoData, time.Since(start))
		logger.InfoContext(ctx, "No data published")
		return nil, fmt.Errorf("%w: %s %s", ErrNoData, kind, day)
	}

	span.SetAttributes(attribute.Int("report.fields", len(record.Fields)))
	infrastructure.RecordDecomposition(ctx, s.metrics, string(kind), infrastructure.ResultOK, time.Since(start))
	return record, nil
}

// DecomposeRange decomposes every weekday in [from, to]. Days without data
// are skipped; the result is ordered by date. The first failing day cancels
// the rest and its error is returned.
func (s *ReportService) DecomposeRange(ctx context.Context, kind domain.ReportKind, from, to time.Time) ([]*domain.OutputRecord, error) {
	if _, ok := domain.ParseReportKind(string(kind)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	from = dataprocessing.TradingDay(from)
	to = dataprocessing.TradingDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, domain.DayKey(from), domain.DayKey(to))
	}
	if span := int(to.Sub(from).Hours()/24) + 1; span > s.limits.MaxDays {
		return nil, fmt.Errorf("%w: %d days, at most %d", ErrRangeTooLong, span, s.limits.MaxDays)
	}

	ctx, span := s.tracer.Start(ctx, "report.decompose_range",
		trace.WithAttributes(
			attribute.String("report.kind", string(kind)),
			attribute.String("report.from", domain.DayKey(from)),
			attribute.String("report.to", domain.DayKey(to)),
		))
	defer span.End()

	days := Weekdays(from, to)
	infrastructure.RecordRangeDays(ctx, s.metrics, string(kind), len(days))

	records := make([]*domain.OutputRecord, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limits.Concurrency)

	for i, day := range days {
		g.Go(func() error {
			record, err := s.Decompose(gctx, kind, day)
			if errors.Is(err, ErrNoData) {
				return nil
			}
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	result := make([]*domain.OutputRecord, 0, len(records))
	for _, record := range records {
		if record != nil {
			result = append(result, record)
		}
	}

	s.logger.InfoContext(ctx, "Range decomposed",
		slog.String("kind", string(kind)),
		slog.String("from", domain.DayKey(from)),
		slog.String("to", domain.DayKey(to)),
		slog.Int("weekdays", len(days)),
		slog.Int("records", len(result)))
	return result, nil
}

// ListedStocks returns the listed-securities directory of a market (TSE or OTC).
func (s *ReportService) ListedStocks(ctx context.Context, market string) ([]domain.ListedStock, error) {
	market = strings.ToUpper(strings.TrimSpace(market))

	ctx, span := s.tracer.Start(ctx, "report.listed_stocks",
		trace.WithAttributes(attribute.String("market", market)))
	defer span.End()

	stocks, err := s.fetcher.ListedStocks(ctx, market)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("stocks", len(stocks)))
	return stocks, nil
}

// Weekdays lists the Monday-to-Friday days in [from, to].
func Weekdays(from, to time.Time) []time.Time {
	var days []time.Time
	for d := dataprocessing.TradingDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		if !dataprocessing.IsWeekend(d) {
			days = append(days, d)
		}
	}
	return days
}
