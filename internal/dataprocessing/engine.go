package dataprocessing

import (
	"log/slog"
	"time"

	"twxcli/pkg/contracts/domain"
)

// Engine decomposes decoded exchange tables into canonical output records.
// It is stateless apart from its read-only catalog and safe for concurrent use.
type Engine struct {
	catalog Catalog
	logger  *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over the given catalog.
func NewEngine(catalog Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() Catalog {
	return e.catalog
}

// Decompose turns one report table into the record of the query date.
// It returns nil when the table has no rows for that date or the kind is unknown.
func (e *Engine) Decompose(table domain.Table, kind domain.ReportKind, date time.Time) *domain.OutputRecord {
	if !e.catalog.Supports(kind) {
		e.logger.Warn("no decomposition layout for report kind", slog.String("kind", string(kind)))
		return nil
	}
	if table.IsEmpty() {
		return nil
	}

	day := TradingDay(date)
	dict := e.catalog.Dictionaries[kind]
	var record *domain.OutputRecord

	switch kind {
	case domain.KindLargeTradersFutures:
		record = e.decomposePositions(table, kind, day, dict, e.catalog.FuturesContract, []domain.Right{domain.RightNone})
	case domain.KindLargeTradersOptions:
		record = e.decomposePositions(table, kind, day, dict, e.catalog.OptionsContract, []domain.Right{domain.RightCall, domain.RightPut})
	case domain.KindPutCallRatio:
		record = e.decomposePutCallRatio(table, kind, day, dict)
	case domain.KindInstitutionalFutures:
		record = e.decomposeInstitutionalFutures(table, kind, day, dict)
	case domain.KindTWSEInstitutional, domain.KindTPExInstitutional:
		record = e.decomposeInvestors(table, kind, day, dict)
	case domain.KindTWSEMarginTransactions:
		record = e.decomposeMargin(table, kind, day, dict)
	case domain.KindTPExMarginTransactions:
		record = decomposeMarginSummary(table, kind, day, e.catalog.MarginSummaries[kind])
	case domain.KindTWSEMarketTrades, domain.KindTPExMarketTrades:
		record = e.decomposeMarketTrades(table, kind, day, dict)
	case domain.KindTWSEMarketBreadth, domain.KindTPExMarketBreadth:
		record = decomposeBreadth(table, kind, day, e.catalog.Breadth[kind])
	}

	if record == nil {
		e.logger.Debug("no rows for query date",
			slog.String("kind", string(kind)),
			slog.String("date", domain.DayKey(day)))
		return nil
	}

	e.logger.Debug("decomposed report",
		slog.String("kind", string(kind)),
		slog.String("date", domain.DayKey(day)),
		slog.Int("fields", len(record.Fields)))
	return record
}

// rowsForDay translates a table and keeps the rows of the query date.
func rowsForDay(table domain.Table, date time.Time, dict FieldDictionary) []map[string]string {
	var rows []map[string]string
	for _, fields := range TranslateTable(table, dict) {
		if matchesDay(fields, date) {
			rows = append(rows, fields)
		}
	}
	return rows
}
