package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "twxcli/internal/errors"
	"twxcli/internal/exporter"
	"twxcli/internal/infrastructure"
	"twxcli/internal/middleware"
	"twxcli/pkg/contracts/domain"
)

// ReportQuery selects one report for one day.
type ReportQuery struct {
	Kind   string `json:"kind" validate:"required,report_kind"`
	Date   string `json:"date" validate:"required,date"`
	Format string `json:"format" validate:"omitempty,oneof=json csv xlsx"`
}

// RangeQuery selects one report over a date range; To defaults to From.
type RangeQuery struct {
	Kind   string `json:"kind" validate:"required,report_kind"`
	From   string `json:"from" validate:"required,date"`
	To     string `json:"to" validate:"omitempty,date"`
	Format string `json:"format" validate:"omitempty,oneof=json csv xlsx"`
}

// StocksQuery selects a listed-securities directory.
type StocksQuery struct {
	Market string `json:"market" validate:"omitempty,market"`
}

// KindInfo describes one supported report.
type KindInfo struct {
	Kind     domain.ReportKind `json:"kind"`
	Exchange string            `json:"exchange"`
}

// ReportHandler serves decomposed exchange reports.
type ReportHandler struct {
	service      ReportService
	writer       RecordWriter
	validator    *middleware.RequestValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, writer RecordWriter, validator *middleware.RequestValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:      service,
		writer:       writer,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "report_handler"),
	}
}

// Routes returns the report routes, mounted under /api/reports.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListKinds)
	r.Get("/{kind}", h.GetRange)
	r.Get("/{kind}/{date}", h.GetDay)
	return r
}

// ListKinds handles GET /api/reports
func (h *ReportHandler) ListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := h.service.Kinds()
	infos := make([]KindInfo, 0, len(kinds))
	for _, k := range kinds {
		infos = append(infos, KindInfo{Kind: k, Exchange: k.Exchange()})
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   infos,
		"count":  len(infos),
	})
}

// GetDay handles GET /api/reports/{kind}/{date}
func (h *ReportHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	q := ReportQuery{
		Kind:   chi.URLParam(r, "kind"),
		Date:   chi.URLParam(r, "date"),
		Format: r.URL.Query().Get("format"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	kind := domain.ReportKind(q.Kind)
	date, _ := time.Parse(domain.DateLayout, q.Date)

	record, err := h.service.Decompose(r.Context(), kind, date)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format := formatOf(q.Format); format != exporter.FormatJSON {
		h.download(w, r, []*domain.OutputRecord{record}, format, kind, q.Date, "")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   record,
	})
}

// GetRange handles GET /api/reports/{kind}?from=&to=
func (h *ReportHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := RangeQuery{
		Kind:   chi.URLParam(r, "kind"),
		From:   query.Get("from"),
		To:     query.Get("to"),
		Format: query.Get("format"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if q.To == "" {
		q.To = q.From
	}

	kind := domain.ReportKind(q.Kind)
	from, _ := time.Parse(domain.DateLayout, q.From)
	to, _ := time.Parse(domain.DateLayout, q.To)

	records, err := h.service.DecomposeRange(r.Context(), kind, from, to)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Range served",
		slog.String("kind", q.Kind),
		slog.String("from", q.From),
		slog.String("to", q.To),
		slog.Int("records", len(records)))

	if format := formatOf(q.Format); format != exporter.FormatJSON {
		h.download(w, r, records, format, kind, q.From, q.To)
		return
	}

	if records == nil {
		records = []*domain.OutputRecord{}
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
	})
}

// ListStocks handles GET /api/stocks?market=TSE|OTC
func (h *ReportHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	q := StocksQuery{Market: r.URL.Query().Get("market")}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if q.Market == "" {
		q.Market = domain.MarketTSE
	}

	stocks, err := h.service.ListedStocks(r.Context(), q.Market)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"market": strings.ToUpper(q.Market),
		"data":   stocks,
		"count":  len(stocks),
	})
}

// download encodes records fully before writing so an encoding failure can
// still be reported as a problem response.
func (h *ReportHandler) download(w http.ResponseWriter, r *http.Request, records []*domain.OutputRecord, format exporter.Format, kind domain.ReportKind, from, to string) {
	var buf bytes.Buffer
	if err := h.writer.Write(&buf, records, format, kind); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	name := string(kind) + "_" + from
	if to != "" && to != from {
		name += "_" + to
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format.Extension()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "Download interrupted", slog.String("error", err.Error()))
	}
}

// formatOf maps a validated format parameter; empty means JSON.
func formatOf(s string) exporter.Format {
	if f, err := exporter.ParseFormat(s); err == nil {
		return f
	}
	return exporter.FormatJSON
}
