package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	apperrors "twxcli/internal/errors"
	"twxcli/internal/infrastructure"
	"twxcli/pkg/contracts/domain"
)

// Endpoints holds the base URL of every exchange site.
type Endpoints struct {
	TAIFEX string
	TWSE   string
	TPEx   string
	ISIN   string
}

// DefaultEndpoints returns the production sites.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		TAIFEX: "https://www.taifex.com.tw",
		TWSE:   "https://www.twse.com.tw",
		TPEx:   "https://www.tpex.org.tw",
		ISIN:   "https://isin.twse.com.tw",
	}
}

// format of the response body
type bodyFormat int

const (
	formatBig5CSV bodyFormat = iota
	formatJSON
)

// request describes how one report kind is downloaded.
type request struct {
	post   bool
	url    string
	params url.Values
	format bodyFormat
	table  TableSelector
}

// Fetcher downloads report tables from the exchanges.
type Fetcher struct {
	client    *Client
	endpoints Endpoints
	logger    *slog.Logger
}

// NewFetcher creates a fetcher over a shared client.
func NewFetcher(client *Client, endpoints Endpoints, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:    client,
		endpoints: endpoints,
		logger:    infrastructure.WithComponent(logger, "fetcher"),
	}
}

// Fetch downloads and decodes the report of the given kind for one day.
// An empty table means the exchange published nothing for that day.
func (f *Fetcher) Fetch(ctx context.Context, kind domain.ReportKind, date time.Time) (domain.Table, error) {
	req, err := f.buildRequest(kind, date)
	if err != nil {
		return domain.Table{}, err
	}

	var body []byte
	if req.post {
		body, err = f.client.PostForm(ctx, req.url, req.params)
	} else {
		body, err = f.client.Get(ctx, req.url, req.params)
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("fetch %s for %s: %w", kind, domain.DayKey(date), err)
	}

	table, err := decodeBody(body, req)
	if err != nil {
		return domain.Table{}, fmt.Errorf("decode %s for %s: %w", kind, domain.DayKey(date), err)
	}

	f.logger.DebugContext(ctx, "Fetched report",
		slog.String("kind", string(kind)),
		slog.String("date", domain.DayKey(date)),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

func decodeBody(body []byte, req request) (domain.Table, error) {
	switch req.format {
	case formatJSON:
		return ReadTWSEJSONTable(body, req.table)
	default:
		text, err := DecodeBig5(body)
		if err != nil {
			return domain.Table{}, err
		}
		// TAIFEX answers with an HTML notice page when no data exists
		if looksLikeHTML(text) {
			return domain.Table{}, nil
		}
		return ReadCSV(text)
	}
}

// buildRequest maps a report kind to its download request.
func (f *Fetcher) buildRequest(kind domain.ReportKind, date time.Time) (request, error) {
	slashed := date.Format("2006/01/02")
	compact := date.Format("20060102")

	taifexRange := func(extra ...string) url.Values {
		form := url.Values{
			"queryStartDate": {slashed},
			"queryEndDate":   {slashed},
		}
		for i := 0; i+1 < len(extra); i += 2 {
			form.Set(extra[i], extra[i+1])
		}
		return form
	}

	switch kind {
	case domain.KindLargeTradersFutures:
		return request{post: true, url: f.taifex("/cht/3/largeTraderFutDown"), params: taifexRange(), format: formatBig5CSV}, nil
	case domain.KindLargeTradersOptions:
		return request{post: true, url: f.taifex("/cht/3/largeTraderOptDown"), params: taifexRange(), format: formatBig5CSV}, nil
	case domain.KindPutCallRatio:
		return request{post: true, url: f.taifex("/cht/3/pcRatioDown"), params: taifexRange(), format: formatBig5CSV}, nil
	case domain.KindInstitutionalFutures:
		return request{post: true, url: f.taifex("/cht/3/futContractsDateDown"), params: taifexRange("commodityId", "TXF"), format: formatBig5CSV}, nil
	case domain.KindTWSEInstitutional:
		return request{url: f.twse("/rwd/zh/fund/BFI82U"), params: url.Values{
			"response": {"json"},
			"dayDate":  {compact},
			"type":     {"day"},
		}, format: formatJSON}, nil
	case domain.KindTWSEMarginTransactions:
		return request{url: f.twse("/rwd/zh/marginTrading/MI_MARGN"), params: url.Values{
			"response":   {"json"},
			"date":       {compact},
			"selectType": {"MS"},
		}, format: formatJSON}, nil
	case domain.KindTWSEMarketTrades:
		return request{url: f.twse("/exchangeReport/FMTQIK"), params: url.Values{
			"response": {"json"},
			"date":     {compact},
		}, format: formatJSON}, nil
	case domain.KindTWSEMarketBreadth:
		return request{url: f.twse("/rwd/zh/afterTrading/MI_INDEX"), params: url.Values{
			"response": {"json"},
			"date":     {compact},
			"type":     {"MS"},
		}, format: formatJSON, table: TableSelector{Title: "漲跌證券數合計"}}, nil
	case domain.KindTPExInstitutional:
		return request{url: f.tpex("/www/zh-tw/insti/summary"), params: url.Values{
			"date":     {slashed},
			"type":     {"Daily"},
			"response": {"json"},
		}, format: formatJSON}, nil
	case domain.KindTPExMarketTrades:
		return request{url: f.tpex("/www/zh-tw/afterTrading/tradingIndex"), params: url.Values{
			"date":     {slashed},
			"response": {"json"},
		}, format: formatJSON}, nil
	case domain.KindTPExMarketBreadth:
		return request{url: f.tpex("/www/zh-tw/afterTrading/highlight"), params: url.Values{
			"date":     {slashed},
			"response": {"json"},
		}, format: formatJSON}, nil
	case domain.KindTPExMarginTransactions:
		return request{url: f.tpex("/www/zh-tw/margin/balance"), params: url.Values{
			"date":     {slashed},
			"response": {"json"},
		}, format: formatJSON, table: TableSelector{Summary: true}}, nil
	default:
		return request{}, apperrors.NewInvalidInputError(fmt.Sprintf("unsupported report kind %q", kind))
	}
}

func (f *Fetcher) taifex(path string) string { return joinURL(f.endpoints.TAIFEX, path) }
func (f *Fetcher) twse(path string) string   { return joinURL(f.endpoints.TWSE, path) }
func (f *Fetcher) tpex(path string) string   { return joinURL(f.endpoints.TPEx, path) }

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}
