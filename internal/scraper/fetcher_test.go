package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "twxcli/internal/errors"
	"twxcli/pkg/contracts/domain"
)

var fetchDay = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func testFetcher(t *testing.T, handler http.Handler) *Fetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		Timeout:        5 * time.Second,
		RequestsPerSec: 1000,
		Burst:          10,
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
	}, nil)
	return NewFetcher(client, Endpoints{
		TAIFEX: server.URL,
		TWSE:   server.URL,
		TPEx:   server.URL,
		ISIN:   server.URL,
	}, nil)
}

func TestFetchTAIFEXCSV(t *testing.T) {
	payload := big5(t, "日期,商品(契約),交易人類別\n2024/01/02,TX,0\n")

	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cht/3/largeTraderFutDown", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "2024/01/02", r.PostForm.Get("queryStartDate"))
		assert.Equal(t, "2024/01/02", r.PostForm.Get("queryEndDate"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write(payload)
	}))

	table, err := fetcher.Fetch(context.Background(), domain.KindLargeTradersFutures, fetchDay)

	require.NoError(t, err)
	assert.Equal(t, []string{"日期", "商品(契約)", "交易人類別"}, table.Header)
	assert.Equal(t, [][]string{{"2024/01/02", "TX", "0"}}, table.Rows)
}

func TestFetchInstitutionalFuturesForm(t *testing.T) {
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "/cht/3/futContractsDateDown", r.URL.Path)
		assert.Equal(t, "TXF", r.PostForm.Get("commodityId"))
		_, _ = w.Write([]byte("日期,身份別\n"))
	}))

	table, err := fetcher.Fetch(context.Background(), domain.KindInstitutionalFutures, fetchDay)

	require.NoError(t, err)
	assert.True(t, table.IsEmpty())
}

func TestFetchTAIFEXNoticePage(t *testing.T) {
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>查無資料</body></html>"))
	}))

	table, err := fetcher.Fetch(context.Background(), domain.KindPutCallRatio, fetchDay)

	require.NoError(t, err)
	assert.True(t, table.IsEmpty())
}

func TestFetchTWSEJSON(t *testing.T) {
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rwd/zh/fund/BFI82U", r.URL.Path)
		assert.Equal(t, "20240102", r.URL.Query().Get("dayDate"))
		assert.Equal(t, "day", r.URL.Query().Get("type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"stat":"OK","fields":["單位名稱","買進金額","賣出金額","買賣差額"],"data":[["投信","1","2","-1"]]}`))
	}))

	table, err := fetcher.Fetch(context.Background(), domain.KindTWSEInstitutional, fetchDay)

	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestFetchTPExQuery(t *testing.T) {
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/www/zh-tw/insti/summary", r.URL.Path)
		assert.Equal(t, "2024/01/02", r.URL.Query().Get("date"))
		assert.Equal(t, "Daily", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"stat":"ok","tables":[{"fields":["單位名稱"],"data":[["投信"]]}]}`))
	}))

	table, err := fetcher.Fetch(context.Background(), domain.KindTPExInstitutional, fetchDay)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"投信"}}, table.Rows)
}

func TestFetchTWSEMarketBreadthSelectsTitledTable(t *testing.T) {
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rwd/zh/afterTrading/MI_INDEX", r.URL.Path)
		assert.Equal(t, "20240102", r.URL.Query().Get("date"))
		assert.Equal(t, "MS", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"stat":"OK","tables":[` +
			`{"title":"113年01月02日 價格指數(臺灣證券交易所)","fields":["指數"],"data":[["發行量加權股價指數"]]},` +
			`{"title":"漲跌證券數合計","fields":["類型","整體市場","股票"],"data":[["上漲(漲停)","5,001(130)","612(21)"]]}]}`))
	}))

	table, err := fetcher.Fetch(context.Background(), domain.KindTWSEMarketBreadth, fetchDay)

	require.NoError(t, err)
	assert.Equal(t, []string{"類型", "整體市場", "股票"}, table.Header)
	assert.Equal(t, [][]string{{"上漲(漲停)", "5,001(130)", "612(21)"}}, table.Rows)
}

func TestFetchTPExMarketBreadth(t *testing.T) {
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/www/zh-tw/afterTrading/highlight", r.URL.Path)
		assert.Equal(t, "2024/01/02", r.URL.Query().Get("date"))
		assert.Equal(t, "json", r.URL.Query().Get("response"))
		_, _ = w.Write([]byte(`{"stat":"ok","tables":[{"fields":["日期"],"data":[["113/01/02"]]}]}`))
	}))

	table, err := fetcher.Fetch(context.Background(), domain.KindTPExMarketBreadth, fetchDay)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"113/01/02"}}, table.Rows)
}

func TestFetchTPExMarginReadsSummary(t *testing.T) {
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/www/zh-tw/margin/balance", r.URL.Path)
		assert.Equal(t, "2024/01/02", r.URL.Query().Get("date"))
		_, _ = w.Write([]byte(`{"stat":"ok","tables":[{"fields":["代號"],"data":[["1101"]],"summary":[["","合計(張)","150,000"]]}]}`))
	}))

	table, err := fetcher.Fetch(context.Background(), domain.KindTPExMarginTransactions, fetchDay)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"", "合計(張)", "150,000"}}, table.Rows)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := fetcher.Fetch(context.Background(), domain.KindTWSEMarketTrades, fetchDay)

	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeNetwork, appErr.Type)
	assert.Equal(t, http.StatusBadGateway, appErr.Context["status"])
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := fetcher.Fetch(context.Background(), domain.KindTWSEMarginTransactions, fetchDay)

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchUnknownKind(t *testing.T) {
	fetcher := testFetcher(t, http.NotFoundHandler())

	_, err := fetcher.Fetch(context.Background(), domain.ReportKind("bogus"), fetchDay)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
}

func TestFetchListedStocks(t *testing.T) {
	payload := big5(t, isinPage)
	fetcher := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/isin/class_main.jsp", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("market"))
		assert.Equal(t, "4", r.URL.Query().Get("issuetype"))
		_, _ = w.Write(payload)
	}))

	stocks, err := fetcher.ListedStocks(context.Background(), domain.MarketOTC)

	require.NoError(t, err)
	assert.Len(t, stocks, 2)

	_, err = fetcher.ListedStocks(context.Background(), "NYSE")
	assert.Error(t, err)
}
