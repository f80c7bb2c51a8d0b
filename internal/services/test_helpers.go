package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"twxcli/internal/infrastructure"
	"twxcli/pkg/contracts/domain"
)

// MockReportFetcher is a testify mock of ReportFetcher.
type MockReportFetcher struct {
	mock.Mock
}

func (m *MockReportFetcher) Fetch(ctx context.Context, kind domain.ReportKind, date time.Time) (domain.Table, error) {
	args := m.Called(ctx, kind, date)
	return args.Get(0).(domain.Table), args.Error(1)
}

func (m *MockReportFetcher) ListedStocks(ctx context.Context, market string) ([]domain.ListedStock, error) {
	args := m.Called(ctx, market)
	stocks, _ := args.Get(0).([]domain.ListedStock)
	return stocks, args.Error(1)
}

// StubDecomposer returns one record per non-empty table, carrying the row
// count as the "rows" field.
type StubDecomposer struct {
	mu    sync.Mutex
	calls int
}

func (d *StubDecomposer) Decompose(table domain.Table, kind domain.ReportKind, date time.Time) *domain.OutputRecord {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if table.IsEmpty() {
		return nil
	}
	record := domain.NewOutputRecord(date, kind)
	record.Set("rows", decimal.NewFromInt(int64(len(table.Rows))))
	return record
}

// Calls returns how many tables were decomposed.
func (d *StubDecomposer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// StaticRuntime returns fixed runtime statistics.
type StaticRuntime struct {
	Stats infrastructure.RuntimeStats
}

func (s StaticRuntime) Snapshot() infrastructure.RuntimeStats {
	return s.Stats
}
