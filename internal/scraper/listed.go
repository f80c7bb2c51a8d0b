package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	apperrors "twxcli/internal/errors"
	"twxcli/pkg/contracts/domain"
)

// ISIN directory columns
const (
	isinColCode     = 2
	isinColName     = 3
	isinColMarket   = 4
	isinColIndustry = 6
)

// ListedStocks downloads the listed-securities directory of a market
// (domain.MarketTSE or domain.MarketOTC).
func (f *Fetcher) ListedStocks(ctx context.Context, market string) ([]domain.ListedStock, error) {
	params := url.Values{}
	switch strings.ToUpper(market) {
	case domain.MarketTSE:
		params.Set("market", "1")
		params.Set("issuetype", "1")
	case domain.MarketOTC:
		params.Set("market", "2")
		params.Set("issuetype", "4")
	default:
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown market %q", market))
	}

	body, err := f.client.Get(ctx, joinURL(f.endpoints.ISIN, "/isin/class_main.jsp"), params)
	if err != nil {
		return nil, fmt.Errorf("fetch listed stocks: %w", err)
	}

	text, err := DecodeBig5(body)
	if err != nil {
		return nil, err
	}

	stocks, err := ParseListedStocks(text)
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "Fetched listed stocks",
		slog.String("market", market),
		slog.Int("count", len(stocks)))
	return stocks, nil
}

// ParseListedStocks reads the ISIN directory page (already UTF-8).
func ParseListedStocks(page []byte) ([]domain.ListedStock, error) {
	table, err := ReadHTMLTable(page, "table.h4")
	if err != nil {
		return nil, err
	}

	stocks := make([]domain.ListedStock, 0, len(table.Rows))
	for _, row := range table.Rows {
		if len(row) <= isinColIndustry {
			continue
		}
		code := strings.TrimSpace(row[isinColCode])
		if code == "" {
			continue
		}
		stocks = append(stocks, domain.ListedStock{
			Code:     code,
			Name:     strings.TrimSpace(row[isinColName]),
			Market:   strings.TrimSpace(row[isinColMarket]),
			Industry: strings.TrimSpace(row[isinColIndustry]),
		})
	}
	return stocks, nil
}
