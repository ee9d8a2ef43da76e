// Package dataprovider implements the Data Provider Interface (C2): uniform,
// cached access to prices, financial metrics, line items, insider trades,
// company news and market cap. The concrete upstream (HTTP REST API, Yahoo
// Finance chart/quote endpoints, a news scraper) is an external collaborator;
// this package only defines the capability and its caching/rate-limit
// policy.
package dataprovider

import (
	"context"

	"github.com/dyike/cortexfund/internal/models"
)

// Provider is the uniform market-data capability consumed by analyst bodies
// and the backtester. All methods return an empty slice (never nil error)
// when the upstream has no data; only transport failures return an error.
type Provider interface {
	GetPrices(ctx context.Context, ticker models.Ticker, start, end string) ([]models.Price, error)
	GetFinancialMetrics(ctx context.Context, ticker models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error)
	SearchLineItems(ctx context.Context, ticker models.Ticker, lineItems []string, endDate, period string, limit int) ([]models.LineItem, error)
	GetInsiderTrades(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error)
	GetCompanyNews(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error)
	GetMarketCap(ctx context.Context, ticker models.Ticker, endDate string) (*string, error)
}
