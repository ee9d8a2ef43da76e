package dataprovider

import (
	"context"

	"github.com/dyike/cortexfund/internal/models"
)

// CompositeProvider routes each capability to whichever concrete source
// supports it, falling back to a secondary source when the primary returns
// nothing — adapted from the teacher's DataFlowInterface
// (pkg/dataflows/interface.go), which fans prices/news/metrics out across
// YahooFinanceClient/FinnhubClient/NewsScraperClient the same way. Prices
// prefer primary (typically the generic HTTP upstream) and fall back to
// Yahoo; news prefers primary and falls back to the scraper; everything else
// is primary-only since Yahoo/news have no equivalent.
type CompositeProvider struct {
	Primary     Provider
	PriceBackup Provider
	NewsBackup  Provider
}

// NewCompositeProvider builds a provider that tries primary first for every
// capability, falling back to priceBackup for prices and newsBackup for
// news when primary is nil or returns an empty result.
func NewCompositeProvider(primary, priceBackup, newsBackup Provider) *CompositeProvider {
	return &CompositeProvider{Primary: primary, PriceBackup: priceBackup, NewsBackup: newsBackup}
}

func (c *CompositeProvider) GetPrices(ctx context.Context, ticker models.Ticker, start, end string) ([]models.Price, error) {
	if c.Primary != nil {
		if prices, err := c.Primary.GetPrices(ctx, ticker, start, end); err == nil && len(prices) > 0 {
			return prices, nil
		}
	}
	if c.PriceBackup != nil {
		return c.PriceBackup.GetPrices(ctx, ticker, start, end)
	}
	return nil, nil
}

func (c *CompositeProvider) GetFinancialMetrics(ctx context.Context, ticker models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error) {
	if c.Primary == nil {
		return nil, nil
	}
	return c.Primary.GetFinancialMetrics(ctx, ticker, endDate, period, limit)
}

func (c *CompositeProvider) SearchLineItems(ctx context.Context, ticker models.Ticker, lineItems []string, endDate, period string, limit int) ([]models.LineItem, error) {
	if c.Primary == nil {
		return nil, nil
	}
	return c.Primary.SearchLineItems(ctx, ticker, lineItems, endDate, period, limit)
}

func (c *CompositeProvider) GetInsiderTrades(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error) {
	if c.Primary == nil {
		return nil, nil
	}
	return c.Primary.GetInsiderTrades(ctx, ticker, endDate, startDate, limit)
}

func (c *CompositeProvider) GetCompanyNews(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error) {
	if c.Primary != nil {
		if news, err := c.Primary.GetCompanyNews(ctx, ticker, endDate, startDate, limit); err == nil && len(news) > 0 {
			return news, nil
		}
	}
	if c.NewsBackup != nil {
		return c.NewsBackup.GetCompanyNews(ctx, ticker, endDate, startDate, limit)
	}
	return nil, nil
}

func (c *CompositeProvider) GetMarketCap(ctx context.Context, ticker models.Ticker, endDate string) (*string, error) {
	if c.Primary == nil {
		return nil, nil
	}
	return c.Primary.GetMarketCap(ctx, ticker, endDate)
}
