package dataprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/dyike/cortexfund/internal/models"
)

// YahooProvider implements Provider for prices only, adapted from the
// teacher's YahooFinanceClient (pkg/dataflows/yahoo_finance.go). It has no
// metrics/line-item/insider/news/market-cap upstream, so those methods
// return empty results — useful as an alternate price source in tests and
// demos without the generic HTTP upstream configured.
type YahooProvider struct{}

func NewYahooProvider() *YahooProvider {
	return &YahooProvider{}
}

func (y *YahooProvider) GetPrices(ctx context.Context, ticker models.Ticker, start, end string) ([]models.Price, error) {
	startTime, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	endTime, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, fmt.Errorf("parse end date: %w", err)
	}

	params := &chart.Params{
		Symbol:   string(ticker),
		Start:    datetime.New(&startTime),
		End:      datetime.New(&endTime),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	out := make([]models.Price, 0)
	for iter.Next() {
		bar := iter.Bar()
		out = append(out, models.Price{
			Ticker: ticker,
			Time:   time.Unix(int64(bar.Timestamp), 0),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("fetch historical data for %s: %w", ticker, err)
	}
	return out, nil
}

func (y *YahooProvider) GetFinancialMetrics(ctx context.Context, ticker models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error) {
	return nil, nil
}

func (y *YahooProvider) SearchLineItems(ctx context.Context, ticker models.Ticker, lineItems []string, endDate, period string, limit int) ([]models.LineItem, error) {
	return nil, nil
}

func (y *YahooProvider) GetInsiderTrades(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error) {
	return nil, nil
}

func (y *YahooProvider) GetCompanyNews(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error) {
	return nil, nil
}

func (y *YahooProvider) GetMarketCap(ctx context.Context, ticker models.Ticker, endDate string) (*string, error) {
	return nil, nil
}
