package dataprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/internal/models"
)

// HTTPProvider implements Provider over a generic REST upstream exposing
// prices/metrics/line-items/insider-trades/news/market-cap, following the
// teacher's FinnhubClient shape (internal/dataflows/finnhub.go): a
// resty.Client with a fixed base URL and API-key header, one method per
// capability, each unmarshaling into a wire struct and converting into this
// module's models.
type HTTPProvider struct {
	client *resty.Client
	apiKey string
}

// NewHTTPProvider builds a provider against baseURL, authenticating with
// apiKey sent in an X-API-Key header on every request (teacher's
// NewFinnhubClient idiom, generalized past Finnhub's query-param token scheme).
func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("X-API-Key", apiKey)
	return &HTTPProvider{client: client, apiKey: apiKey}
}

type wirePrice struct {
	Time   string          `json:"time"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

func (p *HTTPProvider) GetPrices(ctx context.Context, ticker models.Ticker, start, end string) ([]models.Price, error) {
	var wire []wirePrice
	resp, err := withRateLimitRetry(func() (*resty.Response, error) {
		return p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{"ticker": string(ticker), "start": start, "end": end}).
			SetResult(&wire).
			Get("/prices")
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &wire); err != nil {
		return nil, fmt.Errorf("parse prices response: %w", err)
	}

	out := make([]models.Price, 0, len(wire))
	for _, w := range wire {
		t, err := time.Parse("2006-01-02", w.Time)
		if err != nil {
			continue
		}
		out = append(out, models.Price{Ticker: ticker, Time: t, Open: w.Open, High: w.High, Low: w.Low, Close: w.Close, Volume: w.Volume})
	}
	return out, nil
}

func (p *HTTPProvider) GetFinancialMetrics(ctx context.Context, ticker models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error) {
	var out []models.FinancialMetrics
	resp, err := withRateLimitRetry(func() (*resty.Response, error) {
		return p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"ticker": string(ticker), "end_date": endDate, "period": period,
				"limit": fmt.Sprintf("%d", limit),
			}).
			Get("/financial-metrics")
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("parse financial metrics response: %w", err)
	}
	return out, nil
}

func (p *HTTPProvider) SearchLineItems(ctx context.Context, ticker models.Ticker, lineItems []string, endDate, period string, limit int) ([]models.LineItem, error) {
	body := map[string]any{
		"ticker": ticker, "line_items": lineItems, "end_date": endDate,
		"period": period, "limit": limit,
	}
	var out []models.LineItem
	resp, err := withRateLimitRetry(func() (*resty.Response, error) {
		return p.client.R().
			SetContext(ctx).
			SetBody(body).
			Post("/line-items/search")
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("parse line items response: %w", err)
	}
	return out, nil
}

func (p *HTTPProvider) GetInsiderTrades(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error) {
	var out []models.InsiderTrade
	resp, err := withRateLimitRetry(func() (*resty.Response, error) {
		return p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"ticker": string(ticker), "end_date": endDate, "start_date": startDate,
				"limit": fmt.Sprintf("%d", limit),
			}).
			Get("/insider-trades")
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("parse insider trades response: %w", err)
	}
	return out, nil
}

func (p *HTTPProvider) GetCompanyNews(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error) {
	var out []models.CompanyNews
	resp, err := withRateLimitRetry(func() (*resty.Response, error) {
		return p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"ticker": string(ticker), "end_date": endDate, "start_date": startDate,
				"limit": fmt.Sprintf("%d", limit),
			}).
			Get("/news")
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("parse company news response: %w", err)
	}
	return out, nil
}

func (p *HTTPProvider) GetMarketCap(ctx context.Context, ticker models.Ticker, endDate string) (*string, error) {
	var wire struct {
		MarketCap *string `json:"market_cap"`
	}
	resp, err := withRateLimitRetry(func() (*resty.Response, error) {
		return p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{"ticker": string(ticker), "end_date": endDate}).
			Get("/market-cap")
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &wire); err != nil {
		return nil, fmt.Errorf("parse market cap response: %w", err)
	}
	return wire.MarketCap, nil
}
