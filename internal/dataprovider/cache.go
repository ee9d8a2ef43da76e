package dataprovider

import (
	"context"
	"sort"
	"sync"

	"github.com/dyike/cortexfund/internal/models"
)

// tickerCache holds every record type cached so far for one ticker. A
// CachedProvider owns a map of these, not a package global (Design Notes §9:
// "make it an owned component of the data provider, not a module global, so
// tests can reset it").
type tickerCache struct {
	mu              sync.Mutex
	prices          []models.Price
	metrics         []models.FinancialMetrics
	lineItems       map[string][]models.LineItem // keyed by joined requested line-item names
	insiderTrades   []models.InsiderTrade
	companyNews     []models.CompanyNews
}

// CachedProvider wraps an upstream Provider with a per-ticker, in-process
// cache. Range queries are answered from the cache when it holds data for
// the ticker. Uncovered sub-ranges are not fetched on their own: GetPrices
// refetches the whole requested range, and the insider-trade and news
// caches are never refetched once they hold data (spec §4.2).
type CachedProvider struct {
	upstream Provider

	mu     sync.Mutex
	tables map[models.Ticker]*tickerCache
}

// NewCachedProvider wraps upstream. Each CachedProvider owns an independent
// cache; constructing a new one (e.g. per test) starts cold.
func NewCachedProvider(upstream Provider) *CachedProvider {
	return &CachedProvider{upstream: upstream, tables: make(map[models.Ticker]*tickerCache)}
}

func (c *CachedProvider) tableFor(t models.Ticker) *tickerCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	tc, ok := c.tables[t]
	if !ok {
		tc = &tickerCache{lineItems: make(map[string][]models.LineItem)}
		c.tables[t] = tc
	}
	return tc
}

// GetPrices filters the cache by [start,end]; if the cached range doesn't
// fully cover the request it fetches the whole requested range upstream and
// merges the result in (deduped by Time, sorted ascending).
func (c *CachedProvider) GetPrices(ctx context.Context, ticker models.Ticker, start, end string) ([]models.Price, error) {
	tc := c.tableFor(ticker)
	tc.mu.Lock()
	covered := coversPriceRange(tc.prices, start, end)
	cached := tc.prices
	tc.mu.Unlock()

	if covered {
		return filterPrices(cached, start, end), nil
	}

	fetched, err := c.upstream.GetPrices(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	tc.mu.Lock()
	tc.prices = mergePrices(tc.prices, fetched)
	merged := tc.prices
	tc.mu.Unlock()

	return filterPrices(merged, start, end), nil
}

func coversPriceRange(cached []models.Price, start, end string) bool {
	if len(cached) == 0 {
		return false
	}
	minDate, maxDate := cached[0].Time.Format("2006-01-02"), cached[0].Time.Format("2006-01-02")
	for _, p := range cached {
		d := p.Time.Format("2006-01-02")
		if d < minDate {
			minDate = d
		}
		if d > maxDate {
			maxDate = d
		}
	}
	return minDate <= start && maxDate >= end
}

func filterPrices(prices []models.Price, start, end string) []models.Price {
	out := make([]models.Price, 0, len(prices))
	for _, p := range prices {
		d := p.Time.Format("2006-01-02")
		if d >= start && d <= end {
			out = append(out, p)
		}
	}
	return out
}

func mergePrices(existing, fresh []models.Price) []models.Price {
	byDate := make(map[string]models.Price, len(existing)+len(fresh))
	for _, p := range existing {
		byDate[p.Time.Format("2006-01-02")] = p
	}
	for _, p := range fresh {
		byDate[p.Time.Format("2006-01-02")] = p
	}
	out := make([]models.Price, 0, len(byDate))
	for _, p := range byDate {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// GetFinancialMetrics is cached per-ticker without range filtering (metrics
// are cumulative snapshots, not a time series the way prices are); a cache
// hit returns everything cached, trimmed to limit.
func (c *CachedProvider) GetFinancialMetrics(ctx context.Context, ticker models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error) {
	tc := c.tableFor(ticker)
	tc.mu.Lock()
	cached := tc.metrics
	tc.mu.Unlock()
	if len(cached) > 0 {
		return trimMetrics(cached, limit), nil
	}

	fetched, err := c.upstream.GetFinancialMetrics(ctx, ticker, endDate, period, limit)
	if err != nil {
		return nil, err
	}
	tc.mu.Lock()
	tc.metrics = fetched
	tc.mu.Unlock()
	return trimMetrics(fetched, limit), nil
}

func trimMetrics(m []models.FinancialMetrics, limit int) []models.FinancialMetrics {
	if limit > 0 && len(m) > limit {
		return m[:limit]
	}
	return m
}

// SearchLineItems caches per distinct requested line-item set (joined as the
// map key) since different callers may ask for different fields.
func (c *CachedProvider) SearchLineItems(ctx context.Context, ticker models.Ticker, lineItems []string, endDate, period string, limit int) ([]models.LineItem, error) {
	key := lineItemsKey(lineItems)
	tc := c.tableFor(ticker)
	tc.mu.Lock()
	cached, ok := tc.lineItems[key]
	tc.mu.Unlock()
	if ok {
		return cached, nil
	}

	fetched, err := c.upstream.SearchLineItems(ctx, ticker, lineItems, endDate, period, limit)
	if err != nil {
		return nil, err
	}
	tc.mu.Lock()
	tc.lineItems[key] = fetched
	tc.mu.Unlock()
	return fetched, nil
}

func lineItemsKey(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	key := ""
	for i, s := range sorted {
		if i > 0 {
			key += "|"
		}
		key += s
	}
	return key
}

// GetInsiderTrades and GetCompanyNews paginate upstream by walking the upper
// date bound back to the oldest result of the previous page, until either
// startDate is crossed or fewer than limit records return (spec §4.2). The
// first call for a ticker stores what it fetched; every later call is
// answered from that store alone, filtered to [startDate, endDate], and
// records outside what the first call fetched are not fetched.
func (c *CachedProvider) GetInsiderTrades(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error) {
	tc := c.tableFor(ticker)
	tc.mu.Lock()
	cached := tc.insiderTrades
	tc.mu.Unlock()
	if len(cached) > 0 {
		return filterInsiderTrades(cached, startDate, endDate), nil
	}

	all, err := paginateInsiderTrades(ctx, c.upstream, ticker, endDate, startDate, limit)
	if err != nil {
		return nil, err
	}
	tc.mu.Lock()
	tc.insiderTrades = all
	tc.mu.Unlock()
	return filterInsiderTrades(all, startDate, endDate), nil
}

func paginateInsiderTrades(ctx context.Context, upstream Provider, ticker models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error) {
	var all []models.InsiderTrade
	currentEnd := endDate
	for {
		page, err := upstream.GetInsiderTrades(ctx, ticker, currentEnd, startDate, limit)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		if len(page) < limit {
			break
		}
		oldest := page[len(page)-1].FilingDate
		nextEnd := oldest.Format("2006-01-02")
		if startDate != "" && nextEnd <= startDate {
			break
		}
		if nextEnd >= currentEnd {
			break // upstream not shrinking the window, avoid an infinite loop
		}
		currentEnd = nextEnd
	}
	return all, nil
}

func filterInsiderTrades(trades []models.InsiderTrade, startDate, endDate string) []models.InsiderTrade {
	out := make([]models.InsiderTrade, 0, len(trades))
	for _, tr := range trades {
		d := tr.FilingDate.Format("2006-01-02")
		if startDate != "" && d < startDate {
			continue
		}
		if endDate != "" && d > endDate {
			continue
		}
		out = append(out, tr)
	}
	return out
}

func (c *CachedProvider) GetCompanyNews(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error) {
	tc := c.tableFor(ticker)
	tc.mu.Lock()
	cached := tc.companyNews
	tc.mu.Unlock()
	if len(cached) > 0 {
		return filterCompanyNews(cached, startDate, endDate), nil
	}

	all, err := paginateCompanyNews(ctx, c.upstream, ticker, endDate, startDate, limit)
	if err != nil {
		return nil, err
	}
	tc.mu.Lock()
	tc.companyNews = all
	tc.mu.Unlock()
	return filterCompanyNews(all, startDate, endDate), nil
}

func paginateCompanyNews(ctx context.Context, upstream Provider, ticker models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error) {
	var all []models.CompanyNews
	currentEnd := endDate
	for {
		page, err := upstream.GetCompanyNews(ctx, ticker, currentEnd, startDate, limit)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		if len(page) < limit {
			break
		}
		oldest := page[len(page)-1].Date
		nextEnd := oldest.Format("2006-01-02")
		if startDate != "" && nextEnd <= startDate {
			break
		}
		if nextEnd >= currentEnd {
			break
		}
		currentEnd = nextEnd
	}
	return all, nil
}

func filterCompanyNews(news []models.CompanyNews, startDate, endDate string) []models.CompanyNews {
	out := make([]models.CompanyNews, 0, len(news))
	for _, n := range news {
		d := n.Date.Format("2006-01-02")
		if startDate != "" && d < startDate {
			continue
		}
		if endDate != "" && d > endDate {
			continue
		}
		out = append(out, n)
	}
	return out
}

// GetMarketCap is not range-based; delegate directly (one value per date).
func (c *CachedProvider) GetMarketCap(ctx context.Context, ticker models.Ticker, endDate string) (*string, error) {
	return c.upstream.GetMarketCap(ctx, ticker, endDate)
}
