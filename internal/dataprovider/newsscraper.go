package dataprovider

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/dyike/cortexfund/internal/models"
)

// NewsScraperProvider implements Provider for company news only, by scraping
// Google News search results. Adapted from the teacher's NewsScraperClient
// (internal/dataflows/news_scraper.go); all non-news methods return empty
// results, making this usable as a news fallback layered in front of an
// HTTPProvider when the primary upstream has no news coverage.
type NewsScraperProvider struct {
	client *resty.Client
}

func NewNewsScraperProvider() *NewsScraperProvider {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; cortexfund/1.0)")
	return &NewsScraperProvider{client: client}
}

func (n *NewsScraperProvider) GetPrices(ctx context.Context, ticker models.Ticker, start, end string) ([]models.Price, error) {
	return nil, nil
}

func (n *NewsScraperProvider) GetFinancialMetrics(ctx context.Context, ticker models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error) {
	return nil, nil
}

func (n *NewsScraperProvider) SearchLineItems(ctx context.Context, ticker models.Ticker, lineItems []string, endDate, period string, limit int) ([]models.LineItem, error) {
	return nil, nil
}

func (n *NewsScraperProvider) GetInsiderTrades(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error) {
	return nil, nil
}

func (n *NewsScraperProvider) GetMarketCap(ctx context.Context, ticker models.Ticker, endDate string) (*string, error) {
	return nil, nil
}

func (n *NewsScraperProvider) GetCompanyNews(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error) {
	googleURL := buildGoogleNewsURL(string(ticker))

	resp, err := n.client.R().SetContext(ctx).Get(googleURL)
	if err != nil {
		return nil, fmt.Errorf("fetch google news for %s: %w", ticker, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("http error %d fetching google news", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("parse google news html: %w", err)
	}

	out := parseGoogleNewsHTML(doc, ticker)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func buildGoogleNewsURL(query string) string {
	return fmt.Sprintf("https://news.google.com/search?q=%s&hl=en&gl=US&ceid=US:en", url.QueryEscape(query))
}

func parseGoogleNewsHTML(doc *goquery.Document, ticker models.Ticker) []models.CompanyNews {
	var articles []models.CompanyNews

	doc.Find("article").Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3").Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").Text())
		}
		if title == "" {
			return
		}

		link := s.Find("a").First()
		href, exists := link.Attr("href")
		if !exists {
			return
		}

		source := strings.TrimSpace(s.Find("div[data-n-tid]").Text())
		if source == "" {
			source = "Google News"
		}

		timeText := strings.TrimSpace(s.Find("time").Text())
		articles = append(articles, models.CompanyNews{
			Ticker: ticker,
			Title:  title,
			Source: source,
			URL:    cleanGoogleNewsURL(href),
			Date:   parseRelativeTime(timeText),
		})
	})

	return articles
}

func cleanGoogleNewsURL(googleURL string) string {
	if strings.Contains(googleURL, "url=") {
		parts := strings.SplitN(googleURL, "url=", 2)
		if len(parts) > 1 {
			if decoded, err := url.QueryUnescape(parts[1]); err == nil {
				return decoded
			}
		}
	}
	if strings.HasPrefix(googleURL, "./") {
		return "https://news.google.com" + googleURL[1:]
	}
	if strings.HasPrefix(googleURL, "/") {
		return "https://news.google.com" + googleURL
	}
	return googleURL
}

var (
	relativeMinutes = regexp.MustCompile(`(\d+)\s*minutes?\s*ago`)
	relativeHours   = regexp.MustCompile(`(\d+)\s*hours?\s*ago`)
	relativeDays    = regexp.MustCompile(`(\d+)\s*days?\s*ago`)
)

func parseRelativeTime(text string) time.Time {
	now := time.Now()
	text = strings.ToLower(strings.TrimSpace(text))

	if text == "" || text == "just now" {
		return now
	}
	if m := relativeMinutes.FindStringSubmatch(text); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.Add(-time.Duration(n) * time.Minute)
		}
	}
	if m := relativeHours.FindStringSubmatch(text); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.Add(-time.Duration(n) * time.Hour)
		}
	}
	if m := relativeDays.FindStringSubmatch(text); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.Add(-time.Duration(n) * 24 * time.Hour)
		}
	}
	return now.Add(-1 * time.Hour)
}
