package websearch

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// DefaultDDGEndpoint is the no-JavaScript DuckDuckGo results page.
const DefaultDDGEndpoint = "https://html.duckduckgo.com/html/"

// #region duckduckgo

// DuckDuckGo scrapes the HTML results page. It needs no API key.
type DuckDuckGo struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
	strip    *bluemonday.Policy
}

// NewDuckDuckGo creates a scraper. An empty endpoint uses DefaultDDGEndpoint.
func NewDuckDuckGo(endpoint string, client *http.Client, logger *zap.Logger) *DuckDuckGo {
	if endpoint == "" {
		endpoint = DefaultDDGEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuckDuckGo{
		endpoint: endpoint,
		client:   client,
		logger:   logger.Named("duckduckgo"),
		strip:    bluemonday.StrictPolicy(),
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) []state.Page {
	if limit <= 0 {
		return nil
	}
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		d.logger.Warn("build request", zap.Error(err))
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "entry-scout/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.Warn("search failed", zap.String("query", query), zap.Int("status", resp.StatusCode))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		d.logger.Warn("parse results", zap.String("query", query), zap.Error(err))
		return nil
	}
	return d.parse(doc, query, limit)
}

func (d *DuckDuckGo) parse(doc *goquery.Document, query string, limit int) []state.Page {
	var pages []state.Page
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if title == "" && href == "" {
			return true
		}
		raw, _ := s.Find(".result__snippet").First().Html()
		pages = append(pages, state.Page{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: d.clean(raw),
			Query:   query,
		})
		return len(pages) < limit
	})
	return pages
}

// clean strips markup from a result snippet and collapses whitespace.
func (d *DuckDuckGo) clean(fragment string) string {
	text := html.UnescapeString(d.strip.Sanitize(fragment))
	return strings.Join(strings.Fields(text), " ")
}

// resolveRedirect unwraps DuckDuckGo's "/l/?uddg=" click-tracking links.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// #endregion duckduckgo
