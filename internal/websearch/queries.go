package websearch

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region query-builders

// OfficialFilters restricts market report searches to institutional sources.
var OfficialFilters = []string{
	"site:.gov",
	"site:.go.kr",
	"site:.europa.eu",
	"site:worldbank.org",
	"site:oecd.org",
	"site:imf.org",
	"site:adb.org",
	"site:wto.org",
	"site:un.org",
}

// Per-query result caps.
const (
	LawResults         = 8
	CompetitionResults = 6
	PartnerResults     = 5
	reportQueryCap     = 6
)

// LawQuery searches for regulatory barriers.
func LawQuery(country, segment string) string {
	return fmt.Sprintf("%s %s foreign investment restriction data localization tax labor permit", country, segment)
}

// CompetitionQuery searches for leading players. Both chains use it.
func CompetitionQuery(country, segment string) string {
	return fmt.Sprintf("%s %s top companies market share", country, segment)
}

// PartnerQuery searches for partners, investors and advisors.
func PartnerQuery(country, segment string) string {
	return fmt.Sprintf("%s %s logistics partners investor consulting", country, segment)
}

// MarketReportQueries lists the market sizing queries: one per official
// filter, then an open report query and an open analysis query.
func MarketReportQueries(country, segment string) []string {
	base := fmt.Sprintf("%s %s market size CAGR", country, segment)
	qs := make([]string, 0, len(OfficialFilters)+2)
	for _, f := range OfficialFilters {
		qs = append(qs, base+" "+f)
	}
	return append(qs,
		fmt.Sprintf("%s %s market size CAGR 2024 report", country, segment),
		fmt.Sprintf("%s %s market size CAGR analysis", country, segment),
	)
}

// #endregion query-builders

// #region collect-reports

// CollectReports runs MarketReportQueries in order, asking each for at most
// min(6, max) results, and stops once max pages are collected.
func CollectReports(ctx context.Context, s Searcher, country, segment string, max int) []state.Page {
	if max <= 0 {
		return nil
	}
	per := min(reportQueryCap, max)
	var pages []state.Page
	for _, q := range MarketReportQueries(country, segment) {
		if ctx.Err() != nil {
			break
		}
		for _, p := range s.Search(ctx, q, per) {
			if p.Query == "" {
				p.Query = q
			}
			pages = append(pages, p)
		}
		if len(pages) >= max {
			return pages[:max]
		}
	}
	return pages
}

// #endregion collect-reports
