package market

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region patterns

var (
	usdPattern    = regexp.MustCompile(`(?i)\$?\s*([\d,.]+)\s*(trillion|billion|million|tn|bn|m|k)?`)
	cagrPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*(?:CAGR)?`)
	periodPattern = regexp.MustCompile(`(20\d{2})\D+(20\d{2})`)
	yearPattern   = regexp.MustCompile(`\b(20\d{2})\b`)
)

var scaleWords = map[string]float64{
	"trillion": 1e12,
	"tn":       1e12,
	"billion":  1e9,
	"bn":       1e9,
	"million":  1e6,
	"m":        1e6,
	"k":        1e3,
}

// #endregion patterns

// #region numbers

// Numbers is the result of scanning one text.
type Numbers struct {
	USD     *float64
	CAGRPct *float64
	Period  string
}

// ExtractNumbers scans text for a monetary amount (largest normalized USD
// value), a growth rate (largest percentage) and a period (first year pair).
func ExtractNumbers(text string) Numbers {
	var n Numbers

	for _, m := range usdPattern.FindAllStringSubmatch(text, -1) {
		v, ok := normalizeUSD(m[1], m[2])
		if !ok {
			continue
		}
		n.USD = maxOf(n.USD, v)
	}

	for _, m := range cagrPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		n.CAGRPct = maxOf(n.CAGRPct, v)
	}

	n.Period = extractPeriod(text)
	return n
}

// normalizeUSD converts a numeric literal and optional scale word to USD.
// Zero and unparsable literals are rejected.
func normalizeUSD(literal, scale string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(literal, ",", ""), 64)
	if err != nil || v == 0 {
		return 0, false
	}
	if mult, ok := scaleWords[strings.ToLower(scale)]; ok {
		v *= mult
	}
	return v, true
}

// extractPeriod returns "start-end" for the first two years separated by
// non-digits. Failing that, the first standalone year is paired with the
// next standalone year after it, which covers prose such as
// "in 2023 ... 12.5% ... through 2028". Repeated or earlier years never
// close a period.
func extractPeriod(text string) string {
	if m := periodPattern.FindStringSubmatch(text); m != nil {
		return m[1] + "-" + m[2]
	}
	years := yearPattern.FindAllString(text, -1)
	if len(years) < 2 {
		return ""
	}
	for _, y := range years[1:] {
		if y > years[0] {
			return years[0] + "-" + y
		}
	}
	return ""
}

func maxOf(current *float64, v float64) *float64 {
	if current == nil || v > *current {
		return &v
	}
	return current
}

// #endregion numbers

// #region documents

// DocumentFacts is the reduction of ExtractNumbers over many documents.
type DocumentFacts struct {
	MarketSizeUSD *float64
	CAGRPct       *float64
	Period        string
	Evidence      []state.Evidence
}

// DocumentText joins a page's content, summary, snippet and title with spaces.
func DocumentText(p state.Page) string {
	return strings.Join([]string{p.Content, p.Summary, p.Snippet, p.Title}, " ")
}

// ExtractFromDocuments reduces per-document figures with max (size, growth)
// and first-wins (period), adding one evidence entry per document that has
// both a link and text.
func ExtractFromDocuments(pages []state.Page) DocumentFacts {
	var f DocumentFacts
	for _, p := range pages {
		text := DocumentText(p)
		n := ExtractNumbers(text)
		if n.USD != nil {
			f.MarketSizeUSD = maxOf(f.MarketSizeUSD, *n.USD)
		}
		if n.CAGRPct != nil {
			f.CAGRPct = maxOf(f.CAGRPct, *n.CAGRPct)
		}
		if f.Period == "" {
			f.Period = n.Period
		}
		if link := p.Link(); link != "" && strings.TrimSpace(text) != "" {
			f.Evidence = append(f.Evidence, state.Evidence{Fact: state.Clip(text, state.FactLimit), SourceURL: link})
		}
	}
	return f
}

// #endregion documents
