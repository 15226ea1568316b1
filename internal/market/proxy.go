package market

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/scoring"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region tables

// ProxySource tags evidence produced by the GDP proxy.
const ProxySource = "proxy:gdp_ratio"

type segmentValue struct {
	key   string
	value float64
}

// Matched by case-insensitive substring, in this order.
var segmentGDPRatios = []segmentValue{
	{"logistics", 0.022},
	{"ecommerce", 0.035},
	{"healthcare", 0.08},
	{"energy", 0.07},
	{"manufacturing", 0.12},
	{"agriculture", 0.04},
}

var segmentDefaultCAGR = []segmentValue{
	{"logistics", 6.5},
	{"ecommerce", 10.0},
	{"healthcare", 7.2},
	{"energy", 4.5},
	{"manufacturing", 5.0},
	{"agriculture", 3.8},
}

const (
	defaultGDPRatio = 0.03
	defaultCAGR     = 5.0
)

func lookup(table []segmentValue, segment string, fallback float64) float64 {
	s := strings.ToLower(segment)
	for _, e := range table {
		if strings.Contains(s, e.key) {
			return e.value
		}
	}
	return fallback
}

// #endregion tables

// #region proxy

// Proxy is a GDP-derived estimate of segment size and growth.
type Proxy struct {
	MarketSizeUSD float64
	CAGRPct       float64
	Ratio         float64
	Note          string
	Source        string
}

// ComputeGDPProxy estimates size and growth from GDP. It reports false when
// GDP is unknown (zero).
func ComputeGDPProxy(macro state.MacroIndicators, segment string) (Proxy, bool) {
	if macro.GDPUSDBil == 0 {
		return Proxy{}, false
	}
	ratio := lookup(segmentGDPRatios, segment, defaultGDPRatio)
	return Proxy{
		MarketSizeUSD: macro.GDPUSDBil * 1e9 * ratio,
		CAGRPct:       lookup(segmentDefaultCAGR, segment, defaultCAGR),
		Ratio:         ratio,
		Note:          fmt.Sprintf("GDP ratio %.1f%% estimate", ratio*100),
		Source:        ProxySource,
	}, true
}

// ApplyProxy fills size and growth left unresolved by text extraction.
// Each filled value appends one evidence entry; a proxied size also sets
// ProxyNote. Values already resolved are never overridden.
func ApplyProxy(facts state.MarketFacts, evidence []state.Evidence, p Proxy, ok bool) (state.MarketFacts, []state.Evidence) {
	if !ok {
		return facts, evidence
	}
	if facts.MarketSizeUSD == nil {
		size := p.MarketSizeUSD
		facts.MarketSizeUSD = &size
		facts.ProxyNote = p.Note
		evidence = append(evidence, state.Evidence{
			Fact:      "Market size proxy from GDP share: " + p.Note,
			SourceURL: p.Source,
		})
	}
	if facts.CAGRPct == nil {
		cagr := p.CAGRPct
		facts.CAGRPct = &cagr
		evidence = append(evidence, state.Evidence{
			Fact:      "GDP-based growth estimate applied: " + scoring.FormatPct(cagr) + "%",
			SourceURL: p.Source,
		})
	}
	return facts, evidence
}

// #endregion proxy

// #region resolve

// Resolve extracts figures from pages and falls back to the GDP proxy,
// returning market facts for segment plus the accumulated evidence.
func Resolve(pages []state.Page, segment string, macro state.MacroIndicators) (state.MarketFacts, []state.Evidence) {
	docs := ExtractFromDocuments(pages)
	facts := state.MarketFacts{
		Segment:       segment,
		MarketSizeUSD: docs.MarketSizeUSD,
		CAGRPct:       docs.CAGRPct,
		Period:        docs.Period,
		AuxIndicators: macro,
	}
	proxy, ok := ComputeGDPProxy(macro, segment)
	return ApplyProxy(facts, docs.Evidence, proxy, ok)
}

// #endregion resolve
