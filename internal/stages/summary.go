package stages

import (
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// InsightSummary is the compact insight-chain view printed in step mode:
// the number of countries under each interim namespace plus the number
// of insights.
func InsightSummary(st state.State) map[string]int {
	out := map[string]int{}
	if st.Interim.Law != nil {
		out["law"] = len(st.Interim.Law)
	}
	if st.Interim.Market != nil {
		out["market"] = len(st.Interim.Market)
	}
	if st.Interim.Competition != nil {
		out["competition"] = len(st.Interim.Competition)
	}
	if st.Interim.Barriers != nil {
		out["barriers"] = len(st.Interim.Barriers)
	}
	if st.Insights != nil {
		out["insights"] = len(st.Insights)
	}
	return out
}

// ReportSummary is the compact report-chain view printed in step mode:
// evidence counts per country for each namespace that carries evidence.
func ReportSummary(st state.State) map[string]map[string]int {
	out := map[string]map[string]int{}
	if st.Market != nil {
		out["market"] = counts(st.Market, func(v state.CountryMarket) int { return len(v.Evidence) })
	}
	if st.Competition != nil {
		out["competition"] = counts(st.Competition, func(v state.CompetitionFindings) int { return len(v.Evidence) })
	}
	if st.Partners != nil {
		out["partners"] = counts(st.Partners, func(v state.PartnerLeads) int { return len(v.Evidence) })
	}
	return out
}

// Summary picks the compact view for the named chain.
func Summary(chain string, st state.State) any {
	if chain == ReportChainName {
		return ReportSummary(st)
	}
	return InsightSummary(st)
}

func counts[V any](m map[string]V, n func(V) int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = n(v)
	}
	return out
}
