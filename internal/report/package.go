// Package report assembles the hand-off package from a finished report run.
package report

import (
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/company"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/scoring"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// Build assembles the per-country package, the flat insights list and
// the collected evidence from st. The markdown dump is filled in as well.
func Build(st state.State) state.Report {
	rep := state.Report{
		Company:   companyName(st.Company),
		Segment:   st.Segment,
		Countries: make(map[string]state.CountryReport, len(st.Countries)),
		Insights:  make([]state.Insight, 0, len(st.Countries)),
		Evidence:  CollectEvidence(st),
	}

	for _, c := range st.Countries {
		m := st.Market[c]
		players := st.Competition[c].Players
		if players == nil {
			players = st.Competition[c].Competitors
		}
		decision := st.Decision[c]

		evidence := make([]state.Evidence, 0, len(m.Evidence)+len(st.Competition[c].Evidence)+len(st.Partners[c].Evidence))
		evidence = append(evidence, m.Evidence...)
		evidence = append(evidence, st.Competition[c].Evidence...)
		evidence = append(evidence, st.Partners[c].Evidence...)

		cr := state.CountryReport{
			Barriers:    m.Barriers,
			Market:      m.Overview,
			Competition: nonNil(players),
			Scores:      scoring.ScoreCountry(m.Barriers, m.Overview, players),
			Evidence:    evidence,
			Decision:    decision,
		}
		rep.Countries[c] = cr

		d := decision
		rep.Insights = append(rep.Insights, state.Insight{
			Country:     c,
			Barriers:    cr.Barriers,
			Market:      cr.Market,
			Competition: cr.Competition,
			Scores:      cr.Scores,
			Evidence:    cr.Evidence,
			Decision:    &d,
		})
	}

	rep.Markdown = Markdown(rep, st.Countries, st.Company)
	return rep
}

// CollectEvidence gathers evidence from the market, competition and
// partners namespaces in that order, countries in run order within each.
func CollectEvidence(st state.State) []state.Evidence {
	out := []state.Evidence{}
	for _, c := range st.Countries {
		out = append(out, st.Market[c].Evidence...)
	}
	for _, c := range st.Countries {
		out = append(out, st.Competition[c].Evidence...)
	}
	for _, c := range st.Countries {
		out = append(out, st.Partners[c].Evidence...)
	}
	return out
}

func companyName(c state.CompanyProfile) string {
	if c.Name != "" {
		return c.Name
	}
	return company.DefaultName
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
