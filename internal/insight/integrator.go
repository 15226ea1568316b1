package insight

// #region imports
import (
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/scoring"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #endregion

// #region integrate

// Integrate builds one insight per country, in country order, from the
// interim law, market, competition and barrier artifacts. Evidence is
// concatenated market first, then competition, then law.
func Integrate(countries []string, interim state.Interim) []state.Insight {
	insights := make([]state.Insight, 0, len(countries))
	for _, country := range countries {
		market := interim.Market[country]
		competition := interim.Competition[country]
		barrier := interim.Barriers[country]

		insights = append(insights, state.Insight{
			Country:     country,
			Barriers:    barrier,
			Market:      market.Market,
			Competition: nonNil(competition.Competitors),
			Scores:      scoring.ScoreCountry(barrier, market.Market, competition.Competitors),
			Evidence:    collect(market.Evidence, competition.Evidence, interim.Law[country].Evidence),
		})
	}
	return insights
}

// #endregion

// #region helpers

func collect(chunks ...[]state.Evidence) []state.Evidence {
	out := []state.Evidence{}
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// #endregion helpers
