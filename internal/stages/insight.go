package stages

import (
	"context"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/barrier"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/insight"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/market"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/websearch"
)

// insightReportLimit is the market report budget of the insight chain.
const insightReportLimit = 12

// #region law-analysis

// lawAnalysis searches for regulatory text per country. Only evidence is
// kept so the normalizer reads each page once.
func (r *runner) lawAnalysis(ctx context.Context, st state.State) (state.Update, error) {
	law, err := forEachCountry(ctx, st.Countries, r.PerCountry, func(ctx context.Context, c string) state.LawFindings {
		pages := r.Search.Search(ctx, websearch.LawQuery(c, st.Segment), websearch.LawResults)
		return state.LawFindings{Evidence: pageEvidence(pages)}
	})
	if err != nil {
		return state.Update{}, err
	}
	return state.Update{Interim: &state.Interim{Law: law}}, nil
}

// #endregion law-analysis

// #region market-analysis

func (r *runner) marketAnalysis(ctx context.Context, st state.State) (state.Update, error) {
	results, err := forEachCountry(ctx, st.Countries, r.PerCountry, func(ctx context.Context, c string) state.MarketFindings {
		indicators := r.Macro.Macro(ctx, c)
		reports := websearch.CollectReports(ctx, r.Search, c, st.Segment, insightReportLimit)
		facts, evidence := market.Resolve(reports, st.Segment, indicators)
		if evidence == nil {
			evidence = []state.Evidence{}
		}
		return state.MarketFindings{Market: facts, Evidence: evidence}
	})
	if err != nil {
		return state.Update{}, err
	}
	return state.Update{Interim: &state.Interim{Market: results}}, nil
}

// #endregion market-analysis

// #region competition-analysis

// competitionAnalysis writes the top-level competition namespace and its
// interim copy.
func (r *runner) competitionAnalysis(ctx context.Context, st state.State) (state.Update, error) {
	results, err := forEachCountry(ctx, st.Countries, r.PerCountry, func(ctx context.Context, c string) state.CompetitionFindings {
		pages := r.Search.Search(ctx, websearch.CompetitionQuery(c, st.Segment), websearch.CompetitionResults)
		return competitionFindings(pages)
	})
	if err != nil {
		return state.Update{}, err
	}
	interim := make(map[string]state.CompetitionFindings, len(results))
	for c, f := range results {
		interim[c] = state.CompetitionFindings{Competitors: f.Competitors, Evidence: f.Evidence}
	}
	return state.Update{
		Competition: results,
		Interim:     &state.Interim{Competition: interim},
	}, nil
}

// #endregion competition-analysis

// #region barrier-normalizer

// barrierNormalizer classifies every law payload into a Barrier.
func (r *runner) barrierNormalizer(_ context.Context, st state.State) (state.Update, error) {
	out := make(map[string]state.Barrier, len(st.Interim.Law))
	for c, findings := range st.Interim.Law {
		out[c] = barrier.Normalize(barrier.FromLaw(findings))
	}
	return state.Update{Interim: &state.Interim{Barriers: out}}, nil
}

// #endregion barrier-normalizer

// #region insight-aggregator

func (r *runner) insightAggregator(_ context.Context, st state.State) (state.Update, error) {
	return state.Update{Insights: insight.Integrate(st.Countries, st.Interim)}, nil
}

// #endregion insight-aggregator
