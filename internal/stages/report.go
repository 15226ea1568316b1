package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/barrier"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/decision"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/market"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/report"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/scoring"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/websearch"
)

// minReportResults is the floor of the report chain's market budget.
const minReportResults = 8

// #region market-assessment

// ReportBudget is the number of market pages collected per country:
// max(8, min_evidence), doubled on the retried pass.
func ReportBudget(rules state.Rules, pass int) int {
	n := max(minReportResults, rules.MinEvidence)
	if pass > 1 {
		n *= 2
	}
	return n
}

// marketAssessment resolves market facts and classifies barriers from the
// same report pages.
func (r *runner) marketAssessment(ctx context.Context, st state.State) (state.Update, error) {
	budget := ReportBudget(st.Rules, pipeline.Pass(ctx))
	results, err := forEachCountry(ctx, st.Countries, r.PerCountry, func(ctx context.Context, c string) state.CountryMarket {
		indicators := r.Macro.Macro(ctx, c)
		reports := websearch.CollectReports(ctx, r.Search, c, st.Segment, budget)

		facts, evidence := market.Resolve(reports, st.Segment, indicators)
		b := barrier.Normalize(barrier.Payload{Pages: reports})
		b.Evidence = nil

		all := make([]state.Evidence, 0, len(evidence)+len(reports))
		all = append(all, evidence...)
		all = append(all, pageEvidence(reports)...)
		return state.CountryMarket{Overview: facts, Barriers: b, Evidence: all}
	})
	if err != nil {
		return state.Update{}, err
	}
	return state.Update{Market: results}, nil
}

// #endregion market-assessment

// #region competition-assessment

func (r *runner) competitionAssessment(ctx context.Context, st state.State) (state.Update, error) {
	results, err := forEachCountry(ctx, st.Countries, r.PerCountry, func(ctx context.Context, c string) state.CompetitionFindings {
		pages := r.Search.Search(ctx, websearch.CompetitionQuery(c, st.Segment), websearch.CompetitionResults)
		return competitionFindings(pages)
	})
	if err != nil {
		return state.Update{}, err
	}
	return state.Update{Competition: results}, nil
}

// #endregion competition-assessment

// #region strategy-planner

// strategyPlanner scores the entry modes per country and keeps the
// context they were scored against.
func (r *runner) strategyPlanner(_ context.Context, st state.State) (state.Update, error) {
	out := make(map[string]state.CountryStrategy, len(st.Countries))
	for _, c := range st.Countries {
		m := st.Market[c]
		players := st.Competition[c].Players
		if players == nil {
			players = []state.Competitor{}
		}
		out[c] = state.CountryStrategy{
			Candidates: scoring.ScoreEntryModes(m.Barriers, m.Overview, st.Firm, st.Rules),
			Context:    state.StrategyContext{Players: players, Market: m.Overview},
		}
	}
	return state.Update{Strategies: out}, nil
}

// #endregion strategy-planner

// #region partner-mapper

func (r *runner) partnerMapper(ctx context.Context, st state.State) (state.Update, error) {
	results, err := forEachCountry(ctx, st.Countries, r.PerCountry, func(ctx context.Context, c string) state.PartnerLeads {
		pages := r.Search.Search(ctx, websearch.PartnerQuery(c, st.Segment), websearch.PartnerResults)
		return state.PartnerLeads{
			LocalFirms:  []string{},
			Investors:   []string{},
			Consultants: []string{},
			Evidence:    partnerEvidence(pages),
		}
	})
	if err != nil {
		return state.Update{}, err
	}
	return state.Update{Partners: results}, nil
}

// #endregion partner-mapper

// #region decision-router

// decisionRouter records one decision per country and, on the first pass,
// the retry signal for countries short of evidence.
func (r *runner) decisionRouter(ctx context.Context, st state.State) (state.Update, error) {
	out := decision.NewController().Decide(decision.InputFrom(st))
	u := state.Update{Decision: out.Decisions}
	if len(out.Short) > 0 {
		r.Logger.Info("evidence below minimum",
			zap.Strings("countries", out.Short),
			zap.Int("min_evidence", st.Rules.MinEvidence),
			zap.Bool("retry_signalled", out.Retry != nil),
			zap.String("run_id", pipeline.RunID(ctx)),
		)
	}
	if out.Retry != nil {
		u.Retry = out.Retry
	}
	return u, nil
}

// #endregion decision-router

// #region report-builder

func (r *runner) reportBuilder(_ context.Context, st state.State) (state.Update, error) {
	rep := report.Build(st)
	return state.Update{Report: &rep}, nil
}

// #endregion report-builder
