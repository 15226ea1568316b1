// Package stages holds the stage functions of the insight and report
// chains and the chain topologies built from them.
package stages

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/company"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/macro"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/websearch"
)

// #region names

// Chain names.
const (
	InsightChainName = "insights"
	ReportChainName  = "report"
)

// Stage names.
const (
	CompanyLoader         = "company_loader"
	ReferenceLoader       = "reference_loader"
	LawAnalysis           = "law_analysis"
	MarketAnalysis        = "market_analysis"
	CompetitionAnalysis   = "competition_analysis"
	BarrierNormalizer     = "barrier_normalizer"
	InsightAggregator     = "insight_aggregator"
	MarketAssessment      = "market_assessment"
	CompetitionAssessment = "competition_assessment"
	StrategyPlanner       = "strategy_planner"
	PartnerMapper         = "partner_mapper"
	DecisionRouter        = "decision_router"
	ReportBuilder         = "report_builder"
)

// #endregion names

// #region deps

// DefaultPerCountry bounds concurrent per-country collaborator calls.
const DefaultPerCountry = 4

// Deps are the collaborators the stages call. Nil collaborators are
// replaced with disabled ones.
type Deps struct {
	Search       websearch.Searcher
	Macro        macro.Provider
	Company      *company.Builder
	ReferenceDir string
	PerCountry   int
	Logger       *zap.Logger
}

type runner struct {
	Deps
}

func newRunner(d Deps) *runner {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Search == nil {
		d.Search = websearch.Disabled{}
	}
	if d.Macro == nil {
		d.Macro = macro.Disabled{}
	}
	if d.Company == nil {
		d.Company = company.NewBuilder(nil, nil, d.Logger)
	}
	if d.PerCountry <= 0 {
		d.PerCountry = DefaultPerCountry
	}
	d.Logger = d.Logger.Named("stages")
	return &runner{Deps: d}
}

// #endregion deps

// #region chains

// InsightChain is company_loader → reference_loader → law_analysis →
// market_analysis → competition_analysis → barrier_normalizer →
// insight_aggregator.
func InsightChain(d Deps) []pipeline.Stage {
	r := newRunner(d)
	return []pipeline.Stage{
		{Name: CompanyLoader, Run: r.companyLoader},
		{Name: ReferenceLoader, Run: r.referenceLoader},
		{Name: LawAnalysis, Run: r.lawAnalysis},
		{Name: MarketAnalysis, Run: r.marketAnalysis},
		{Name: CompetitionAnalysis, Run: r.competitionAnalysis},
		{Name: BarrierNormalizer, Run: r.barrierNormalizer},
		{Name: InsightAggregator, Run: r.insightAggregator},
	}
}

// ReportChain is company_loader → reference_loader → market_assessment →
// competition_assessment → strategy_planner → partner_mapper →
// decision_router → report_builder.
func ReportChain(d Deps) []pipeline.Stage {
	r := newRunner(d)
	return []pipeline.Stage{
		{Name: CompanyLoader, Run: r.companyLoader},
		{Name: ReferenceLoader, Run: r.referenceLoader},
		{Name: MarketAssessment, Run: r.marketAssessment},
		{Name: CompetitionAssessment, Run: r.competitionAssessment},
		{Name: StrategyPlanner, Run: r.strategyPlanner},
		{Name: PartnerMapper, Run: r.partnerMapper},
		{Name: DecisionRouter, Run: r.decisionRouter},
		{Name: ReportBuilder, Run: r.reportBuilder},
	}
}

// #endregion chains

// #region fan-out

// forEachCountry runs fn for every country with at most limit calls in
// flight. Each call writes only its own slot; the map is assembled after
// all calls return, so the result does not depend on completion order.
func forEachCountry[T any](ctx context.Context, countries []string, limit int, fn func(ctx context.Context, country string) T) (map[string]T, error) {
	slots := make([]T, len(countries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range countries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = fn(gctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]T, len(countries))
	for i, c := range countries {
		out[c] = slots[i]
	}
	return out, nil
}

// #endregion fan-out
