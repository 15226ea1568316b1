package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/company"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/fixture"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/runlog"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/stages"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

func newFixtureService(t *testing.T, opts ...Option) (*Service, *fixture.Fixture) {
	t.Helper()
	f, err := fixture.Load(filepath.Join("..", "fixture", "testdata", "usa_mongolia_logistics.json"))
	require.NoError(t, err)
	deps := stages.Deps{
		Search:       f,
		Macro:        f,
		Company:      company.NewBuilder(nil, f, nil),
		ReferenceDir: t.TempDir(),
	}
	return New(deps, opts...), f
}

func memStore(t *testing.T) *runlog.Store {
	t.Helper()
	s, err := runlog.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRun_ReportRecordsRun(t *testing.T) {
	store := memStore(t)
	svc, f := newFixtureService(t, WithStore(store))
	ctx := context.Background()

	out, err := svc.Run(ctx, stages.ReportChainName, f.Seed.ToState())
	require.NoError(t, err)
	require.NotEmpty(t, out.RunID)
	assert.True(t, out.Retried())
	require.NotNil(t, out.State.Report)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, out.RunID, runs[0].RunID)
	assert.Equal(t, runlog.StatusOK, runs[0].Status)
	assert.True(t, runs[0].Retried)
	assert.Equal(t, []string{"USA", "MNG"}, runs[0].Countries)

	// eight stages on each pass, then report_builder again over all countries
	recs, err := store.Stages(ctx, out.RunID)
	require.NoError(t, err)
	require.Len(t, recs, 17)
	assert.Equal(t, stages.CompanyLoader, recs[0].Stage)
	assert.Equal(t, 1, recs[0].Pass)
	assert.Equal(t, 2, recs[8].Pass)
	assert.Equal(t, stages.ReportBuilder, recs[16].Stage)

	decisions, err := store.Decisions(ctx, out.RunID)
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, "USA", decisions[0].Country)
	assert.Equal(t, "MNG", decisions[1].Country)
	assert.Equal(t, "direct_investment", decisions[1].Recommended)
	assert.Equal(t, 2, decisions[1].EvidenceCount)
}

func TestRun_InsightsWithoutStore(t *testing.T) {
	svc, f := newFixtureService(t)

	var started []string
	obs := pipeline.ObserverFuncs{
		Started: func(name string, _ state.State) { started = append(started, name) },
	}
	out, err := svc.Run(context.Background(), stages.InsightChainName, f.Seed.ToState(), obs)
	require.NoError(t, err)

	assert.Empty(t, out.RunID)
	assert.False(t, out.Retried())
	assert.Len(t, out.State.Insights, 2)
	assert.Len(t, started, 7)
	assert.Equal(t, stages.InsightAggregator, started[6])
}

func TestRun_UnknownChain(t *testing.T) {
	svc, _ := newFixtureService(t)
	_, err := svc.Run(context.Background(), "summary", state.State{})
	assert.ErrorIs(t, err, ErrUnknownChain)
}

func TestRun_CancelledMarksRunFailed(t *testing.T) {
	store := memStore(t)
	svc, f := newFixtureService(t, WithStore(store))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := svc.Run(ctx, stages.InsightChainName, f.Seed.ToState())
	require.ErrorIs(t, err, context.Canceled)

	runs, err := store.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, out.RunID, runs[0].RunID)
	assert.Equal(t, runlog.StatusError, runs[0].Status)
	assert.NotEmpty(t, runs[0].Error)
}

func TestDecisionRecords_Order(t *testing.T) {
	st := state.State{
		Countries: []string{"MNG", "USA"},
		Decision: map[string]state.Decision{
			"USA": {Recommended: state.ModeLicensing, Score: 50},
			"KOR": {Recommended: state.ModeMnA},
			"MNG": {Recommended: state.ModeJointVenture, RecommendedLabel: "Joint Venture", Rationale: []string{"a"}},
		},
		Market: map[string]state.CountryMarket{
			"MNG": {Evidence: make([]state.Evidence, 3)},
		},
	}
	recs := DecisionRecords("run-1", st)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"MNG", "USA", "KOR"}, []string{recs[0].Country, recs[1].Country, recs[2].Country})
	assert.Equal(t, 3, recs[0].EvidenceCount)
	assert.Equal(t, "Joint Venture", recs[0].Label)
	assert.Equal(t, "run-1", recs[2].RunID)

	assert.Nil(t, DecisionRecords("run-1", state.State{}))
}
