package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

func f64(v float64) *float64 { return &v }

func TestIntegrate_CollectsEvidence(t *testing.T) {
	interim := state.Interim{
		Market: map[string]state.MarketFindings{
			"USA": {
				Market: state.MarketFacts{
					Segment:       "logistics",
					MarketSizeUSD: f64(2e9),
					CAGRPct:       f64(12),
					Period:        "2024-2029",
				},
				Evidence: []state.Evidence{{Fact: "Market expected to grow", SourceURL: "https://example.com/market"}},
			},
		},
		Competition: map[string]state.CompetitionFindings{
			"USA": {
				Competitors: []state.Competitor{{Name: "Firm A", SharePct: f64(20), SourceURL: "https://example.com/a"}},
				Evidence:    []state.Evidence{{Fact: "Firm A dominates", SourceURL: "https://example.com/a"}},
			},
		},
		Barriers: map[string]state.Barrier{
			"USA": {FDIRestriction: state.FDILow},
		},
		Law: map[string]state.LawFindings{
			"USA": {Evidence: []state.Evidence{{Fact: "FDI open", SourceURL: "https://example.com/law"}}},
		},
	}

	got := Integrate([]string{"USA"}, interim)
	require.Len(t, got, 1)
	in := got[0]
	assert.Equal(t, "USA", in.Country)
	require.Len(t, in.Evidence, 3)
	assert.Equal(t, "https://example.com/market", in.Evidence[0].SourceURL)
	assert.Equal(t, "Firm A dominates", in.Evidence[1].Fact)
	assert.Equal(t, "FDI open", in.Evidence[2].Fact)
	assert.Greater(t, in.Scores.Attractiveness, 0.0)
	assert.Len(t, in.Competition, 1)
	assert.Nil(t, in.Decision)
}

func TestIntegrate_MissingArtifacts(t *testing.T) {
	got := Integrate([]string{"MNG", "KOR"}, state.Interim{})
	require.Len(t, got, 2)
	assert.Equal(t, "MNG", got[0].Country)
	assert.Equal(t, "KOR", got[1].Country)
	for _, in := range got {
		assert.NotNil(t, in.Evidence)
		assert.Empty(t, in.Evidence)
		assert.NotNil(t, in.Competition)
		assert.Equal(t, state.Scores{}, in.Scores)
	}
}

func TestIntegrate_NoCountries(t *testing.T) {
	got := Integrate(nil, state.Interim{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
