package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

func TestComputeGDPProxy_SegmentTables(t *testing.T) {
	tests := []struct {
		segment   string
		wantRatio float64
		wantCAGR  float64
	}{
		{"Logistics", 0.022, 6.5},
		{"cross-border ecommerce", 0.035, 10.0},
		{"Digital Healthcare", 0.08, 7.2},
		{"renewable energy", 0.07, 4.5},
		{"smart manufacturing", 0.12, 5.0},
		{"agriculture", 0.04, 3.8},
		{"fintech", 0.03, 5.0},
	}
	macro := state.MacroIndicators{GDPUSDBil: 100}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			p, ok := ComputeGDPProxy(macro, tt.segment)
			require.True(t, ok)
			assert.Equal(t, tt.wantRatio, p.Ratio)
			assert.Equal(t, tt.wantCAGR, p.CAGRPct)
			assert.InDelta(t, 100*1e9*tt.wantRatio, p.MarketSizeUSD, 1)
			assert.Equal(t, ProxySource, p.Source)
		})
	}
}

func TestComputeGDPProxy_Note(t *testing.T) {
	p, ok := ComputeGDPProxy(state.MacroIndicators{GDPUSDBil: 10}, "logistics")
	require.True(t, ok)
	assert.Equal(t, "GDP ratio 2.2% estimate", p.Note)
}

func TestComputeGDPProxy_NoGDP(t *testing.T) {
	_, ok := ComputeGDPProxy(state.MacroIndicators{PopulationM: 3.4}, "logistics")
	assert.False(t, ok)
}

func TestApplyProxy_FillsOnlyUnresolved(t *testing.T) {
	p, ok := ComputeGDPProxy(state.MacroIndicators{GDPUSDBil: 20}, "logistics")
	require.True(t, ok)

	size := 5e8
	facts, ev := ApplyProxy(state.MarketFacts{MarketSizeUSD: &size}, nil, p, ok)
	assert.Equal(t, 5e8, *facts.MarketSizeUSD, "resolved size must not be overridden")
	require.NotNil(t, facts.CAGRPct)
	assert.Equal(t, 6.5, *facts.CAGRPct)
	assert.Empty(t, facts.ProxyNote)
	require.Len(t, ev, 1)
	assert.Equal(t, ProxySource, ev[0].SourceURL)
	assert.Equal(t, "GDP-based growth estimate applied: 6.5%", ev[0].Fact)

	facts, ev = ApplyProxy(state.MarketFacts{}, nil, p, ok)
	require.NotNil(t, facts.MarketSizeUSD)
	assert.InDelta(t, 20*1e9*0.022, *facts.MarketSizeUSD, 1)
	assert.Equal(t, p.Note, facts.ProxyNote)
	assert.Len(t, ev, 2)
}

func TestApplyProxy_Unavailable(t *testing.T) {
	facts, ev := ApplyProxy(state.MarketFacts{}, nil, Proxy{}, false)
	assert.Nil(t, facts.MarketSizeUSD)
	assert.Nil(t, facts.CAGRPct)
	assert.Empty(t, ev)
}

func TestResolve(t *testing.T) {
	pages := []state.Page{{Content: "Healthcare demand is rising.", URL: "https://a"}}
	macro := state.MacroIndicators{GDPUSDBil: 50}
	facts, ev := Resolve(pages, "healthcare", macro)

	require.NotNil(t, facts.CAGRPct)
	assert.Equal(t, 7.2, *facts.CAGRPct)
	require.NotNil(t, facts.MarketSizeUSD)
	assert.InDelta(t, 50*1e9*0.08, *facts.MarketSizeUSD, 1)
	assert.Equal(t, macro, facts.AuxIndicators)
	assert.Equal(t, "healthcare", facts.Segment)
	require.Len(t, ev, 3)
	assert.Equal(t, "https://a", ev[0].SourceURL)
}

func TestResolve_TextWinsOverProxy(t *testing.T) {
	pages := []state.Page{{Content: "A $2 billion market growing 9% CAGR.", URL: "https://a"}}
	facts, ev := Resolve(pages, "healthcare", state.MacroIndicators{GDPUSDBil: 50})

	assert.Equal(t, 2e9, *facts.MarketSizeUSD)
	assert.Equal(t, 9.0, *facts.CAGRPct)
	assert.Empty(t, facts.ProxyNote)
	assert.Len(t, ev, 1)
}
