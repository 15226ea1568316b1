package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region weights

const (
	weightCAGR    = 0.4
	weightMarket  = 0.3
	weightBarrier = 0.3

	// Market size at which the size term saturates.
	sizeSaturationUSD = 1e9
	// Competitor count above which crowding adds risk.
	crowdedMarket = 5
	crowdingRisk  = 0.1
)

var fdiPenalty = map[state.FDILevel]float64{
	state.FDIHigh:   0.3,
	state.FDIMedium: 0.15,
}

// #endregion weights

// #region score-country

// ScoreCountry computes attractiveness and risk on a 0-100 scale, each
// rounded to one decimal. Missing growth and size count as zero.
func ScoreCountry(b state.Barrier, m state.MarketFacts, competitors []state.Competitor) state.Scores {
	var cagr, size float64
	if m.CAGRPct != nil {
		cagr = *m.CAGRPct / 100
	}
	if m.MarketSizeUSD != nil {
		size = *m.MarketSizeUSD
	}
	sizeNorm := math.Min(size/sizeSaturationUSD, 1)

	penalty := fdiPenalty[state.FDILevel(strings.ToLower(string(b.FDIRestriction)))]
	attractiveness := math.Max(0, weightCAGR*cagr+weightMarket*sizeNorm-weightBarrier*penalty)

	risk := penalty
	if len(competitors) > crowdedMarket {
		risk += crowdingRisk
	}
	risk = math.Min(1, risk)

	return state.Scores{
		Attractiveness: Round(attractiveness*100, 1),
		Risk:           Round(risk*100, 1),
	}
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatPct renders a percentage with the shortest exact digits and at
// least one decimal place: 8 -> "8.0", 12.25 -> "12.25".
func FormatPct(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// #endregion score-country
