package decision

// #region imports
import (
	"fmt"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/scoring"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #endregion

// #region types

// minRationale is the number of rationale lines below which a filler
// recommendation is appended.
const minRationale = 3

// Input is everything the controller reads from the state record.
type Input struct {
	Countries      []string
	Strategies     map[string]state.CountryStrategy
	Market         map[string]state.CountryMarket
	Rules          state.Rules
	Language       string
	RetryPerformed bool
}

// InputFrom projects the fields the controller reads out of st.
func InputFrom(st state.State) Input {
	return Input{
		Countries:      st.Countries,
		Strategies:     st.Strategies,
		Market:         st.Market,
		Rules:          st.Rules,
		Language:       st.Language,
		RetryPerformed: st.RetryPerformed,
	}
}

// Output holds one decision per country and, when evidence fell short
// on a first pass, the retry signal.
type Output struct {
	Decisions map[string]state.Decision
	Retry     *state.RetrySignal
	Short     []string
}

// #endregion types

// #region controller

// Controller picks the recommended entry mode per country and gates the
// evidence-driven retry.
type Controller struct{}

// NewController creates a decision controller.
func NewController() *Controller {
	return &Controller{}
}

// Decide evaluates every country in input order. Short lists the
// countries below rules.min_evidence whether or not a retry is signalled.
func (c *Controller) Decide(in Input) Output {
	cat := catalogFor(in.Language)
	out := Output{Decisions: make(map[string]state.Decision, len(in.Countries))}

	for _, country := range in.Countries {
		best, ok := bestCandidate(in.Strategies[country].Candidates)
		mode := state.ModeAdditionalResearch
		var fit float64
		if ok {
			mode, fit = best.Mode, best.Fit
		}

		m := in.Market[country]
		count := len(m.Evidence)
		if count < in.Rules.MinEvidence {
			out.Short = append(out.Short, country)
		}

		label, found := cat.modes[mode]
		if !found {
			label = string(mode)
		}
		out.Decisions[country] = state.Decision{
			Recommended:      mode,
			RecommendedLabel: label,
			Score:            scoring.Round(fit, 2),
			Rationale:        rationale(cat, country, m, count),
		}
	}

	if len(out.Short) > 0 && !in.RetryPerformed {
		out.Retry = &state.RetrySignal{
			Trigger:   true,
			Countries: append([]string(nil), out.Short...),
		}
	}
	return out
}

// bestCandidate returns the first candidate reaching the maximum fit.
func bestCandidate(cands []state.EntryModeCandidate) (state.EntryModeCandidate, bool) {
	if len(cands) == 0 {
		return state.EntryModeCandidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Fit > best.Fit {
			best = c
		}
	}
	return best, true
}

// #endregion controller

// #region rationale

func rationale(cat catalog, country string, m state.CountryMarket, evidenceCount int) []string {
	lines := []string{
		fmt.Sprintf(cat.country, country),
		fmt.Sprintf(cat.evidence, evidenceCount),
	}
	if m.Overview.CAGRPct != nil {
		lines = append(lines, fmt.Sprintf(cat.cagr, scoring.FormatPct(*m.Overview.CAGRPct)))
	}
	if m.Barriers.FDIRestriction != state.FDIUnset {
		lines = append(lines, fmt.Sprintf(cat.fdi, m.Barriers.FDIRestriction))
	}
	if m.Barriers.DataLocalization != state.DataLocUnset {
		lines = append(lines, fmt.Sprintf(cat.dataLoc, m.Barriers.DataLocalization))
	}
	if len(lines) < minRationale {
		lines = append(lines, cat.fillerTip)
	}
	return lines
}

// #endregion rationale
