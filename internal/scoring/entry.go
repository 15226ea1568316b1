package scoring

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region bases

// Base fit of each mode before deltas, on a 0-100 scale.
const (
	baseDirectInvestment = 55.0
	baseJointVenture     = 60.0
	baseLicensing        = 50.0
	baseMnA              = 55.0
)

// #endregion bases

// #region inputs

// modeInputs is the normalized view the delta conditions read.
type modeInputs struct {
	cagr        float64
	cagrGood    float64
	fdi         string
	dataLoc     string
	other       string
	controlPref string
	riskApp     string
}

func newModeInputs(b state.Barrier, m state.MarketFacts, f state.FirmProfile, r state.Rules) modeInputs {
	in := modeInputs{
		cagrGood:    r.GoodGrowth(),
		fdi:         lowerOr(string(b.FDIRestriction), "low"),
		dataLoc:     lowerOr(string(b.DataLocalization), "none"),
		other:       strings.ToLower(strings.Join(b.Other, " ")),
		controlPref: lowerOr(f.ControlPref, "medium"),
		riskApp:     lowerOr(f.RiskAppetite, "medium"),
	}
	if m.CAGRPct != nil {
		in.cagr = *m.CAGRPct
	}
	return in
}

func (in modeInputs) goodGrowth() bool     { return in.cagr >= in.cagrGood }
func (in modeInputs) fdiRestricted() bool  { return in.fdi == "high" || in.fdi == "medium" }
func (in modeInputs) has(term string) bool { return strings.Contains(in.other, term) }
func (in modeInputs) localizedData() bool  { return in.dataLoc == "broad" || in.dataLoc == "sectoral" }

func lowerOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return strings.ToLower(v)
}

// #endregion inputs

// #region builder

type candidate struct {
	mode  state.EntryMode
	score float64
	pros  []string
	cons  []string
}

func (c *candidate) pro(delta float64, reason string) {
	c.score += delta
	c.pros = append(c.pros, reason)
}

func (c *candidate) con(delta float64, reason string) {
	c.score += delta
	c.cons = append(c.cons, reason)
}

func (c *candidate) result() state.EntryModeCandidate {
	pros, cons := c.pros, c.cons
	if pros == nil {
		pros = []string{}
	}
	if cons == nil {
		cons = []string{}
	}
	return state.EntryModeCandidate{Mode: c.mode, Fit: clamp(c.score), Pros: pros, Cons: cons}
}

func clamp(v float64) float64 {
	return max(0, min(100, v))
}

// #endregion builder

// #region score-entry-modes

// ScoreEntryModes scores direct investment, joint venture, licensing and
// M&A, always in that order. Every fired condition adds a pro or con.
func ScoreEntryModes(b state.Barrier, m state.MarketFacts, f state.FirmProfile, r state.Rules) []state.EntryModeCandidate {
	in := newModeInputs(b, m, f, r)
	return []state.EntryModeCandidate{
		scoreDirect(in),
		scoreJointVenture(in),
		scoreLicensing(in),
		scoreMnA(in),
	}
}

func scoreDirect(in modeInputs) state.EntryModeCandidate {
	c := candidate{mode: state.ModeDirectInvestment, score: baseDirectInvestment}
	if in.controlPref == "high" {
		c.pro(15, "Matches high control preference")
	}
	if in.goodGrowth() {
		c.pro(10, "Growth outlook supports wholly-owned expansion")
	}
	if in.fdiRestricted() {
		penalty := -10.0
		if in.fdi == "high" {
			penalty = -20
		}
		c.con(penalty, fmt.Sprintf("FDI restriction level %s limits equity ownership", in.fdi))
	}
	if in.has("equity cap") {
		c.con(-10, "Equity cap barriers reduce feasibility")
	}
	if in.localizedData() {
		c.con(-5, "Data localization requirements raise compliance cost")
	}
	return c.result()
}

func scoreJointVenture(in modeInputs) state.EntryModeCandidate {
	c := candidate{mode: state.ModeJointVenture, score: baseJointVenture}
	if in.fdiRestricted() || in.has("equity cap") {
		c.pro(10, "Local partner mitigates equity restrictions")
	}
	if in.riskApp == "low" {
		c.pro(5, "Shares investment risk with local partner")
	}
	if in.dataLoc == "none" {
		c.con(-5, "May not be necessary if regulatory friction is low")
	}
	return c.result()
}

func scoreLicensing(in modeInputs) state.EntryModeCandidate {
	c := candidate{mode: state.ModeLicensing, score: baseLicensing}
	if in.riskApp == "low" {
		c.pro(10, "Low capital exposure aligns with conservative stance")
	}
	if in.controlPref == "high" {
		c.con(-10, "Limited control conflicts with preference")
	}
	if in.goodGrowth() {
		c.con(0, "High growth may warrant more control than licensing provides")
	}
	return c.result()
}

func scoreMnA(in modeInputs) state.EntryModeCandidate {
	c := candidate{mode: state.ModeMnA, score: baseMnA}
	if in.goodGrowth() {
		c.pro(5, "Acquiring scale accelerates capture of fast growth")
	}
	if in.riskApp == "high" {
		c.pro(10, "High risk appetite supports acquisition strategy")
	}
	if in.has("foreign ownership ban") {
		c.con(-15, "Foreign ownership restrictions complicate acquisitions")
	}
	return c.result()
}

// #endregion score-entry-modes
