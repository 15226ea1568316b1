package state

import "sort"

// #region merge

// Merge folds u into s and returns the result. Mapping-valued keys merge
// one level deep (new keys added, existing keys overwritten by u); every
// other key present in u replaces the old value. Keys absent from u are
// left alone, so a stage can never remove data.
func Merge(s State, u Update) State {
	if u.Company != nil {
		s.Company = *u.Company
	}
	if u.Firm != nil {
		s.Firm = *u.Firm
	}
	s.References = mergeShallow(s.References, u.References)
	if u.Interim != nil {
		s.Interim = mergeInterim(s.Interim, *u.Interim)
	}
	s.Market = mergeShallow(s.Market, u.Market)
	s.Competition = mergeShallow(s.Competition, u.Competition)
	s.Strategies = mergeShallow(s.Strategies, u.Strategies)
	s.Partners = mergeShallow(s.Partners, u.Partners)
	s.Decision = mergeShallow(s.Decision, u.Decision)
	if u.Insights != nil {
		s.Insights = u.Insights
	}
	if u.Report != nil {
		s.Report = u.Report
	}
	if u.Retry != nil {
		s.Retry = *u.Retry
	}
	return s
}

// mergeShallow adds or overwrites every key of src in a copy of dst.
// The copy keeps an earlier State snapshot unaffected by later merges.
func mergeShallow[K comparable, V any](dst, src map[K]V) map[K]V {
	if src == nil {
		return dst
	}
	out := make(map[K]V, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

// mergeInterim treats Interim as a mapping of sub-maps: each sub-map present
// in src replaces the one in dst, with no deeper recursion.
func mergeInterim(dst, src Interim) Interim {
	if src.Law != nil {
		dst.Law = src.Law
	}
	if src.Market != nil {
		dst.Market = src.Market
	}
	if src.Competition != nil {
		dst.Competition = src.Competition
	}
	if src.Barriers != nil {
		dst.Barriers = src.Barriers
	}
	return dst
}

// #endregion merge

// #region keys

// Keys lists the top-level keys present in the update, sorted.
func (u Update) Keys() []string {
	var keys []string
	add := func(present bool, name string) {
		if present {
			keys = append(keys, name)
		}
	}
	add(u.Company != nil, "company")
	add(u.Firm != nil, "firm")
	add(u.References != nil, "references")
	add(u.Interim != nil, "interim")
	add(u.Market != nil, "market")
	add(u.Competition != nil, "competition")
	add(u.Strategies != nil, "strategies")
	add(u.Partners != nil, "partners")
	add(u.Decision != nil, "decision")
	add(u.Insights != nil, "insights")
	add(u.Report != nil, "report")
	if u.Retry != nil {
		keys = append(keys, "retry_countries", "trigger_retry")
	}
	sort.Strings(keys)
	return keys
}

// Keys lists the populated top-level keys of the state, sorted.
func (s State) Keys() []string {
	var keys []string
	add := func(present bool, name string) {
		if present {
			keys = append(keys, name)
		}
	}
	add(s.Countries != nil, "countries")
	add(s.Segment != "", "segment")
	add(s.Language != "", "language")
	add(!s.Company.empty(), "company")
	add(s.Firm != (FirmProfile{}), "firm")
	add(s.Rules.MinEvidence != 0 || s.Rules.CAGRGood != nil, "rules")
	add(s.References != nil, "references")
	add(!s.Interim.empty(), "interim")
	add(s.Market != nil, "market")
	add(s.Competition != nil, "competition")
	add(s.Strategies != nil, "strategies")
	add(s.Partners != nil, "partners")
	add(s.Decision != nil, "decision")
	add(s.Insights != nil, "insights")
	add(s.Report != nil, "report")
	add(s.Retry.Trigger, "trigger_retry")
	add(s.Retry.Countries != nil, "retry_countries")
	add(s.RetryPerformed, "_retry_performed")
	sort.Strings(keys)
	return keys
}

func (c CompanyProfile) empty() bool {
	return c.Name == "" && c.URL == "" && c.Notes == "" && c.Headline == "" &&
		c.Description == "" && c.RawExcerpt == "" && len(c.Offerings) == 0 &&
		len(c.Differentiators) == 0 && len(c.TargetSegments) == 0 && len(c.ExpansionRisks) == 0
}

func (i Interim) empty() bool {
	return i.Law == nil && i.Market == nil && i.Competition == nil && i.Barriers == nil
}

// #endregion keys
