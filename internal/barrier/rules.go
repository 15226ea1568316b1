package barrier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region fdi-rules

// FDIRule maps a pattern over lower-cased text to a restriction level.
// Lower Priority values are tried first; the first match wins.
type FDIRule struct {
	Pattern  *regexp.Regexp
	Level    state.FDILevel
	Priority int
}

var fdiRules = []FDIRule{
	{regexp.MustCompile(`\bforeign\s+(ownership|investment)\s+(ban|prohibition|prohibited)\b`), state.FDIHigh, 10},
	{regexp.MustCompile(`\b(sector|industry)\s+(reserved|restricted)\s+for\s+(nationals|locals)\b`), state.FDIHigh, 20},
	{regexp.MustCompile(`\b(equity\s+cap|foreign\s+ownership\s+(cap|limit|restriction)|local\s+partner\s+required|joint\s+venture\s+required)\b`), state.FDIMedium, 30},
	{regexp.MustCompile(`\bno\s+(statutory|regulatory)\s+limits?\s+on\s+foreign\s+ownership\b`), state.FDILow, 40},
	{regexp.MustCompile(`\bno\s+(general\s+)?foreign\s+ownership\s+restrictions\b`), state.FDILow, 50},
}

func init() {
	sort.SliceStable(fdiRules, func(i, j int) bool { return fdiRules[i].Priority < fdiRules[j].Priority })
}

// ClassifyFDI returns the restriction level implied by text, or FDIUnset.
func ClassifyFDI(text string) state.FDILevel {
	t := strings.ToLower(text)
	for _, r := range fdiRules {
		if r.Pattern.MatchString(t) {
			return r.Level
		}
	}
	return state.FDIUnset
}

// #endregion fdi-rules

// #region data-localization-rules

// DataLocRule matches when any AnyOf term and every AllOf term occur in the
// lower-cased text. When a Broaden term also occurs the class becomes broad.
type DataLocRule struct {
	AnyOf    []string
	AllOf    []string
	Broaden  []string
	Class    state.DataLocalization
	Priority int
}

var dataLocRules = []DataLocRule{
	{
		AnyOf:    []string{"data localization", "store data locally", "local storage of data"},
		Broaden:  []string{"all personal data", "across sectors", "broad requirement"},
		Class:    state.DataLocSectoral,
		Priority: 10,
	},
	{
		AnyOf:    []string{"bulk data transfer rule", "countries of concern"},
		Class:    state.DataLocCrossBorder,
		Priority: 20,
	},
	{
		AllOf:    []string{"data protection", "cross-border", "transfer"},
		Class:    state.DataLocSectoral,
		Priority: 30,
	},
}

func (r DataLocRule) match(t string) (state.DataLocalization, bool) {
	if len(r.AnyOf) > 0 && !containsAny(t, r.AnyOf) {
		return state.DataLocUnset, false
	}
	for _, term := range r.AllOf {
		if !strings.Contains(t, term) {
			return state.DataLocUnset, false
		}
	}
	if containsAny(t, r.Broaden) {
		return state.DataLocBroad, true
	}
	return r.Class, true
}

// ClassifyDataLocalization returns the data-localization category implied
// by text, or DataLocUnset.
func ClassifyDataLocalization(text string) state.DataLocalization {
	t := strings.ToLower(text)
	for _, r := range dataLocRules {
		if class, ok := r.match(t); ok {
			return class
		}
	}
	return state.DataLocUnset
}

// #endregion data-localization-rules

// #region flag-rules

// FlagDomain names the barrier map a flag belongs to.
type FlagDomain string

const (
	DomainTax   FlagDomain = "tax"
	DomainLabor FlagDomain = "labor"
)

// FlagPresent is the value a detected flag is set to.
const FlagPresent = "exists"

// FlagRule sets Flag in Domain when any keyword occurs.
type FlagRule struct {
	Keywords []string
	Flag     string
	Domain   FlagDomain
}

var flagRules = []FlagRule{
	{Keywords: []string{"vat", "value-added tax"}, Flag: "vat", Domain: DomainTax},
	{Keywords: []string{"corporate tax", "corporate income tax"}, Flag: "corporate_income_tax", Domain: DomainTax},
	{Keywords: []string{"withholding"}, Flag: "withholding", Domain: DomainTax},
	{Keywords: []string{"work permit", "labor permit", "labour permit", "quota"}, Flag: "work_permit_quota", Domain: DomainLabor},
	{Keywords: []string{"minimum wage"}, Flag: "minimum_wage", Domain: DomainLabor},
}

// ExtractFlags returns the tax and labor flags present in text, in rule order.
func ExtractFlags(text string) (tax, labor []string) {
	t := strings.ToLower(text)
	for _, r := range flagRules {
		if !containsAny(t, r.Keywords) {
			continue
		}
		switch r.Domain {
		case DomainTax:
			tax = append(tax, r.Flag)
		case DomainLabor:
			labor = append(labor, r.Flag)
		}
	}
	return tax, labor
}

// #endregion flag-rules

func containsAny(t string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(t, term) {
			return true
		}
	}
	return false
}
