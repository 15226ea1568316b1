package barrier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region rule-table-tests

func TestClassifyFDI(t *testing.T) {
	tests := []struct {
		text string
		want state.FDILevel
	}{
		{"Foreign ownership ban applies to media.", state.FDIHigh},
		{"A foreign investment prohibition covers defense.", state.FDIHigh},
		{"This sector reserved for nationals only.", state.FDIHigh},
		{"An equity cap of 49% applies.", state.FDIMedium},
		{"Foreign ownership limit is 50 percent.", state.FDIMedium},
		{"A local partner required for licensing.", state.FDIMedium},
		{"Joint venture required in telecoms.", state.FDIMedium},
		{"There are no statutory limits on foreign ownership.", state.FDILow},
		{"No general foreign ownership restrictions exist.", state.FDILow},
		{"No foreign ownership restrictions exist.", state.FDILow},
		{"Corporate tax is 20%.", state.FDIUnset},
		{"", state.FDIUnset},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFDI(tt.text))
		})
	}
}

func TestClassifyFDI_HighRulesOutrankMedium(t *testing.T) {
	text := "Equity cap of 49%; foreign ownership ban in broadcasting."
	assert.Equal(t, state.FDIHigh, ClassifyFDI(text))
}

func TestFDIRulesOrderedByPriority(t *testing.T) {
	for i := 1; i < len(fdiRules); i++ {
		assert.LessOrEqual(t, fdiRules[i-1].Priority, fdiRules[i].Priority)
	}
}

func TestClassifyDataLocalization(t *testing.T) {
	tests := []struct {
		name string
		text string
		want state.DataLocalization
	}{
		{"sectoral localization", "Financial data localization rules apply to banks.", state.DataLocSectoral},
		{"broad localization", "Data localization covers all personal data.", state.DataLocBroad},
		{"broad across sectors", "Firms must store data locally across sectors.", state.DataLocBroad},
		{"bulk transfer rule", "The bulk data transfer rule restricts flows.", state.DataLocCrossBorder},
		{"countries of concern", "Transfers to countries of concern are limited.", state.DataLocCrossBorder},
		{"protection transfer", "The data protection act limits cross-border transfer.", state.DataLocSectoral},
		{"protection without transfer", "The data protection act exists.", state.DataLocUnset},
		{"unrelated", "Minimum wage rose.", state.DataLocUnset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDataLocalization(tt.text))
		})
	}
}

func TestExtractFlags(t *testing.T) {
	tax, labor := ExtractFlags("VAT of 10%, corporate income tax 25%, withholding on dividends; work permit quota and minimum wage.")
	assert.Equal(t, []string{"vat", "corporate_income_tax", "withholding"}, tax)
	assert.Equal(t, []string{"work_permit_quota", "minimum_wage"}, labor)

	tax, labor = ExtractFlags("Nothing relevant here.")
	assert.Empty(t, tax)
	assert.Empty(t, labor)
}

// #endregion rule-table-tests

// #region merge-strategy-tests

func TestMergeSeverityMax_Monotonic(t *testing.T) {
	perms := [][]state.FDILevel{
		{state.FDIMedium, state.FDILow, state.FDIHigh},
		{state.FDIMedium, state.FDIHigh, state.FDILow},
		{state.FDILow, state.FDIMedium, state.FDIHigh},
		{state.FDILow, state.FDIHigh, state.FDIMedium},
		{state.FDIHigh, state.FDIMedium, state.FDILow},
		{state.FDIHigh, state.FDILow, state.FDIMedium},
	}
	for _, p := range perms {
		level := state.FDIUnset
		for _, l := range p {
			level = MergeSeverityMax(level, l)
		}
		assert.Equal(t, state.FDIHigh, level, "order %v", p)
	}
}

func TestMergeSeverityMax_UnsetNeverDowngrades(t *testing.T) {
	assert.Equal(t, state.FDIMedium, MergeSeverityMax(state.FDIMedium, state.FDIUnset))
	assert.Equal(t, state.FDILow, MergeSeverityMax(state.FDIUnset, state.FDILow))
}

func TestMergeFirstWins(t *testing.T) {
	assert.Equal(t, state.DataLocCrossBorder, MergeFirstWins(state.DataLocCrossBorder, state.DataLocBroad))
	assert.Equal(t, state.DataLocBroad, MergeFirstWins(state.DataLocUnset, state.DataLocBroad))
	assert.Equal(t, state.DataLocUnset, MergeFirstWins(state.DataLocUnset, state.DataLocUnset))
}

func TestMergeSetOnce(t *testing.T) {
	dst := map[string]any{"vat": 10}
	got := MergeSetOnce(dst, []string{"vat", "withholding"})
	assert.Equal(t, 10, got["vat"])
	assert.Equal(t, FlagPresent, got["withholding"])

	assert.Equal(t, map[string]any{"vat": FlagPresent}, MergeSetOnce(nil, []string{"vat"}))
}

func TestAppendEvidence_ClipsAndKeepsDuplicates(t *testing.T) {
	long := strings.Repeat("x", 300)
	ev := AppendEvidence(nil, long, "https://a")
	ev = AppendEvidence(ev, long, "https://a")
	require.Len(t, ev, 2)
	assert.Len(t, ev[0].Fact, state.FactLimit)
	assert.Equal(t, ev[0], ev[1])
}

// #endregion merge-strategy-tests

// #region normalize-tests

func TestCollectSnippets_ShapesInOrder(t *testing.T) {
	p := Payload{
		Evidence: []EvidenceText{
			{Fact: " fact one ", SourceURL: "https://e1"},
			{Text: "text two", SourceURL: "https://e2"},
			{Fact: "   "},
		},
		Pages: []state.Page{
			{Title: "title only", Source: "https://p1"},
			{Snippet: "snippet", Summary: "summary", URL: "https://p2"},
			{Content: "content wins", Snippet: "ignored", URL: "https://p3", Source: "https://other"},
			{},
		},
		Notes:   "notes",
		LawText: " ",
		Raw:     "raw",
	}

	got := CollectSnippets(p)
	want := []Snippet{
		{"fact one", "https://e1"},
		{"text two", "https://e2"},
		{"title only", "https://p1"},
		{"snippet", "https://p2"},
		{"content wins", "https://p3"},
		{"notes", ""},
		{"raw", ""},
	}
	assert.Equal(t, want, got)
}

func TestNormalize_RespectsBase(t *testing.T) {
	p := Payload{Base: state.Barrier{
		FDIRestriction:   state.FDIMedium,
		DataLocalization: state.DataLocSectoral,
		TaxRegime:        map[string]any{"corp_tax_pct": 25},
		LaborRegulation:  map[string]any{"overtime_limit": 20},
		Other:            []string{"custom clearance"},
	}}

	b := Normalize(p)
	assert.Equal(t, state.FDIMedium, b.FDIRestriction)
	assert.Equal(t, state.DataLocSectoral, b.DataLocalization)
	assert.Equal(t, 25, b.TaxRegime["corp_tax_pct"])
	assert.Equal(t, 20, b.LaborRegulation["overtime_limit"])
	assert.Equal(t, []string{"custom clearance"}, b.Other)
	assert.Empty(t, b.Evidence)
}

func TestNormalize_FDIEscalatesAcrossSnippets(t *testing.T) {
	p := Payload{
		Base: state.Barrier{FDIRestriction: state.FDILow},
		Pages: []state.Page{
			{Content: "An equity cap applies.", URL: "https://a"},
			{Content: "Foreign ownership ban in media.", URL: "https://b"},
			{Content: "No foreign ownership restrictions in retail.", URL: "https://c"},
		},
	}
	b := Normalize(p)
	assert.Equal(t, state.FDIHigh, b.FDIRestriction)
	assert.Len(t, b.Evidence, 3)
}

func TestNormalize_DataLocalizationFirstWins(t *testing.T) {
	p := Payload{Evidence: []EvidenceText{
		{Fact: "The bulk data transfer rule limits transfers to countries of concern.", SourceURL: "https://a"},
		{Fact: "A data localization mandate covers all personal data.", SourceURL: "https://b"},
	}}
	b := Normalize(p)
	assert.Equal(t, state.DataLocCrossBorder, b.DataLocalization)
}

func TestNormalize_EvidencePerSnippetEvenWithoutMatch(t *testing.T) {
	p := Payload{
		Notes:   "Nothing regulatory here.",
		LawText: strings.Repeat("y", 500),
	}
	b := Normalize(p)
	require.Len(t, b.Evidence, 2)
	assert.Equal(t, "Nothing regulatory here.", b.Evidence[0].Fact)
	assert.Len(t, b.Evidence[1].Fact, state.FactLimit)
	assert.Equal(t, state.FDIUnset, b.FDIRestriction)
	assert.Equal(t, state.DataLocUnset, b.DataLocalization)
	assert.NotNil(t, b.TaxRegime)
	assert.NotNil(t, b.Other)
}

func TestNormalize_FlagsSetOnce(t *testing.T) {
	p := Payload{
		Base: state.Barrier{TaxRegime: map[string]any{"vat": "10%"}},
		Pages: []state.Page{
			{Content: "VAT and withholding apply; minimum wage is set yearly."},
		},
	}
	b := Normalize(p)
	assert.Equal(t, "10%", b.TaxRegime["vat"])
	assert.Equal(t, FlagPresent, b.TaxRegime["withholding"])
	assert.Equal(t, FlagPresent, b.LaborRegulation["minimum_wage"])
}

func TestNormalize_UpgradeOnlyIdempotence(t *testing.T) {
	first := Normalize(Payload{
		Evidence: []EvidenceText{
			{Fact: "Equity cap of 49% for foreign investors.", SourceURL: "https://a"},
			{Fact: "Data localization applies to all personal data; VAT 10%.", SourceURL: "https://b"},
			{Fact: "Work permit quota for foreign staff.", SourceURL: "https://c"},
		},
	})
	require.Equal(t, state.FDIMedium, first.FDIRestriction)
	require.Equal(t, state.DataLocBroad, first.DataLocalization)

	again := Normalize(Payload{Base: first})
	assert.Equal(t, first, again)
}

func TestNormalize_DoesNotMutateBase(t *testing.T) {
	base := state.Barrier{TaxRegime: map[string]any{}}
	Normalize(Payload{Base: base, Notes: "VAT applies"})
	assert.Empty(t, base.TaxRegime)
}

func TestFromLaw(t *testing.T) {
	f := state.LawFindings{
		Barriers: state.Barrier{FDIRestriction: state.FDIMedium},
		Evidence: []state.Evidence{{Fact: "Foreign ownership ban.", SourceURL: "https://x"}},
		Raw:      "raw text",
	}
	b := Normalize(FromLaw(f))
	assert.Equal(t, state.FDIHigh, b.FDIRestriction)
	assert.Len(t, b.Evidence, 2)
}

// #endregion normalize-tests
