package barrier

import (
	"strings"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region payload

// EvidenceText is an evidence-shaped input; Text is used when Fact is empty.
type EvidenceText struct {
	Fact      string
	Text      string
	SourceURL string
}

// Payload is everything known about one country's regulatory picture.
// Base is a partially filled Barrier that is respected and only upgraded.
type Payload struct {
	Base     state.Barrier
	Evidence []EvidenceText
	Pages    []state.Page
	Notes    string
	LawText  string
	Raw      string
}

// FromLaw builds a classifier payload from the law stage's findings.
func FromLaw(f state.LawFindings) Payload {
	p := Payload{
		Base:    f.Barriers,
		Pages:   f.Pages,
		Notes:   f.Notes,
		LawText: f.LawText,
		Raw:     f.Raw,
	}
	for _, ev := range f.Evidence {
		p.Evidence = append(p.Evidence, EvidenceText{Fact: ev.Fact, SourceURL: ev.SourceURL})
	}
	return p
}

// Snippet is one piece of text fed to the rule cascade.
type Snippet struct {
	Text      string
	SourceURL string
}

// #endregion payload

// #region collect

// CollectSnippets gathers text from the evidence, pages and flat-field
// shapes of p, in that order. Blank texts are skipped.
func CollectSnippets(p Payload) []Snippet {
	var out []Snippet

	for _, ev := range p.Evidence {
		txt := ev.Fact
		if txt == "" {
			txt = ev.Text
		}
		if txt = strings.TrimSpace(txt); txt != "" {
			out = append(out, Snippet{Text: txt, SourceURL: ev.SourceURL})
		}
	}

	for _, pg := range p.Pages {
		txt := firstNonEmpty(pg.Content, pg.Snippet, pg.Summary, pg.Title)
		if txt = strings.TrimSpace(txt); txt != "" {
			out = append(out, Snippet{Text: txt, SourceURL: pg.Link()})
		}
	}

	for _, v := range []string{p.Notes, p.LawText, p.Raw} {
		if txt := strings.TrimSpace(v); txt != "" {
			out = append(out, Snippet{Text: txt})
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// #endregion collect

// #region normalize

// Normalize runs the rule cascade over every snippet of p and folds the
// results into a copy of p.Base: FDI by severity-max, data localization
// first-wins, tax/labor flags set-once, evidence appended per snippet.
// Other passes through unchanged.
func Normalize(p Payload) state.Barrier {
	base := p.Base
	out := state.Barrier{
		FDIRestriction:   base.FDIRestriction,
		DataLocalization: base.DataLocalization,
		TaxRegime:        copyFlags(base.TaxRegime),
		LaborRegulation:  copyFlags(base.LaborRegulation),
		Other:            append([]string{}, base.Other...),
		Evidence:         append([]state.Evidence{}, base.Evidence...),
	}

	for _, sn := range CollectSnippets(p) {
		out.FDIRestriction = MergeSeverityMax(out.FDIRestriction, ClassifyFDI(sn.Text))
		out.DataLocalization = MergeFirstWins(out.DataLocalization, ClassifyDataLocalization(sn.Text))

		tax, labor := ExtractFlags(sn.Text)
		out.TaxRegime = MergeSetOnce(out.TaxRegime, tax)
		out.LaborRegulation = MergeSetOnce(out.LaborRegulation, labor)

		out.Evidence = AppendEvidence(out.Evidence, sn.Text, sn.SourceURL)
	}
	return out
}

func copyFlags(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// #endregion normalize
