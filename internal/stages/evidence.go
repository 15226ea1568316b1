package stages

import (
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// partnerFactLimit caps partner evidence facts.
const partnerFactLimit = 200

// pageEvidence turns pages into evidence using the first non-empty of
// content, snippet and title. Pages with no text are skipped.
func pageEvidence(pages []state.Page) []state.Evidence {
	out := []state.Evidence{}
	for _, p := range pages {
		text := firstNonEmpty(p.Content, p.Snippet, p.Title)
		if text == "" {
			continue
		}
		out = append(out, state.Evidence{Fact: state.Clip(text, state.FactLimit), SourceURL: p.Link()})
	}
	return out
}

// competitionFindings lists every titled page as a competitor and every
// page with a snippet or content as evidence.
func competitionFindings(pages []state.Page) state.CompetitionFindings {
	players := []state.Competitor{}
	evidence := []state.Evidence{}
	for _, p := range pages {
		if p.Title != "" {
			players = append(players, state.Competitor{Name: p.Title, Notes: p.Snippet, SourceURL: p.Link()})
		}
		if text := firstNonEmpty(p.Snippet, p.Content); text != "" {
			evidence = append(evidence, state.Evidence{Fact: state.Clip(text, state.FactLimit), SourceURL: p.Link()})
		}
	}
	return state.CompetitionFindings{
		Players:     players,
		Competitors: append([]state.Competitor{}, players...),
		Structure:   marketStructure(len(players)),
		Evidence:    evidence,
	}
}

// concentratedMax is the largest player count still called concentrated.
const concentratedMax = 5

func marketStructure(players int) string {
	if players <= concentratedMax {
		return "concentrated"
	}
	return "fragmented"
}

// partnerEvidence uses snippet, else title, capped at partnerFactLimit.
func partnerEvidence(pages []state.Page) []state.Evidence {
	out := []state.Evidence{}
	for _, p := range pages {
		text := firstNonEmpty(p.Snippet, p.Title)
		if text == "" {
			continue
		}
		out = append(out, state.Evidence{Fact: state.Clip(text, partnerFactLimit), SourceURL: p.Link()})
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
