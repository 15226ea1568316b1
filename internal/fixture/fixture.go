// Package fixture serves recorded collaborator answers from a JSON file so
// runs are reproducible without network access.
package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/macro"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// ErrNoSummary is returned by Summarize when the fixture has no profile.
var ErrNoSummary = errors.New("fixture has no company summary")

// #region fixture-types

// Fixture is the top-level JSON structure of a collaborator fixture.
type Fixture struct {
	Description string                           `json:"description"`
	Seed        Seed                             `json:"seed"`
	Searches    []SearchEntry                    `json:"searches"`
	Indicators  map[string]state.MacroIndicators `json:"macro"`
	Summary     *state.CompanyProfile            `json:"company_summary,omitempty"`
	Expected    map[string]Expected              `json:"expected,omitempty"`
}

// Seed is the JSON-serializable run input.
type Seed struct {
	Countries []string             `json:"countries"`
	Segment   string               `json:"segment"`
	Language  string               `json:"language,omitempty"`
	Company   state.CompanyProfile `json:"company"`
	Firm      state.FirmProfile    `json:"firm"`
	Rules     state.Rules          `json:"rules"`
}

// SearchEntry answers every query containing Match (case-insensitive). An
// empty Match answers every query.
type SearchEntry struct {
	Match string       `json:"match"`
	Pages []state.Page `json:"pages"`
}

// Expected captures the recorded decision per country.
type Expected struct {
	Recommended state.EntryMode `json:"recommended"`
}

// #endregion fixture-types

// #region fixture-loader

// Load reads and parses a JSON fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToState converts the seed to a State.
func (s Seed) ToState() state.State {
	return state.State{
		Countries: append([]string(nil), s.Countries...),
		Segment:   s.Segment,
		Language:  s.Language,
		Company:   s.Company,
		Firm:      s.Firm,
		Rules:     s.Rules,
	}
}

// #endregion fixture-loader

// #region collaborators

// Search returns the pages of every matching entry, in file order, capped
// at limit.
func (f *Fixture) Search(_ context.Context, query string, limit int) []state.Page {
	q := strings.ToLower(query)
	var out []state.Page
	for _, s := range f.Searches {
		if s.Match != "" && !strings.Contains(q, strings.ToLower(s.Match)) {
			continue
		}
		for _, p := range s.Pages {
			if limit > 0 && len(out) >= limit {
				return out
			}
			out = append(out, p)
		}
	}
	return out
}

// Macro looks the country up by resolved code, then by the name as given.
func (f *Fixture) Macro(_ context.Context, country string) state.MacroIndicators {
	if m, ok := f.Indicators[macro.ResolveCountryCode(country)]; ok {
		return m
	}
	return f.Indicators[country]
}

// Summarize returns the recorded company profile.
func (f *Fixture) Summarize(_ context.Context, _, _, _ string) (state.CompanyProfile, error) {
	if f.Summary == nil {
		return state.CompanyProfile{}, ErrNoSummary
	}
	return *f.Summary, nil
}

// #endregion collaborators
