package company

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

const samplePage = `<html><head><title>Acme Freight</title>
<style>body { color: red }</style><script>var x = 1;</script></head>
<body><h1>  Acme   Freight </h1><noscript>enable js</noscript>
<p>Cold-chain logistics for <b>Mongolia</b>.</p></body></html>`

func TestExtractText(t *testing.T) {
	assert.Equal(t, "Acme Freight Acme   Freight Cold-chain logistics for Mongolia .", ExtractText(samplePage))
	assert.Equal(t, "", ExtractText("  "))

	long := "<p>" + strings.Repeat("a", MaxChars+50) + "</p>"
	assert.Len(t, ExtractText(long), MaxChars)
}

type stubSummarizer struct {
	profile state.CompanyProfile
	err     error
	gotText string
}

func (s *stubSummarizer) Summarize(_ context.Context, _, _, text string) (state.CompanyProfile, error) {
	s.gotText = text
	return s.profile, s.err
}

func TestBuild_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, samplePage)
	}))
	defer srv.Close()

	b := NewBuilder(srv.Client(), nil, nil)
	got := b.Build(context.Background(), "Acme", srv.URL, "regional carrier")

	text := ExtractText(samplePage)
	want := state.CompanyProfile{
		Name:            "Acme",
		URL:             srv.URL,
		Notes:           "regional carrier",
		Headline:        "N/A",
		Description:     text,
		Offerings:       []string{},
		Differentiators: []string{},
		TargetSegments:  []string{},
		ExpansionRisks:  []string{},
		RawExcerpt:      text,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_FetchFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	got := NewBuilder(srv.Client(), nil, nil).Build(context.Background(), "Acme", srv.URL, "")
	assert.Equal(t, "Additional qualitative analysis required.", got.Description)
	assert.Equal(t, "", got.RawExcerpt)
	assert.Equal(t, srv.URL, got.URL)
}

func TestBuild_UsesSummarizer(t *testing.T) {
	s := &stubSummarizer{profile: state.CompanyProfile{Headline: "Cold chain", Offerings: []string{"reefer"}}}
	got := NewBuilder(nil, s, nil).Build(context.Background(), "Acme", "", "notes")

	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "Cold chain", got.Headline)
	assert.Equal(t, []string{"reefer"}, got.Offerings)
	assert.Equal(t, "notes", got.Notes)
	assert.Equal(t, "", s.gotText)
}

func TestBuild_SummarizerErrorFallsBack(t *testing.T) {
	s := &stubSummarizer{err: errors.New("unavailable")}
	got := NewBuilder(nil, s, nil).Build(context.Background(), "Acme", "", "")
	assert.Equal(t, "N/A", got.Headline)
}

func TestIdentity(t *testing.T) {
	name, url, notes := Identity(state.CompanyProfile{}, state.FirmProfile{})
	assert.Equal(t, DefaultName, name)
	assert.Empty(t, url)
	assert.Empty(t, notes)

	name, url, notes = Identity(
		state.CompanyProfile{URL: "https://c.example"},
		state.FirmProfile{Name: "FirmCo", URL: "https://f.example", Notes: "firm notes"},
	)
	assert.Equal(t, "FirmCo", name)
	assert.Equal(t, "https://c.example", url)
	assert.Equal(t, "firm notes", notes)
}

func TestMergeInto(t *testing.T) {
	existing := state.CompanyProfile{Name: "Acme", Headline: "old", Offerings: []string{"x"}}
	got := MergeInto(existing, state.CompanyProfile{Headline: "new"})
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "new", got.Headline)
	assert.Equal(t, []string{"x"}, got.Offerings)

	got = MergeInto(existing, state.CompanyProfile{Offerings: []string{}})
	assert.Empty(t, got.Offerings)
}

func TestInheritFirm(t *testing.T) {
	p := state.CompanyProfile{Name: "Acme", Headline: "Cold chain", URL: "https://acme.example", Notes: "n"}

	got := InheritFirm(state.FirmProfile{ControlPref: "high"}, p)
	assert.Equal(t, state.FirmProfile{
		Name: "Acme", Headline: "Cold chain", URL: "https://acme.example", Notes: "n", ControlPref: "high",
	}, got)

	kept := InheritFirm(state.FirmProfile{Name: "FirmCo", Headline: "own"}, p)
	assert.Equal(t, "FirmCo", kept.Name)
	assert.Equal(t, "own", kept.Headline)
}
