package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region tavily_tests

func TestTavily_Search(t *testing.T) {
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[
			{"title":"Logistics market","url":"https://a.example","content":"worth $2 billion"},
			{"title":"Second","url":"https://b.example","content":"growing 7%"},
			{"title":"Third","url":"https://c.example","content":"extra"}
		]}`)
	}))
	defer srv.Close()

	tv := NewTavily("key-1", srv.URL, srv.Client(), nil)
	pages := tv.Search(context.Background(), "USA logistics", 2)

	assert.Equal(t, tavilyRequest{APIKey: "key-1", Query: "USA logistics", MaxResults: 2}, got)
	require.Len(t, pages, 2)
	assert.Equal(t, state.Page{Title: "Logistics market", URL: "https://a.example", Content: "worth $2 billion", Query: "USA logistics"}, pages[0])
}

func TestTavily_NoKeyReturnsNothing(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	pages := NewTavily("", srv.URL, srv.Client(), nil).Search(context.Background(), "q", 5)
	assert.Empty(t, pages)
	assert.False(t, called)
}

func TestTavily_FailuresDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "{not json") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			assert.Empty(t, NewTavily("k", srv.URL, srv.Client(), nil).Search(context.Background(), "q", 5))
		})
	}

	// unreachable endpoint
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	assert.Empty(t, NewTavily("k", url, nil, nil).Search(context.Background(), "q", 5))
}

// #endregion tavily_tests

// #region duckduckgo_tests

const ddgPage = `<html><body>
<div class="result results_links result--ad">
  <a class="result__a" href="https://ads.example">Sponsored</a>
  <a class="result__snippet">buy now</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.trade.gov%2Flogistics&amp;rut=x">Logistics &amp; Freight</a></h2>
  <a class="result__snippet">The <b>logistics</b> market reached $1.5 billion   in 2023.</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="https://example.org/report">Report</a></h2>
  <a class="result__snippet">Growth of 6% CAGR</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="https://example.org/third">Third</a></h2>
</div>
</body></html>`

func TestDuckDuckGo_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "USA logistics", r.PostForm.Get("q"))
		fmt.Fprint(w, ddgPage)
	}))
	defer srv.Close()

	pages := NewDuckDuckGo(srv.URL, srv.Client(), nil).Search(context.Background(), "USA logistics", 2)
	require.Len(t, pages, 2)

	assert.Equal(t, "Logistics & Freight", pages[0].Title)
	assert.Equal(t, "https://www.trade.gov/logistics", pages[0].URL)
	assert.Equal(t, "The logistics market reached $1.5 billion in 2023.", pages[0].Snippet)
	assert.Equal(t, "USA logistics", pages[0].Query)
	assert.Equal(t, "https://example.org/report", pages[1].URL)
}

func TestDuckDuckGo_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	assert.Empty(t, NewDuckDuckGo(srv.URL, srv.Client(), nil).Search(context.Background(), "q", 3))
}

func TestResolveRedirect(t *testing.T) {
	assert.Equal(t, "https://x.example/a b", resolveRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fx.example%2Fa%20b"))
	assert.Equal(t, "https://plain.example", resolveRedirect("https://plain.example"))
	assert.Equal(t, "", resolveRedirect(""))
}

// #endregion duckduckgo_tests

// #region query_tests

type recordingSearcher struct {
	queries []string
	limits  []int
	perCall int
}

func (r *recordingSearcher) Search(_ context.Context, q string, limit int) []state.Page {
	r.queries = append(r.queries, q)
	r.limits = append(r.limits, limit)
	out := make([]state.Page, min(r.perCall, limit))
	for i := range out {
		out[i] = state.Page{Title: fmt.Sprintf("%d", i)}
	}
	return out
}

func TestMarketReportQueries(t *testing.T) {
	qs := MarketReportQueries("KOR", "logistics")
	require.Len(t, qs, len(OfficialFilters)+2)
	assert.Equal(t, "KOR logistics market size CAGR site:.gov", qs[0])
	assert.Equal(t, "KOR logistics market size CAGR site:un.org", qs[len(OfficialFilters)-1])
	assert.Equal(t, "KOR logistics market size CAGR 2024 report", qs[len(qs)-2])
	assert.Equal(t, "KOR logistics market size CAGR analysis", qs[len(qs)-1])
}

func TestCollectReports_StopsAtMax(t *testing.T) {
	s := &recordingSearcher{perCall: 6}
	pages := CollectReports(context.Background(), s, "USA", "logistics", 8)

	assert.Len(t, pages, 8)
	assert.Len(t, s.queries, 2, "second query already reaches the cap")
	assert.Equal(t, []int{6, 6}, s.limits)
	assert.True(t, strings.HasSuffix(pages[0].Query, "site:.gov"), "query is stamped on pages")
}

func TestCollectReports_SmallMaxCapsPerQuery(t *testing.T) {
	s := &recordingSearcher{perCall: 10}
	pages := CollectReports(context.Background(), s, "USA", "logistics", 3)
	assert.Len(t, pages, 3)
	assert.Equal(t, []int{3}, s.limits)
}

func TestCollectReports_ExhaustsQueries(t *testing.T) {
	s := &recordingSearcher{perCall: 0}
	pages := CollectReports(context.Background(), s, "USA", "logistics", 12)
	assert.Empty(t, pages)
	assert.Len(t, s.queries, len(OfficialFilters)+2)
}

func TestQueryBuilders(t *testing.T) {
	assert.Equal(t, "MNG mining foreign investment restriction data localization tax labor permit", LawQuery("MNG", "mining"))
	assert.Equal(t, "MNG mining top companies market share", CompetitionQuery("MNG", "mining"))
	assert.Equal(t, "MNG mining logistics partners investor consulting", PartnerQuery("MNG", "mining"))
}

// #endregion query_tests

func TestOpen(t *testing.T) {
	s, err := Open(Config{Provider: "disabled"}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Search(context.Background(), "q", 5))

	s, err = Open(Config{Provider: "tavily", TavilyAPIKey: "k"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Tavily{}, s)

	s, err = Open(Config{}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &DuckDuckGo{}, s)

	_, err = Open(Config{Provider: "bing"}, nil, nil)
	assert.Error(t, err)
}
