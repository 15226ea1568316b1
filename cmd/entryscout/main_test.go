package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/config"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

var fixturePath = filepath.Join("..", "..", "internal", "fixture", "testdata", "usa_mongolia_logistics.json")

// writeConfig points the run log and references at a temp dir.
func writeConfig(t *testing.T) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Log.Level = "error"
	cfg.RunLog.Path = filepath.Join(dir, "runs.db")
	cfg.References.Dir = filepath.Join(dir, "refs")
	path = filepath.Join(dir, "entryscout.yaml")
	require.NoError(t, cfg.Save(path))
	return path, dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestReport_FixtureMarkdown(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	stdout, _, err := execute(t, "report", "--config", cfgPath, "--fixture", fixturePath, "--markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "# Acme Freight Market Entry Report"), stdout)
	assert.Contains(t, stdout, "## USA")
	assert.Contains(t, stdout, "## MNG")
}

func TestReport_FixtureJSONToFile(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	outPath := filepath.Join(dir, "report.json")
	stdout, _, err := execute(t, "report", "--config", cfgPath, "--fixture", fixturePath, "--out", outPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var rep state.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "Acme Freight", rep.Company)
	assert.Equal(t, state.ModeDirectInvestment, rep.Countries["MNG"].Decision.Recommended)
}

func TestInsights_StepMode(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	stdout, stderr, err := execute(t, "insights", "--config", cfgPath, "--fixture", fixturePath,
		"--countries", "USA", "--segment", "logistics", "--step")
	require.NoError(t, err)

	var insights []state.Insight
	require.NoError(t, json.Unmarshal([]byte(stdout), &insights))
	require.Len(t, insights, 1)
	assert.Equal(t, "USA", insights[0].Country)

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.Len(t, lines, 7)
	var last stepLine
	require.NoError(t, json.Unmarshal([]byte(lines[6]), &last))
	assert.Equal(t, "insight_aggregator", last.Stage)
	assert.NotNil(t, last.Summary)
}

func TestInspect_AfterRun(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	_, _, err := execute(t, "report", "--config", cfgPath, "--fixture", fixturePath)
	require.NoError(t, err)

	stdout, _, err := execute(t, "inspect", "--config", cfgPath, "--json")
	require.NoError(t, err)
	var rows []listRow
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "report", rows[0].Chain)
	assert.Equal(t, "ok", rows[0].Status)
	assert.True(t, rows[0].Retried)

	stdout, _, err = execute(t, "inspect", "--config", cfgPath, "--run", rows[0].RunID, "--json")
	require.NoError(t, err)
	var d detail
	require.NoError(t, json.Unmarshal([]byte(stdout), &d))
	assert.Len(t, d.Stages, 17)
	assert.Len(t, d.Decisions, 2)

	_, _, err = execute(t, "inspect", "--config", cfgPath, "--run", "missing")
	assert.Error(t, err)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	t.Setenv("WEB_SEARCH_PROVIDER", "bing")
	_, _, err := execute(t, "insights", "--config", cfgPath, "--countries", "USA")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunFlags_Apply(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Language = "ko"
	cfg.Rules = state.Rules{MinEvidence: 2}

	f := &runFlags{
		countries:   []string{" USA", "", "MNG "},
		segment:     "logistics",
		companyName: "Acme",
		firm:        `{"control_pref":"high"}`,
		rules:       `{"cagr_good":5}`,
	}
	seed, err := f.apply(state.State{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"USA", "MNG"}, seed.Countries)
	assert.Equal(t, "ko", seed.Language)
	assert.Equal(t, "Acme", seed.Company.Name)
	assert.Equal(t, "high", seed.Firm.ControlPref)
	assert.Equal(t, 2, seed.Rules.MinEvidence)
	require.NotNil(t, seed.Rules.CAGRGood)
	assert.Equal(t, 5.0, *seed.Rules.CAGRGood)
}

func TestRunFlags_ApplyErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct {
		name  string
		flags runFlags
		want  string
	}{
		{"no countries", runFlags{}, "--countries"},
		{"bad firm", runFlags{countries: []string{"USA"}, firm: "{"}, "--firm"},
		{"bad rules", runFlags{countries: []string{"USA"}, rules: "[]"}, "--rules"},
		{"negative evidence", runFlags{countries: []string{"USA"}, rules: `{"min_evidence":-1}`}, "min_evidence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.flags.apply(state.State{}, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunFlags_FixtureSeedKeepsRules(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules = state.Rules{MinEvidence: 9}
	seed := state.State{Countries: []string{"USA"}, Language: "en", Rules: state.Rules{MinEvidence: 3}}

	got, err := (&runFlags{}).apply(seed, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rules.MinEvidence)
	assert.Equal(t, "en", got.Language)
}
