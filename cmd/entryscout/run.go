package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/config"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/stages"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region flags

type chainKind int

const (
	chainInsights chainKind = iota
	chainReport
)

// runFlags mirror the seed fields of a run.
type runFlags struct {
	countries    []string
	segment      string
	companyName  string
	companyURL   string
	companyNotes string
	lang         string
	firm         string
	rules        string
	step         bool
	out          string
	fixture      string
	markdown     bool
}

// #endregion flags

// #region command

func newRunCmd(a *app, kind chainKind) *cobra.Command {
	f := &runFlags{}
	chain := stages.InsightChainName
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Run the insight chain and print per-country insights",
		Args:  cobra.NoArgs,
	}
	if kind == chainReport {
		chain = stages.ReportChainName
		cmd.Use = "report"
		cmd.Short = "Run the report chain and print the report package"
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runChain(cmd, a, chain, f)
	}

	fl := cmd.Flags()
	fl.StringSliceVar(&f.countries, "countries", nil, "comma-separated countries, e.g. USA,MNG")
	fl.StringVar(&f.segment, "segment", "", "industry segment, e.g. logistics")
	fl.StringVar(&f.companyName, "company-name", "", "company name")
	fl.StringVar(&f.companyURL, "company-url", "", "company homepage to profile")
	fl.StringVar(&f.companyNotes, "company-notes", "", "free-form notes about the company")
	fl.StringVar(&f.lang, "lang", "", "output language tag (en, ko); defaults to config")
	fl.StringVar(&f.firm, "firm", "", `firm profile as JSON, e.g. {"control_pref":"high"}`)
	fl.StringVar(&f.rules, "rules", "", `rules as JSON, e.g. {"min_evidence":3,"cagr_good":8}`)
	fl.BoolVar(&f.step, "step", false, "print a compact summary after every stage")
	fl.StringVar(&f.out, "out", "", "write the result to this file instead of stdout")
	fl.StringVar(&f.fixture, "fixture", "", "serve collaborators from a JSON fixture")
	if kind == chainReport {
		fl.BoolVar(&f.markdown, "markdown", false, "print the markdown report instead of JSON")
	}
	return cmd
}

func runChain(cmd *cobra.Command, a *app, chain string, f *runFlags) error {
	if f.fixture != "" {
		useFixture(a.cfg, f.fixture)
	}
	rt, err := openRuntime(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	var seed state.State
	if rt.fixture != nil && len(f.countries) == 0 {
		seed = rt.fixture.Seed.ToState()
	}
	seed, err = f.apply(seed, a.cfg)
	if err != nil {
		return err
	}

	var observers []pipeline.Observer
	if f.step {
		observers = append(observers, stepPrinter(cmd.ErrOrStderr(), chain))
	}

	out, err := rt.svc.Run(cmd.Context(), chain, seed, observers...)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		w = file
	}
	return writeResult(w, chain, out.State, f.markdown)
}

// useFixture routes search, macro and summarization to the fixture file.
func useFixture(cfg *config.Config, path string) {
	cfg.Fixture.Path = path
	cfg.Search.Provider = "fixture"
	cfg.Macro.Provider = "fixture"
	cfg.Collaborator.Summarize = false
}

// #endregion command

// #region seed

// apply overlays the flags on seed. Rules from --rules override the
// configured defaults field by field.
func (f *runFlags) apply(seed state.State, cfg *config.Config) (state.State, error) {
	if len(f.countries) > 0 {
		seed.Countries = nil
		for _, c := range f.countries {
			if c = strings.TrimSpace(c); c != "" {
				seed.Countries = append(seed.Countries, c)
			}
		}
	}
	if len(seed.Countries) == 0 {
		return seed, errors.New("--countries is required")
	}
	if f.segment != "" {
		seed.Segment = f.segment
	}
	if f.companyName != "" {
		seed.Company.Name = f.companyName
	}
	if f.companyURL != "" {
		seed.Company.URL = f.companyURL
	}
	if f.companyNotes != "" {
		seed.Company.Notes = f.companyNotes
	}

	switch {
	case f.lang != "":
		seed.Language = f.lang
	case seed.Language == "":
		seed.Language = cfg.Language
	}

	if f.firm != "" {
		if err := json.Unmarshal([]byte(f.firm), &seed.Firm); err != nil {
			return seed, fmt.Errorf("parse --firm: %w", err)
		}
	}

	if seed.Rules.MinEvidence == 0 && seed.Rules.CAGRGood == nil {
		seed.Rules = cfg.Rules
	}
	if f.rules != "" {
		if err := json.Unmarshal([]byte(f.rules), &seed.Rules); err != nil {
			return seed, fmt.Errorf("parse --rules: %w", err)
		}
	}
	if seed.Rules.MinEvidence < 0 {
		return seed, errors.New("rules.min_evidence must be >= 0")
	}
	return seed, nil
}

// #endregion seed

// #region output

type stepLine struct {
	Stage     string  `json:"stage"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
	Summary   any     `json:"summary,omitempty"`
}

// stepPrinter writes one JSON line per finished stage.
func stepPrinter(w io.Writer, chain string) pipeline.Observer {
	enc := json.NewEncoder(w)
	return pipeline.ObserverFuncs{
		Finished: func(name string, st state.State, _ state.Update, elapsed time.Duration, err error) {
			line := stepLine{Stage: name, ElapsedMS: float64(elapsed) / float64(time.Millisecond)}
			if err != nil {
				line.Error = err.Error()
			} else {
				line.Summary = stages.Summary(chain, st)
			}
			_ = enc.Encode(line)
		},
	}
}

func writeResult(w io.Writer, chain string, st state.State, markdown bool) error {
	if chain == stages.ReportChainName && markdown {
		if st.Report == nil {
			return errors.New("run produced no report")
		}
		_, err := io.WriteString(w, st.Report.Markdown)
		return err
	}

	var body any = st.Insights
	if chain == stages.ReportChainName {
		body = st.Report
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(body)
}

// #endregion output
