package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/runlog"
)

const timeLayout = "2006-01-02T15:04:05Z"

// #region command

func newInspectCmd(a *app) *cobra.Command {
	var (
		last    int
		runID   string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List recent runs, or the stages and decisions of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.RunLog.Path == "" {
				return errors.New("run log disabled: set runlog.path or ENTRY_SCOUT_DB")
			}
			store, err := openStore(a.cfg.RunLog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			w := cmd.OutOrStdout()
			if runID != "" {
				return runDetailMode(cmd, store, runID, jsonOut, w)
			}
			return runListMode(cmd, store, last, jsonOut, w)
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show the N most recent runs")
	cmd.Flags().StringVar(&runID, "run", "", "show stages and decisions of one run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of a table")
	return cmd
}

// #endregion command

// #region list-mode

type listRow struct {
	RunID      string   `json:"run_id"`
	Chain      string   `json:"chain"`
	Countries  []string `json:"countries"`
	Segment    string   `json:"segment"`
	Status     string   `json:"status"`
	Retried    bool     `json:"retried"`
	Error      string   `json:"error,omitempty"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at,omitempty"`
}

func runListMode(cmd *cobra.Command, store *runlog.Store, last int, jsonOut bool, w io.Writer) error {
	runs, err := store.ListRuns(cmd.Context(), last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:      r.RunID,
			Chain:      r.Chain,
			Countries:  r.Countries,
			Segment:    r.Segment,
			Status:     string(r.Status),
			Retried:    r.Retried,
			Error:      r.Error,
			StartedAt:  formatTime(r.StartedAt),
			FinishedAt: formatTime(r.FinishedAt),
		}
	}
	if jsonOut {
		return printJSON(w, rows)
	}

	fmt.Fprintf(w, "%-36s  %-8s  %-7s  %-7s  %-20s  %s\n", "Run", "Chain", "Status", "Retried", "Started", "Countries")
	fmt.Fprintf(w, "%-36s+-%-8s+-%-7s+-%-7s+-%-20s+-%s\n",
		strings.Repeat("-", 36), "--------", "-------", "-------", "--------------------", "---------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-36s  %-8s  %-7s  %-7t  %-20s  %s\n",
			r.RunID, r.Chain, r.Status, r.Retried, r.StartedAt, strings.Join(r.Countries, ","))
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type stageRow struct {
	Stage      string   `json:"stage"`
	Pass       int      `json:"pass"`
	Status     string   `json:"status"`
	ElapsedMS  float64  `json:"elapsed_ms"`
	OutputKeys []string `json:"output_keys"`
	Error      string   `json:"error,omitempty"`
}

type decisionRow struct {
	Country       string   `json:"country"`
	Recommended   string   `json:"recommended"`
	Label         string   `json:"label"`
	Score         float64  `json:"score"`
	EvidenceCount int      `json:"evidence_count"`
	Rationale     []string `json:"rationale"`
}

type detail struct {
	RunID     string        `json:"run_id"`
	Stages    []stageRow    `json:"stages"`
	Decisions []decisionRow `json:"decisions"`
}

func runDetailMode(cmd *cobra.Command, store *runlog.Store, runID string, jsonOut bool, w io.Writer) error {
	ctx := cmd.Context()
	stageRecs, err := store.Stages(ctx, runID)
	if err != nil {
		return err
	}
	decisionRecs, err := store.Decisions(ctx, runID)
	if err != nil {
		return err
	}
	if len(stageRecs) == 0 && len(decisionRecs) == 0 {
		return fmt.Errorf("run %s not found", runID)
	}

	d := detail{RunID: runID, Stages: []stageRow{}, Decisions: []decisionRow{}}
	for _, s := range stageRecs {
		d.Stages = append(d.Stages, stageRow{
			Stage:      s.Stage,
			Pass:       s.Pass,
			Status:     string(s.Status),
			ElapsedMS:  float64(s.Elapsed) / float64(time.Millisecond),
			OutputKeys: s.OutputKeys,
			Error:      s.Error,
		})
	}
	for _, r := range decisionRecs {
		d.Decisions = append(d.Decisions, decisionRow{
			Country:       r.Country,
			Recommended:   r.Recommended,
			Label:         r.Label,
			Score:         r.Score,
			EvidenceCount: r.EvidenceCount,
			Rationale:     r.Rationale,
		})
	}
	if jsonOut {
		return printJSON(w, d)
	}

	fmt.Fprintf(w, "Run %s\n\n", runID)
	fmt.Fprintf(w, "%-24s  %4s  %-6s  %10s  %s\n", "Stage", "Pass", "Status", "Elapsed", "Output")
	for _, s := range d.Stages {
		out := strings.Join(s.OutputKeys, ",")
		if s.Error != "" {
			out = s.Error
		}
		fmt.Fprintf(w, "%-24s  %4d  %-6s  %8.1fms  %s\n", s.Stage, s.Pass, s.Status, s.ElapsedMS, out)
	}
	if len(d.Decisions) > 0 {
		fmt.Fprintf(w, "\n%-8s  %-28s  %6s  %8s\n", "Country", "Recommended", "Score", "Evidence")
		for _, r := range d.Decisions {
			fmt.Fprintf(w, "%-8s  %-28s  %6.2f  %8d\n", r.Country, r.Label, r.Score, r.EvidenceCount)
		}
	}
	return nil
}

// #endregion detail-mode

// #region helpers

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// #endregion helpers
