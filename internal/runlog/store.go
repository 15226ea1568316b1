package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	chain        TEXT NOT NULL,
	countries    TEXT NOT NULL,
	segment      TEXT NOT NULL,
	status       TEXT NOT NULL,
	retried      INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE TABLE IF NOT EXISTS stage_executions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	stage        TEXT NOT NULL,
	pass         INTEGER NOT NULL DEFAULT 1,
	started_at   TEXT NOT NULL,
	elapsed_ms   REAL NOT NULL,
	input_keys   TEXT NOT NULL,
	output_keys  TEXT NOT NULL,
	status       TEXT NOT NULL,
	error        TEXT,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS decisions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         TEXT NOT NULL,
	country        TEXT NOT NULL,
	recommended    TEXT NOT NULL,
	label          TEXT NOT NULL,
	score          REAL NOT NULL,
	evidence_count INTEGER NOT NULL,
	rationale      TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_stage_executions_run ON stage_executions(run_id);
CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
`
// #endregion schema

// #region store-struct
// Store is the audit trail of pipeline runs in SQLite. The state record
// itself is never written here.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion constructor

// #region runs
// BeginRun inserts a running run row and returns its ID. A fresh UUID is
// assigned when rec.RunID is empty.
func (s *Store) BeginRun(ctx context.Context, rec RunRecord) (string, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.New().String()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	countries, err := json.Marshal(nonNil(rec.Countries))
	if err != nil {
		return "", fmt.Errorf("marshal countries: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, chain, countries, segment, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Chain, string(countries), rec.Segment, string(StatusRunning),
		rec.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return rec.RunID, nil
}

// FinishRun marks a run finished. errMsg is stored only when non-empty.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, retried bool, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, retried = ?, error = ?, finished_at = ? WHERE run_id = ?`,
		string(status), boolInt(retried), nullIfEmpty(errMsg),
		time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, chain, countries, segment, status, retried, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var countries, status, started string
		var retried int
		var errMsg, finished sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.Chain, &countries, &rec.Segment, &status,
			&retried, &errMsg, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(countries), &rec.Countries); err != nil {
			return nil, fmt.Errorf("unmarshal countries: %w", err)
		}
		rec.Status = Status(status)
		rec.Retried = retried != 0
		rec.Error = errMsg.String
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
// #endregion runs

// #region stages
// RecordStage appends one stage execution row.
func (s *Store) RecordStage(ctx context.Context, rec StageRecord) error {
	in, err := json.Marshal(nonNil(rec.InputKeys))
	if err != nil {
		return fmt.Errorf("marshal input keys: %w", err)
	}
	out, err := json.Marshal(nonNil(rec.OutputKeys))
	if err != nil {
		return fmt.Errorf("marshal output keys: %w", err)
	}
	if rec.Pass == 0 {
		rec.Pass = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO stage_executions (run_id, stage, pass, started_at, elapsed_ms, input_keys, output_keys, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Stage, rec.Pass, rec.StartedAt.UTC().Format(time.RFC3339Nano),
		float64(rec.Elapsed)/float64(time.Millisecond), string(in), string(out),
		string(rec.Status), nullIfEmpty(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("record stage %s: %w", rec.Stage, err)
	}
	return nil
}

// Stages returns the stage executions of a run in execution order.
func (s *Store) Stages(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage, pass, started_at, elapsed_ms, input_keys, output_keys, status, error
		 FROM stage_executions WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var out []StageRecord
	for rows.Next() {
		rec := StageRecord{RunID: runID}
		var started, in, outKeys, status string
		var elapsedMS float64
		var errMsg sql.NullString
		if err := rows.Scan(&rec.Stage, &rec.Pass, &started, &elapsedMS, &in, &outKeys, &status, &errMsg); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		if err := json.Unmarshal([]byte(in), &rec.InputKeys); err != nil {
			return nil, fmt.Errorf("unmarshal input keys: %w", err)
		}
		if err := json.Unmarshal([]byte(outKeys), &rec.OutputKeys); err != nil {
			return nil, fmt.Errorf("unmarshal output keys: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.Elapsed = time.Duration(elapsedMS * float64(time.Millisecond))
		rec.Status = Status(status)
		rec.Error = errMsg.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
// #endregion stages

// #region decisions
// RecordDecisions writes all decisions of a run in one transaction.
func (s *Store) RecordDecisions(ctx context.Context, recs []DecisionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, rec := range recs {
		rationale, err := json.Marshal(nonNil(rec.Rationale))
		if err != nil {
			return fmt.Errorf("marshal rationale: %w", err)
		}
		created := rec.CreatedAt
		if created.IsZero() {
			created = now
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO decisions (run_id, country, recommended, label, score, evidence_count, rationale, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.Country, rec.Recommended, rec.Label, rec.Score,
			rec.EvidenceCount, string(rationale), created.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert decision %s: %w", rec.Country, err)
		}
	}
	return tx.Commit()
}

// Decisions returns the decisions of a run in insertion order.
func (s *Store) Decisions(ctx context.Context, runID string) ([]DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT country, recommended, label, score, evidence_count, rationale, created_at
		 FROM decisions WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		rec := DecisionRecord{RunID: runID}
		var rationale, created string
		if err := rows.Scan(&rec.Country, &rec.Recommended, &rec.Label, &rec.Score,
			&rec.EvidenceCount, &rationale, &created); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if err := json.Unmarshal([]byte(rationale), &rec.Rationale); err != nil {
			return nil, fmt.Errorf("unmarshal rationale: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}
// #endregion decisions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
// #endregion helpers
