package pipeline

// #region imports
import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/runlog"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #endregion

// ErrUnknownStage is returned by RunFrom for a name not in the chain.
var ErrUnknownStage = errors.New("unknown stage")

// #region stage

// StageFunc reads the current state and returns a partial update. It must
// not mutate st.
type StageFunc func(ctx context.Context, st state.State) (state.Update, error)

// Stage is a named step of a chain.
type Stage struct {
	Name string
	Run  StageFunc
}

// #endregion

// #region observer

// Observer is notified around every stage execution. Callbacks run on the
// orchestrator goroutine and must not block.
type Observer interface {
	StageStarted(name string, st state.State)
	StageFinished(name string, st state.State, u state.Update, elapsed time.Duration, err error)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Started  func(name string, st state.State)
	Finished func(name string, st state.State, u state.Update, elapsed time.Duration, err error)
}

func (o ObserverFuncs) StageStarted(name string, st state.State) {
	if o.Started != nil {
		o.Started(name, st)
	}
}

func (o ObserverFuncs) StageFinished(name string, st state.State, u state.Update, elapsed time.Duration, err error) {
	if o.Finished != nil {
		o.Finished(name, st, u, elapsed, err)
	}
}

// #endregion

// #region recorder

// Recorder persists stage executions. runlog.Store satisfies it.
type Recorder interface {
	RecordStage(ctx context.Context, rec runlog.StageRecord) error
}

// #endregion

// #region run-context

type runIDKey struct{}
type passKey struct{}

// WithRunID tags ctx with the run ID written to the recorder.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run ID on ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func withPass(ctx context.Context, pass int) context.Context {
	return context.WithValue(ctx, passKey{}, pass)
}

// Pass returns 1 on the initial pass and 2 on the retried pass.
func Pass(ctx context.Context) int {
	if p, ok := ctx.Value(passKey{}).(int); ok {
		return p
	}
	return 1
}

// #endregion
