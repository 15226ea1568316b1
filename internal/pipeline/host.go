package pipeline

// #region imports
import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #endregion

// #region phase

// RetryPhase is the host's position in the single-retry state machine.
type RetryPhase int

const (
	PhaseInitial RetryPhase = iota
	PhaseRetried
)

func (p RetryPhase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseRetried:
		return "retried"
	default:
		return fmt.Sprintf("RetryPhase(%d)", int(p))
	}
}

// #endregion

// #region host

// Host drives a chain and performs at most one evidence-driven retry.
type Host struct {
	orch        *Orchestrator
	resumeAfter string
	logger      *zap.Logger
}

// NewHost wraps orch. After a retried pass over the narrowed country list
// the host restores the original countries and re-runs the stages after
// resumeAfter, so hand-off stages cover every country. An empty
// resumeAfter skips that step.
func NewHost(orch *Orchestrator, resumeAfter string, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{orch: orch, resumeAfter: resumeAfter, logger: logger.Named("host")}
}

// Result is the outcome of a hosted run.
type Result struct {
	State state.State
	Phase RetryPhase
}

// Run executes the chain once and, when the finished state signals an
// evidence shortfall, exactly once more over the short countries.
func (h *Host) Run(ctx context.Context, seed state.State) (Result, error) {
	res := Result{Phase: PhaseInitial}

	st, err := h.orch.Run(withPass(ctx, 1), seed)
	res.State = st
	if err != nil {
		return res, err
	}
	if !shouldRetry(res.Phase, st) {
		return res, nil
	}

	// Initial -> Retried is the only transition.
	res.Phase = PhaseRetried
	original := append([]string(nil), st.Countries...)
	narrowed := append([]string(nil), st.Retry.Countries...)
	h.logger.Info("evidence shortfall, retrying",
		zap.String("chain", h.orch.Name()),
		zap.Strings("retry_countries", narrowed),
		zap.String("run_id", RunID(ctx)),
	)

	retry := st
	retry.RetryPerformed = true
	retry.Retry = state.RetrySignal{}
	retry.Countries = narrowed

	ctx = withPass(ctx, 2)
	st, err = h.orch.Run(ctx, retry)
	st.Countries = original
	res.State = st
	if err != nil {
		return res, err
	}

	if next, ok := h.orch.Next(h.resumeAfter); ok {
		st, err = h.orch.RunFrom(ctx, st, next)
		res.State = st
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func shouldRetry(phase RetryPhase, st state.State) bool {
	return phase == PhaseInitial && !st.RetryPerformed && st.Retry.Trigger && len(st.Retry.Countries) > 0
}

// #endregion
