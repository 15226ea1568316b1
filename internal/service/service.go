// Package service is the top-level coordinator: it assembles a chain,
// hosts the run with its single retry and keeps the run log in step.
package service

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/runlog"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/stages"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #endregion

// ErrUnknownChain is returned for a chain name other than insights or report.
var ErrUnknownChain = errors.New("unknown chain")

// #region service-struct

// Service runs the insight and report chains against one set of
// collaborators. It is safe for concurrent use.
type Service struct {
	deps     stages.Deps
	store    *runlog.Store
	logger   *zap.Logger
	pipeOpts []pipeline.Option
}

// Option configures a Service.
type Option func(*Service)

// WithStore records runs, stage executions and decisions in store.
func WithStore(store *runlog.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithLogger sets the logger. The service logs under the "service" name.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPipelineOptions forwards options to every orchestrator the service builds.
func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(s *Service) { s.pipeOpts = append(s.pipeOpts, opts...) }
}

// #endregion

// #region constructor

// New creates a service over deps.
func New(deps stages.Deps, opts ...Option) *Service {
	s := &Service{deps: deps, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.deps.Logger == nil {
		s.deps.Logger = s.logger
	}
	s.logger = s.logger.Named("service")
	return s
}

// Chains lists the chain names Run accepts.
func Chains() []string {
	return []string{stages.InsightChainName, stages.ReportChainName}
}

// #endregion

// #region run

// Outcome is the result of one hosted run.
type Outcome struct {
	RunID string
	Chain string
	Phase pipeline.RetryPhase
	State state.State
}

// Retried reports whether the evidence retry ran.
func (o Outcome) Retried() bool { return o.Phase == pipeline.PhaseRetried }

// Run executes the named chain from seed. Observers are attached to this
// run only. When a store is configured the run is bracketed by
// BeginRun/FinishRun and its decisions are recorded; run log failures are
// logged and never fail the run.
func (s *Service) Run(ctx context.Context, chain string, seed state.State, observers ...pipeline.Observer) (Outcome, error) {
	host, err := s.host(chain, observers)
	if err != nil {
		return Outcome{Chain: chain, State: seed}, err
	}

	out := Outcome{Chain: chain}
	if s.store != nil {
		id, err := s.store.BeginRun(context.WithoutCancel(ctx), runlog.RunRecord{
			Chain:     chain,
			Countries: seed.Countries,
			Segment:   seed.Segment,
		})
		if err != nil {
			s.logger.Warn("begin run", zap.String("chain", chain), zap.Error(err))
		} else {
			out.RunID = id
			ctx = pipeline.WithRunID(ctx, id)
		}
	}

	s.logger.Info("run started",
		zap.String("chain", chain),
		zap.String("run_id", out.RunID),
		zap.Strings("countries", seed.Countries),
		zap.String("segment", seed.Segment),
	)
	res, runErr := host.Run(ctx, seed)
	out.State, out.Phase = res.State, res.Phase
	s.finish(context.WithoutCancel(ctx), out, runErr)
	return out, runErr
}

func (s *Service) host(chain string, observers []pipeline.Observer) (*pipeline.Host, error) {
	var (
		chainStages []pipeline.Stage
		resumeAfter string
	)
	switch chain {
	case stages.InsightChainName:
		chainStages = stages.InsightChain(s.deps)
	case stages.ReportChainName:
		chainStages = stages.ReportChain(s.deps)
		resumeAfter = stages.DecisionRouter
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChain, chain)
	}

	opts := []pipeline.Option{pipeline.WithLogger(s.deps.Logger)}
	if s.store != nil {
		opts = append(opts, pipeline.WithRecorder(s.store))
	}
	opts = append(opts, s.pipeOpts...)
	for _, obs := range observers {
		opts = append(opts, pipeline.WithObserver(obs))
	}
	return pipeline.NewHost(pipeline.New(chain, chainStages, opts...), resumeAfter, s.deps.Logger), nil
}

// #endregion

// #region record-final-outcome

func (s *Service) finish(ctx context.Context, out Outcome, runErr error) {
	fields := []zap.Field{
		zap.String("chain", out.Chain),
		zap.String("run_id", out.RunID),
		zap.String("phase", out.Phase.String()),
	}
	if runErr != nil {
		s.logger.Error("run failed", append(fields, zap.Error(runErr))...)
	} else {
		s.logger.Info("run finished", fields...)
	}
	if s.store == nil || out.RunID == "" {
		return
	}

	status, msg := runlog.StatusOK, ""
	if runErr != nil {
		status, msg = runlog.StatusError, runErr.Error()
	}
	if err := s.store.FinishRun(ctx, out.RunID, status, out.Retried(), msg); err != nil {
		s.logger.Warn("finish run", append(fields, zap.Error(err))...)
	}
	if recs := DecisionRecords(out.RunID, out.State); len(recs) > 0 {
		if err := s.store.RecordDecisions(ctx, recs); err != nil {
			s.logger.Warn("record decisions", append(fields, zap.Error(err))...)
		}
	}
}

// DecisionRecords flattens the decisions on st into run log rows, in
// country order. Countries missing from st.Countries follow in name order.
func DecisionRecords(runID string, st state.State) []runlog.DecisionRecord {
	if len(st.Decision) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(st.Decision))
	order := make([]string, 0, len(st.Decision))
	for _, c := range st.Countries {
		if _, ok := st.Decision[c]; ok && !seen[c] {
			seen[c] = true
			order = append(order, c)
		}
	}
	var rest []string
	for c := range st.Decision {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	recs := make([]runlog.DecisionRecord, 0, len(order))
	for _, c := range order {
		d := st.Decision[c]
		recs = append(recs, runlog.DecisionRecord{
			RunID:         runID,
			Country:       c,
			Recommended:   string(d.Recommended),
			Label:         d.RecommendedLabel,
			Score:         d.Score,
			EvidenceCount: len(st.Market[c].Evidence),
			Rationale:     d.Rationale,
		})
	}
	return recs
}

// #endregion
