package pipeline

// #region imports
import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/runlog"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #endregion

const instrumentationName = "github.com/danielpatrickdp/entry-scout/go-controller/internal/pipeline"

// #region orchestrator-struct

// Orchestrator runs a linear chain of stages over the state record,
// merging each stage's update before the next one starts.
type Orchestrator struct {
	name      string
	stages    []Stage
	index     map[string]int
	logger    *zap.Logger
	observers []Observer
	recorder  Recorder
	tracer    trace.Tracer
	duration  metric.Float64Histogram
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The orchestrator logs under the "pipeline" name.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver adds an observer notified around every stage.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithRecorder persists each stage execution.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithMeter overrides the global meter used for the stage duration histogram.
func WithMeter(m metric.Meter) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.duration = newDurationHistogram(m, o.logger)
		}
	}
}

// #endregion

// #region constructor

// New creates an orchestrator for the named chain. Stage names must be
// unique; New panics otherwise since chains are assembled at startup.
func New(name string, stages []Stage, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		name:   name,
		stages: append([]Stage(nil), stages...),
		index:  make(map[string]int, len(stages)),
		logger: zap.NewNop(),
		tracer: otel.Tracer(instrumentationName),
	}
	for i, s := range o.stages {
		if _, dup := o.index[s.Name]; dup {
			panic(fmt.Sprintf("pipeline %s: duplicate stage %q", name, s.Name))
		}
		o.index[s.Name] = i
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("pipeline")
	if o.duration == nil {
		o.duration = newDurationHistogram(otel.GetMeterProvider().Meter(instrumentationName), o.logger)
	}
	return o
}

func newDurationHistogram(m metric.Meter, logger *zap.Logger) metric.Float64Histogram {
	h, err := m.Float64Histogram(
		"pipeline.stage.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Elapsed wall time of a pipeline stage"),
	)
	if err != nil {
		logger.Warn("pipeline: unable to register stage duration metric", zap.Error(err))
		return nil
	}
	return h
}

// Name returns the chain name.
func (o *Orchestrator) Name() string { return o.name }

// StageNames lists the stages in execution order.
func (o *Orchestrator) StageNames() []string {
	names := make([]string, len(o.stages))
	for i, s := range o.stages {
		names[i] = s.Name
	}
	return names
}

// Next returns the name of the stage following name.
func (o *Orchestrator) Next(name string) (string, bool) {
	i, ok := o.index[name]
	if !ok || i+1 >= len(o.stages) {
		return "", false
	}
	return o.stages[i+1].Name, true
}

// #endregion

// #region run

// Run executes every stage in order starting from seed and returns the
// final merged state. On a stage error the state merged so far is returned
// together with the wrapped error.
func (o *Orchestrator) Run(ctx context.Context, seed state.State) (state.State, error) {
	return o.run(ctx, seed, 0)
}

// RunFrom executes the suffix of the chain starting at the named stage.
func (o *Orchestrator) RunFrom(ctx context.Context, st state.State, name string) (state.State, error) {
	i, ok := o.index[name]
	if !ok {
		return st, fmt.Errorf("pipeline %s: %w: %q", o.name, ErrUnknownStage, name)
	}
	return o.run(ctx, st, i)
}

func (o *Orchestrator) run(ctx context.Context, st state.State, start int) (state.State, error) {
	for _, stage := range o.stages[start:] {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		next, err := o.runStage(ctx, stage, st)
		if err != nil {
			return st, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		st = next
	}
	return st, nil
}

func (o *Orchestrator) runStage(ctx context.Context, stage Stage, st state.State) (state.State, error) {
	pass := Pass(ctx)
	runID := RunID(ctx)
	inKeys := st.Keys()

	for _, obs := range o.observers {
		obs.StageStarted(stage.Name, st)
	}

	ctx, span := o.tracer.Start(ctx, "stage "+stage.Name, trace.WithAttributes(
		attribute.String("pipeline.name", o.name),
		attribute.String("pipeline.stage", stage.Name),
		attribute.Int("pipeline.pass", pass),
	))
	started := time.Now()
	u, err := stage.Run(ctx, st)
	elapsed := time.Since(started)
	if o.duration != nil {
		o.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(
			attribute.String("pipeline.stage", stage.Name),
			attribute.Bool("error", err != nil),
		))
	}

	fields := []zap.Field{
		zap.String("chain", o.name),
		zap.String("stage", stage.Name),
		zap.Int("pass", pass),
		zap.Time("started_at", started),
		zap.Duration("elapsed", elapsed),
		zap.Strings("input_keys", inKeys),
	}
	if runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}

	rec := runlog.StageRecord{
		RunID:     runID,
		Stage:     stage.Name,
		Pass:      pass,
		StartedAt: started,
		Elapsed:   elapsed,
		InputKeys: inKeys,
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		o.logger.Error("stage failed", append(fields, zap.Error(err))...)
		rec.Status, rec.Error = runlog.StatusError, err.Error()
		o.record(ctx, rec)
		for _, obs := range o.observers {
			obs.StageFinished(stage.Name, st, state.Update{}, elapsed, err)
		}
		return st, err
	}
	span.End()

	outKeys := u.Keys()
	merged := state.Merge(st, u)

	o.logger.Info("stage finished", append(fields, zap.Strings("output_keys", outKeys))...)
	rec.Status, rec.OutputKeys = runlog.StatusOK, outKeys
	o.record(ctx, rec)
	for _, obs := range o.observers {
		obs.StageFinished(stage.Name, merged, u, elapsed, nil)
	}
	return merged, nil
}

// record writes to the recorder only when the run has an ID. Failures are
// logged and never change the outcome of the stage.
func (o *Orchestrator) record(ctx context.Context, rec runlog.StageRecord) {
	if o.recorder == nil || rec.RunID == "" {
		return
	}
	if err := o.recorder.RecordStage(context.WithoutCancel(ctx), rec); err != nil {
		o.logger.Warn("record stage", zap.String("stage", rec.Stage), zap.Error(err))
	}
}

// #endregion
