package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/kgcontent-backend/internal/pkg/ctxutil"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

const tracerName = "github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"

// ErrPhaseOrder is returned when a validator or resolver is ordered after a
// step that writes.
var ErrPhaseOrder = errors.New("pipeline: read-only step ordered after a write step")

// Recorder receives step and run outcomes. observability.Metrics implements it.
type Recorder interface {
	ObserveStep(operation, step, outcome string, dur time.Duration)
	ObserveRun(operation, outcome string)
}

type Options struct {
	Log      *logger.Logger
	Recorder Recorder
	// Order optionally overrides the step order by name. An order that does
	// not name exactly the given steps, or that breaks phase ordering, is
	// ignored with a warning.
	Order []string
}

type Pipeline[C, S any] struct {
	operation string
	steps     []Step[C, S]
	log       *logger.Logger
	rec       Recorder
	tracer    trace.Tracer
}

func New[C, S any](operation string, steps []Step[C, S], opts Options) (*Pipeline[C, S], error) {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		return nil, errors.New("pipeline: operation name required")
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	seen := make(map[string]bool, len(steps))
	for i, st := range steps {
		if strings.TrimSpace(st.Name) == "" {
			return nil, fmt.Errorf("pipeline %s: step %d has no name", operation, i)
		}
		if seen[st.Name] {
			return nil, fmt.Errorf("pipeline %s: duplicate step %q", operation, st.Name)
		}
		seen[st.Name] = true
		if !st.Kind.Valid() {
			return nil, fmt.Errorf("pipeline %s: step %q has invalid kind %q", operation, st.Name, st.Kind)
		}
		if st.Action == nil {
			return nil, fmt.Errorf("pipeline %s: step %q has no action", operation, st.Name)
		}
	}
	if err := checkPhases(steps); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", operation, err)
	}

	ordered := append([]Step[C, S](nil), steps...)
	if len(opts.Order) > 0 {
		reordered, err := reorder(steps, opts.Order)
		if err != nil {
			log.Warn("pipeline order override rejected; using default order", "operation", operation, "error", err)
		} else {
			ordered = reordered
		}
	}

	return &Pipeline[C, S]{
		operation: operation,
		steps:     ordered,
		log:       log.With("pipeline", operation),
		rec:       opts.Recorder,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

func (p *Pipeline[C, S]) Operation() string { return p.operation }

func (p *Pipeline[C, S]) StepNames() []string {
	out := make([]string, 0, len(p.steps))
	for _, st := range p.steps {
		out = append(out, st.Name)
	}
	return out
}

// Run feeds initial through every step in order. The first failing step
// aborts the run; its error is returned as is together with the zero state.
func (p *Pipeline[C, S]) Run(ctx context.Context, cmd C, initial S) (S, error) {
	ctx = ctxutil.Default(ctx)
	var zero S
	runStart := time.Now()
	state := initial
	for _, st := range p.steps {
		if err := ctx.Err(); err != nil {
			p.observeRun("canceled")
			return zero, err
		}
		next, err := p.runStep(ctx, st, cmd, state)
		if err != nil {
			p.log.Warn("pipeline step failed",
				"step", st.Name,
				"kind", string(st.Kind),
				"error", err,
			)
			p.observeRun("error")
			return zero, err
		}
		state = next
	}
	p.log.Debug("pipeline completed", "steps", len(p.steps), "duration_ms", time.Since(runStart).Milliseconds())
	p.observeRun("success")
	return state, nil
}

func (p *Pipeline[C, S]) runStep(ctx context.Context, st Step[C, S], cmd C, state S) (S, error) {
	ctx, span := p.tracer.Start(ctx, p.operation+"/"+st.Name, trace.WithAttributes(
		attribute.String("pipeline.operation", p.operation),
		attribute.String("pipeline.step", st.Name),
		attribute.String("pipeline.step_kind", string(st.Kind)),
	))
	defer span.End()

	start := time.Now()
	next, err := st.Action.Invoke(ctx, cmd, state)
	dur := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if p.rec != nil {
		p.rec.ObserveStep(p.operation, st.Name, outcome, dur)
	}
	p.log.Debug("pipeline step", "step", st.Name, "kind", string(st.Kind), "outcome", outcome, "duration_ms", dur.Milliseconds())
	return next, err
}

func (p *Pipeline[C, S]) observeRun(outcome string) {
	if p.rec != nil {
		p.rec.ObserveRun(p.operation, outcome)
	}
}

func checkPhases[C, S any](steps []Step[C, S]) error {
	writing := ""
	for _, st := range steps {
		if st.Kind.Writes() {
			if writing == "" {
				writing = st.Name
			}
			continue
		}
		if writing != "" {
			return fmt.Errorf("%w: %q runs after %q", ErrPhaseOrder, st.Name, writing)
		}
	}
	return nil
}

func reorder[C, S any](steps []Step[C, S], order []string) ([]Step[C, S], error) {
	byName := make(map[string]Step[C, S], len(steps))
	for _, st := range steps {
		byName[st.Name] = st
	}
	if len(order) != len(steps) {
		return nil, fmt.Errorf("order names %d steps, pipeline has %d", len(order), len(steps))
	}
	used := make(map[string]bool, len(order))
	out := make([]Step[C, S], 0, len(order))
	for _, raw := range order {
		name := strings.TrimSpace(raw)
		st, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown step %q", name)
		}
		if used[name] {
			return nil, fmt.Errorf("duplicate step %q", name)
		}
		used[name] = true
		out = append(out, st)
	}
	if err := checkPhases(out); err != nil {
		return nil, err
	}
	return out, nil
}
