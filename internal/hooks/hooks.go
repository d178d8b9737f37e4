// Package hooks implements the Hook Pipeline (Component G): four ordered
// extension-point lists with a Continue/Skip/ModifyRequest contract.
//
// Grounded on the teacher's internal/executor hook family
// (architecture_hook.go et al.: struct + constructor + CheckTask method).
// Deliberately diverges from that file's graceful-degradation-swallows-
// errors behavior: per spec.md §4.G/§7, hook errors must propagate and
// fail the evaluation, so Pipeline does not wrap hook errors in a
// warn-log-and-continue the way ArchitectureCheckpointHook.CheckTask does.
package hooks

import (
	"context"

	"github.com/harrison/tetrad/internal/models"
)

// Event identifies which extension point a Hook handles.
type Event string

const (
	EventPreEvaluate  Event = "pre_evaluate"
	EventPostEvaluate Event = "post_evaluate"
	EventOnConsensus  Event = "on_consensus"
	EventOnBlock      Event = "on_block"
)

// Outcome is a PreEvaluate hook's verdict. Non-PreEvaluate hooks may
// return any Outcome but only their error, never their outcome, is
// honored — per spec.md §9's "ignore ModifyRequest on other events rather
// than encoding it in the type" design note.
type Outcome int

const (
	Continue Outcome = iota
	Skip
	ModifyRequest
)

// Context carries the evaluation state visible to a hook.
type Context struct {
	Request models.EvaluationRequest
	Result  *models.EvaluationResult // nil for PreEvaluate
}

// Result is what a Hook's Execute returns.
type Result struct {
	Outcome    Outcome
	NewRequest models.EvaluationRequest // valid iff Outcome == ModifyRequest
}

// Hook is one extension point implementation.
type Hook interface {
	Name() string
	Event() Event
	Execute(ctx context.Context, hc Context) (Result, error)
}

// Pipeline holds the four ordered hook lists.
type Pipeline struct {
	hooks map[Event][]Hook
}

// NewPipeline constructs an empty Pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{hooks: make(map[Event][]Hook)}
}

// Register appends h to its event's ordered list.
func (p *Pipeline) Register(h Hook) {
	p.hooks[h.Event()] = append(p.hooks[h.Event()], h)
}

// PreEvaluateOutcome is what RunPreEvaluate reports to the caller.
type PreEvaluateOutcome struct {
	Outcome    Outcome
	NewRequest models.EvaluationRequest
	HookName   string
}

// RunPreEvaluate iterates PreEvaluate hooks in registration order; the
// first non-Continue result short-circuits the rest.
func (p *Pipeline) RunPreEvaluate(ctx context.Context, req models.EvaluationRequest) (PreEvaluateOutcome, error) {
	for _, h := range p.hooks[EventPreEvaluate] {
		res, err := h.Execute(ctx, Context{Request: req})
		if err != nil {
			return PreEvaluateOutcome{}, err
		}
		if res.Outcome != Continue {
			return PreEvaluateOutcome{Outcome: res.Outcome, NewRequest: res.NewRequest, HookName: h.Name()}, nil
		}
	}
	return PreEvaluateOutcome{Outcome: Continue}, nil
}

// RunPostEvaluate runs every PostEvaluate hook in order; return values
// beyond error are ignored.
func (p *Pipeline) RunPostEvaluate(ctx context.Context, req models.EvaluationRequest, result models.EvaluationResult) error {
	return p.runIgnoringOutcome(ctx, EventPostEvaluate, req, result)
}

// RunOnConsensus runs every OnConsensus hook in order.
func (p *Pipeline) RunOnConsensus(ctx context.Context, req models.EvaluationRequest, result models.EvaluationResult) error {
	return p.runIgnoringOutcome(ctx, EventOnConsensus, req, result)
}

// RunOnBlock runs every OnBlock hook in order.
func (p *Pipeline) RunOnBlock(ctx context.Context, req models.EvaluationRequest, result models.EvaluationResult) error {
	return p.runIgnoringOutcome(ctx, EventOnBlock, req, result)
}

func (p *Pipeline) runIgnoringOutcome(ctx context.Context, event Event, req models.EvaluationRequest, result models.EvaluationResult) error {
	for _, h := range p.hooks[event] {
		if _, err := h.Execute(ctx, Context{Request: req, Result: &result}); err != nil {
			return err
		}
	}
	return nil
}
