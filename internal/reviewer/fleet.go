package reviewer

import (
	"context"
	"errors"
	"sync"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/models"
)

// Fleet holds the three default reviewer adapters and fans evaluation
// requests out to them concurrently.
//
// Grounded on the teacher's executor parallel-agent-invocation pattern in
// qc.go (indexed goroutines filling a mutex-guarded slice, joined with a
// WaitGroup).
type Fleet struct {
	adapters []*Adapter
}

// NewFleet constructs the default Codex/Gemini/Qwen fleet from
// configuration.
func NewFleet(cfg *config.Config, log logger.Logger) *Fleet {
	return &Fleet{adapters: []*Adapter{
		NewAdapter("Codex", "syntax", cfg.Executors.Codex, log),
		NewAdapter("Gemini", "architecture", cfg.Executors.Gemini, log),
		NewAdapter("Qwen", "logic", cfg.Executors.Qwen, log),
	}}
}

// Adapters returns all configured adapters, enabled or not.
func (f *Fleet) Adapters() []*Adapter { return f.adapters }

// Evaluate fans req out to every enabled adapter concurrently. A reviewer
// that returns a non-timeout error contributes a neutral Warn/50 vote so
// the fleet stays at full size when a non-fatal error occurs (per spec.md
// §4.H step 4, "A reviewer that returns an error contributes a neutral
// Warn/50 vote"). A timeout is fatal for that reviewer instead: per
// spec.md §4.A, "no fallback vote" is produced, so a timed-out reviewer
// is simply absent from the returned vote map. Disabled reviewers
// contribute no vote at all.
func (f *Fleet) Evaluate(ctx context.Context, req models.EvaluationRequest) map[string]models.ModelVote {
	var wg sync.WaitGroup
	var mu sync.Mutex
	votes := make(map[string]models.ModelVote)

	for _, a := range f.adapters {
		if !a.Enabled() {
			continue
		}
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			vote, err := a.Evaluate(ctx, req)
			if errors.Is(err, ErrTimeout) {
				return
			}
			if err != nil {
				vote = models.ModelVote{
					Reviewer:  a.Name(),
					Vote:      models.VoteWarn,
					Score:     50,
					Reasoning: "reviewer error: " + err.Error(),
				}
			}
			mu.Lock()
			votes[a.Name()] = vote
			mu.Unlock()
		}()
	}
	wg.Wait()
	return votes
}

// ReviewerStatus is one adapter's entry in the report Probe returns, used
// by tetrad_status.
type ReviewerStatus struct {
	Name           string `json:"name"`
	Command        string `json:"command"`
	Specialization string `json:"specialization"`
	Enabled        bool   `json:"enabled"`
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
}

// Probe returns the status of every configured adapter.
func (f *Fleet) Probe(ctx context.Context) []ReviewerStatus {
	statuses := make([]ReviewerStatus, len(f.adapters))
	var wg sync.WaitGroup
	for i, a := range f.adapters {
		i, a := i, a
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := ReviewerStatus{
				Name:           a.Name(),
				Command:        a.Command(),
				Specialization: a.Specialization(),
				Enabled:        a.Enabled(),
			}
			if a.Enabled() {
				if v, err := a.Version(ctx); err == nil {
					s.Available = true
					s.Version = v
				}
			}
			statuses[i] = s
		}()
	}
	wg.Wait()
	return statuses
}
