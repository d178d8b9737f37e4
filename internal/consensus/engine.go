package consensus

import (
	"time"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/models"
)

// Engine owns a ConsensusConfig and the active voting Rule, and turns a
// vote map into a fully-rendered EvaluationResult.
type Engine struct {
	rule     Rule
	minScore int
	maxLoops int
}

// NewEngine constructs an Engine from configuration.
func NewEngine(cfg config.ConsensusConfig) *Engine {
	return &Engine{
		rule:     NewRule(cfg.DefaultRule),
		minScore: int(cfg.MinScore),
		maxLoops: int(cfg.MaxLoops),
	}
}

// RuleName reports the active rule's name.
func (e *Engine) RuleName() string { return e.rule.Name() }

// MinScore reports the configured pass threshold.
func (e *Engine) MinScore() int { return e.minScore }

// MaxLoops reports the configured retry budget.
func (e *Engine) MaxLoops() int { return e.maxLoops }

// Decide applies the active Rule to votes and renders a complete
// EvaluationResult for requestID.
func (e *Engine) Decide(requestID string, votes map[string]models.ModelVote) models.EvaluationResult {
	decision := e.rule.Evaluate(votes, e.minScore)
	achieved := e.rule.IsConsensusAchieved(votes, e.minScore)
	score := AggregateScore(votes)
	findings := ConsolidateFindings(votes)

	return models.EvaluationResult{
		RequestID:         requestID,
		Decision:          decision,
		Score:             score,
		ConsensusAchieved: achieved,
		Votes:             votes,
		Findings:          findings,
		Feedback:          RenderFeedback(decision, votes),
		Timestamp:         time.Now(),
	}
}

// CanRetry reports whether currentLoop is within e's retry budget.
func (e *Engine) CanRetry(currentLoop int) bool {
	return CanRetry(currentLoop, e.maxLoops)
}
