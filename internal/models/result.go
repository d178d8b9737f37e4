package models

import "time"

// Decision is the outcome of applying a consensus rule to a set of votes.
type Decision string

const (
	DecisionPass   Decision = "pass"
	DecisionRevise Decision = "revise"
	DecisionBlock  Decision = "block"
)

// EvaluationResult is the consolidated outcome of one evaluation.
type EvaluationResult struct {
	RequestID         string               `json:"request_id"`
	Decision          Decision             `json:"decision"`
	Score             int                  `json:"score"`
	ConsensusAchieved bool                 `json:"consensus_achieved"`
	Votes             map[string]ModelVote `json:"votes"`
	Findings          []Finding            `json:"findings"`
	Feedback          string               `json:"feedback"`
	Timestamp         time.Time            `json:"timestamp"`
}

// ShouldBlockImmediately reports whether any Finding is Critical severity.
func (r EvaluationResult) ShouldBlockImmediately() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
