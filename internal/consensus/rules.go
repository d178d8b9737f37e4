// Package consensus implements the three voting rules, score aggregation,
// finding consolidation, feedback rendering, and confidence scoring.
//
// Grounded on the teacher's internal/executor.QualityController.
// aggregateVerdicts strictest-wins pattern, adapted here into
// Pass>Warn>Fail finding aggregation, and on the Rust reference's
// consensus/rules.rs for the exact per-rule vote math.
package consensus

import (
	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/models"
)

// Rule is the capability set spec.md §9 calls a polymorphic voting rule.
// Implemented as tagged variants per spec.md's design note — no virtual
// dispatch machinery beyond a plain interface is required.
type Rule interface {
	Name() string
	MinRequired() int
	Evaluate(votes map[string]models.ModelVote, minScore int) models.Decision
	IsConsensusAchieved(votes map[string]models.ModelVote, minScore int) bool
}

// NewRule constructs the Rule named by cfg.
func NewRule(name config.ConsensusRuleName) Rule {
	switch name {
	case config.RuleGolden:
		return GoldenRule{}
	case config.RuleWeak:
		return WeakRule{}
	default:
		return StrongRule{}
	}
}

func meanScore(votes []models.ModelVote) int {
	if len(votes) == 0 {
		return 0
	}
	total := 0
	for _, v := range votes {
		total += v.Score
	}
	return total / len(votes)
}

func countVote(votes map[string]models.ModelVote, vote models.Vote) int {
	n := 0
	for _, v := range votes {
		if v.Vote == vote {
			n++
		}
	}
	return n
}

func valuesOf(votes map[string]models.ModelVote) []models.ModelVote {
	out := make([]models.ModelVote, 0, len(votes))
	for _, v := range votes {
		out = append(out, v)
	}
	return out
}

// GoldenRule requires unanimity: all reviewers Pass with score >= minScore.
type GoldenRule struct{}

func (GoldenRule) Name() string     { return "golden" }
func (GoldenRule) MinRequired() int { return 3 }

func (r GoldenRule) Evaluate(votes map[string]models.ModelVote, minScore int) models.Decision {
	if len(votes) < r.MinRequired() {
		return models.DecisionRevise
	}
	allPass := true
	anyFail := false
	for _, v := range votes {
		if v.Vote != models.VotePass || v.Score < minScore {
			allPass = false
		}
		if v.Vote == models.VoteFail {
			anyFail = true
		}
	}
	switch {
	case allPass:
		return models.DecisionPass
	case anyFail:
		return models.DecisionBlock
	default:
		return models.DecisionRevise
	}
}

func (r GoldenRule) IsConsensusAchieved(votes map[string]models.ModelVote, minScore int) bool {
	if len(votes) < r.MinRequired() {
		return false
	}
	return r.Evaluate(votes, minScore) == models.DecisionPass
}

// StrongRule requires all three reviewers to agree (3/3 Pass or 3/3 Fail).
type StrongRule struct{}

func (StrongRule) Name() string     { return "strong" }
func (StrongRule) MinRequired() int { return 3 }

func (r StrongRule) Evaluate(votes map[string]models.ModelVote, minScore int) models.Decision {
	if len(votes) < r.MinRequired() {
		return models.DecisionRevise
	}
	passCount := countVote(votes, models.VotePass)
	failCount := countVote(votes, models.VoteFail)
	avg := meanScore(valuesOf(votes))

	if passCount == r.MinRequired() && avg >= minScore {
		return models.DecisionPass
	}
	if failCount == r.MinRequired() {
		return models.DecisionBlock
	}
	return models.DecisionRevise
}

func (r StrongRule) IsConsensusAchieved(votes map[string]models.ModelVote, minScore int) bool {
	if len(votes) < r.MinRequired() {
		return false
	}
	d := r.Evaluate(votes, minScore)
	return d == models.DecisionPass || d == models.DecisionBlock
}

// WeakRule requires a simple 2+ majority.
type WeakRule struct{}

func (WeakRule) Name() string     { return "weak" }
func (WeakRule) MinRequired() int { return 2 }

func (r WeakRule) Evaluate(votes map[string]models.ModelVote, minScore int) models.Decision {
	if len(votes) == 0 {
		return models.DecisionBlock
	}
	var passVotes []models.ModelVote
	for _, v := range votes {
		if v.Vote == models.VotePass {
			passVotes = append(passVotes, v)
		}
	}
	failCount := countVote(votes, models.VoteFail)

	if len(passVotes) >= 2 {
		if meanScore(passVotes) >= minScore {
			return models.DecisionPass
		}
	}
	if failCount >= 2 {
		return models.DecisionBlock
	}
	return models.DecisionRevise
}

func (r WeakRule) IsConsensusAchieved(votes map[string]models.ModelVote, minScore int) bool {
	if len(votes) < r.MinRequired() {
		return false
	}
	d := r.Evaluate(votes, minScore)
	return d == models.DecisionPass || d == models.DecisionBlock
}
