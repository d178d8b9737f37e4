package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/models"
)

func votesOf(decisions ...models.Vote) map[string]models.ModelVote {
	names := []string{"Codex", "Gemini", "Qwen"}
	votes := make(map[string]models.ModelVote, len(decisions))
	for i, v := range decisions {
		score := 80
		if v == models.VoteFail {
			score = 20
		}
		votes[names[i]] = models.ModelVote{Reviewer: names[i], Vote: v, Score: score}
	}
	return votes
}

func TestNewRule(t *testing.T) {
	assert.Equal(t, "golden", NewRule(config.RuleGolden).Name())
	assert.Equal(t, "strong", NewRule(config.RuleStrong).Name())
	assert.Equal(t, "weak", NewRule(config.RuleWeak).Name())
	assert.Equal(t, "strong", NewRule("unknown").Name(), "unrecognized rule names fall back to strong")
}

func TestGoldenRuleRequiresUnanimity(t *testing.T) {
	r := GoldenRule{}

	allPass := votesOf(models.VotePass, models.VotePass, models.VotePass)
	assert.Equal(t, models.DecisionPass, r.Evaluate(allPass, 70))
	assert.True(t, r.IsConsensusAchieved(allPass, 70))

	oneFail := votesOf(models.VotePass, models.VotePass, models.VoteFail)
	assert.Equal(t, models.DecisionBlock, r.Evaluate(oneFail, 70))

	oneWarn := votesOf(models.VotePass, models.VotePass, models.VoteWarn)
	assert.Equal(t, models.DecisionRevise, r.Evaluate(oneWarn, 70))

	tooFewVotes := votesOf(models.VotePass, models.VotePass)
	assert.Equal(t, models.DecisionRevise, r.Evaluate(tooFewVotes, 70))
	assert.False(t, r.IsConsensusAchieved(tooFewVotes, 70))
}

func TestStrongRuleRequiresFullAgreement(t *testing.T) {
	r := StrongRule{}

	allPass := votesOf(models.VotePass, models.VotePass, models.VotePass)
	assert.Equal(t, models.DecisionPass, r.Evaluate(allPass, 70))

	allFail := votesOf(models.VoteFail, models.VoteFail, models.VoteFail)
	assert.Equal(t, models.DecisionBlock, r.Evaluate(allFail, 70))
	assert.True(t, r.IsConsensusAchieved(allFail, 70))

	split := votesOf(models.VotePass, models.VoteFail, models.VoteWarn)
	assert.Equal(t, models.DecisionRevise, r.Evaluate(split, 70))
	assert.False(t, r.IsConsensusAchieved(split, 70))
}

func TestWeakRuleMajorityAndTieBreak(t *testing.T) {
	r := WeakRule{}

	twoPass := votesOf(models.VotePass, models.VotePass, models.VoteFail)
	assert.Equal(t, models.DecisionPass, r.Evaluate(twoPass, 70))

	twoFail := votesOf(models.VoteFail, models.VoteFail, models.VotePass)
	assert.Equal(t, models.DecisionBlock, r.Evaluate(twoFail, 70))

	// A 1-1-1 split has no 2+ majority in either direction; per the Rust
	// reference this ties to Revise, never Block.
	tied := votesOf(models.VotePass, models.VoteFail, models.VoteWarn)
	assert.Equal(t, models.DecisionRevise, r.Evaluate(tied, 70))
}

func TestWeakRuleLowScorePassDoesNotPass(t *testing.T) {
	r := WeakRule{}
	votes := map[string]models.ModelVote{
		"Codex":  {Reviewer: "Codex", Vote: models.VotePass, Score: 40},
		"Gemini": {Reviewer: "Gemini", Vote: models.VotePass, Score: 40},
		"Qwen":   {Reviewer: "Qwen", Vote: models.VoteWarn, Score: 50},
	}
	require.Equal(t, models.DecisionRevise, r.Evaluate(votes, 70), "pass-majority below min_score must not pass")
}

// TestRuleMonotonicity is the consensus Testable Property from spec.md §8:
// raising every vote's score can never turn a Pass into a Revise/Block for
// any rule.
func TestRuleMonotonicity(t *testing.T) {
	rules := []Rule{GoldenRule{}, StrongRule{}, WeakRule{}}
	low := votesOf(models.VotePass, models.VotePass, models.VotePass)
	high := map[string]models.ModelVote{}
	for k, v := range low {
		v.Score = 100
		high[k] = v
	}
	for _, r := range rules {
		before := r.Evaluate(low, 70)
		after := r.Evaluate(high, 70)
		if before == models.DecisionPass {
			assert.Equal(t, models.DecisionPass, after, "%s: raising scores flipped a Pass", r.Name())
		}
	}
}
