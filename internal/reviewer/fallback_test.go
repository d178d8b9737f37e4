package reviewer

import (
	"testing"

	"github.com/harrison/tetrad/internal/models"
)

func TestKeywordInferDetectsCriticalAsFail(t *testing.T) {
	v := KeywordInfer("Codex", "This has a critical vulnerability in the auth path.")
	if v.Vote != models.VoteFail {
		t.Fatalf("vote = %q, want fail", v.Vote)
	}
	if v.Score >= 50 {
		t.Fatalf("score = %d, want a low fail-band score", v.Score)
	}
}

func TestKeywordInferDetectsSuggestionAsWarn(t *testing.T) {
	v := KeywordInfer("Gemini", "Minor suggestion: consider renaming this variable.")
	if v.Vote != models.VoteWarn {
		t.Fatalf("vote = %q, want warn", v.Vote)
	}
}

func TestKeywordInferDefaultsToPass(t *testing.T) {
	v := KeywordInfer("Qwen", "This code is excellent and idiomatic.")
	if v.Vote != models.VotePass {
		t.Fatalf("vote = %q, want pass", v.Vote)
	}
	if v.Score != 95 {
		t.Fatalf("score = %d, want 95 for excellent/perfect language", v.Score)
	}
}

func TestKeywordInferExtractsBulletIssues(t *testing.T) {
	raw := "Review:\n- missing nil check\n* unused import\n• no tests\nplain line ignored"
	v := KeywordInfer("Codex", raw)
	if len(v.Issues) != 3 {
		t.Fatalf("issues = %v, want 3 bullet lines extracted", v.Issues)
	}
	if v.Issues[0] != "missing nil check" {
		t.Fatalf("issues[0] = %q", v.Issues[0])
	}
}

func TestKeywordInferTruncatesLongReasoning(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	v := KeywordInfer("Codex", string(long))
	if len(v.Reasoning) != 500 {
		t.Fatalf("reasoning length = %d, want truncated to 500", len(v.Reasoning))
	}
}

func TestKeywordInferPortugueseMarkersMatch(t *testing.T) {
	v := KeywordInfer("Qwen", "Foi encontrada uma vulnerabilidade crítica neste código.")
	if v.Vote != models.VoteFail {
		t.Fatalf("vote = %q, want fail for Portuguese critical-vulnerability marker", v.Vote)
	}
}
