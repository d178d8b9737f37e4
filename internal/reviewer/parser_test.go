package reviewer

import (
	"encoding/json"
	"testing"
)

func TestStripFencesExtractsInnerContent(t *testing.T) {
	raw := "some preamble\n```json\n{\"vote\":\"pass\",\"score\":90}\n```\ntrailer"
	got := StripFences(raw)
	if got == raw {
		t.Fatal("StripFences should remove fence markers")
	}
	if _, ok := FindBalancedJSON(got); !ok {
		t.Fatalf("expected a balanced JSON object inside stripped text, got %q", got)
	}
}

func TestStripFencesNoFencesReturnsUnchanged(t *testing.T) {
	raw := `{"vote":"pass","score":90}`
	if got := StripFences(raw); got != raw {
		t.Fatalf("StripFences with no fences = %q, want unchanged", got)
	}
}

func TestFindBalancedJSONIgnoresBracesInsideStrings(t *testing.T) {
	raw := `noise before {"vote":"fail","score":20,"reasoning":"uses { and } inside a string literal"} trailing`
	candidate, ok := FindBalancedJSON(raw)
	if !ok {
		t.Fatal("expected a balanced candidate")
	}
	if candidate[len(candidate)-1] != '}' || candidate[0] != '{' {
		t.Fatalf("candidate not balanced: %q", candidate)
	}
	var pv ParsedVote
	if err := json.Unmarshal([]byte(candidate), &pv); err != nil {
		t.Fatalf("candidate should unmarshal cleanly: %v", err)
	}
	if pv.Vote != "fail" || pv.Score != 20 {
		t.Fatalf("got %+v", pv)
	}
}

func TestFindBalancedJSONSkipsCandidateMissingRequiredFields(t *testing.T) {
	raw := `{"unrelated":true} then later {"vote":"pass","score":100}`
	candidate, ok := FindBalancedJSON(raw)
	if !ok {
		t.Fatal("expected to find the second, qualifying object")
	}
	if candidate != `{"vote":"pass","score":100}` {
		t.Fatalf("got %q", candidate)
	}
}

func TestFindBalancedJSONUnterminatedReturnsFalse(t *testing.T) {
	if _, ok := FindBalancedJSON(`{"vote":"pass","score":90`); ok {
		t.Fatal("unterminated object should not be reported as found")
	}
}

func TestParseStructuredRoundTrip(t *testing.T) {
	raw := "```\n{\"vote\":\"warn\",\"score\":65,\"reasoning\":\"ok\",\"issues\":[\"a\"],\"suggestions\":[\"b\"]}\n```"
	pv, ok := ParseStructured(raw)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if pv.Vote != "warn" || pv.Score != 65 || len(pv.Issues) != 1 || len(pv.Suggestions) != 1 {
		t.Fatalf("got %+v", pv)
	}
}

func TestParseStructuredNoJSONFails(t *testing.T) {
	if _, ok := ParseStructured("just prose, no structured vote here"); ok {
		t.Fatal("expected parse failure on unstructured text")
	}
}
