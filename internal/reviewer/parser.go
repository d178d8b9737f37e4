// Package reviewer implements the Reviewer Adapter (Component A) and the
// Output Parser (Component B): subprocess invocation of the three external
// reviewer CLIs and normalization of their heterogeneous output into
// structured votes.
//
// Grounded on the teacher's internal/claude.Invoker (clean-env subprocess
// exec, argv construction, cascading JSON extraction) and
// internal/agent.Invoker (the duplicate cascading-parse variant — not
// reproduced here; tetrad keeps one canonical parser). The balanced-brace,
// string/escape-aware scan required by spec.md's design notes upgrades
// past both teacher variants' naive index-based scan.
package reviewer

import (
	"encoding/json"
	"strings"
)

// ParsedVote is the structured shape both the JSON parser and the keyword
// fallback classifier populate.
type ParsedVote struct {
	Vote        string   `json:"vote"`
	Score       int      `json:"score"`
	Reasoning   string   `json:"reasoning"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// StripFences returns the inner content of ```...``` fenced blocks, each
// followed by a newline. Text before and between fences is dropped; text
// after the last closing fence, or after an unclosed fence, is kept. Text
// with no fences is returned unchanged.
func StripFences(text string) string {
	const fence = "```"
	if !strings.Contains(text, fence) {
		return text
	}
	var sb strings.Builder
	rest := text
	for {
		start := strings.Index(rest, fence)
		if start == -1 {
			sb.WriteString(rest)
			break
		}
		after := rest[start+len(fence):]
		// skip an optional language tag up to the next newline
		if nl := strings.Index(after, "\n"); nl != -1 && nl < 20 {
			after = after[nl+1:]
		}
		end := strings.Index(after, fence)
		if end == -1 {
			sb.WriteString(after)
			break
		}
		sb.WriteString(after[:end])
		sb.WriteString("\n")
		rest = after[end+len(fence):]
	}
	return sb.String()
}

// FindBalancedJSON scans text left to right for the first balanced
// `{...}` object whose body contains both `"vote"` and `"score"`. The scan
// tracks string state and backslash escapes so it is not fooled by braces
// or quotes inside string literals, unlike a naive first-`{`/last-`}` scan.
func FindBalancedJSON(text string) (string, bool) {
	n := len(text)
	for i := 0; i < n; i++ {
		if text[i] != '{' {
			continue
		}
		if candidate, ok := scanBalancedFrom(text, i); ok {
			if strings.Contains(candidate, `"vote"`) && strings.Contains(candidate, `"score"`) {
				return candidate, true
			}
		}
	}
	return "", false
}

// scanBalancedFrom returns the substring of text starting at start (which
// must be '{') through its matching close brace, honoring string/escape
// state, or false if the braces never balance before the text ends.
func scanBalancedFrom(text string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseStructured attempts to extract and unmarshal a vote object from raw
// reviewer output. It strips fences, then scans for the first balanced
// JSON object containing the required fields.
func ParseStructured(raw string) (ParsedVote, bool) {
	stripped := StripFences(raw)
	candidate, found := FindBalancedJSON(stripped)
	if !found {
		candidate, found = FindBalancedJSON(raw)
		if !found {
			return ParsedVote{}, false
		}
	}
	var pv ParsedVote
	if err := json.Unmarshal([]byte(candidate), &pv); err != nil {
		return ParsedVote{}, false
	}
	return pv, true
}
