// Package patternmatch implements tetrad's stateless Pattern Matcher:
// code normalization, signature computation, keyword extraction, Jaccard
// similarity, and language detection.
//
// Grounded on the teacher's internal/pattern.TaskHasher normalize/hash/
// Jaccard pipeline, adapted from task-deduplication duty to code-pattern
// signature duty, with the fixed keyword vocabulary and language markers
// taken from the Rust reference implementation's reasoning/patterns.rs.
package patternmatch

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// commentPrefixes are the line-leading markers stripped during
// normalization, matching spec.md §4.F / §4.E.
var commentPrefixes = []string{"//", "#", "/*", "*/", "*"}

// Normalize keeps non-empty lines that don't begin (after trim) with a
// comment marker, trims each, and rejoins with newline.
func Normalize(code string) string {
	lines := strings.Split(code, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if hasCommentPrefix(t) {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, "\n")
}

func hasCommentPrefix(line string) bool {
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Signature returns the hex SHA-256 of the normalized code.
func Signature(code string) string {
	sum := sha256.Sum256([]byte(Normalize(code)))
	return hex.EncodeToString(sum[:])
}

// keywordRule pairs a set of substrings with the keyword they indicate.
type keywordRule struct {
	keyword string
	markers []string
}

// keywordRules is evaluated in order; vocabulary and ordering are taken
// from the Rust reference (reasoning/patterns.rs).
var keywordRules = []keywordRule{
	{"sql", []string{"sql", "query"}},
	{"credentials", []string{"password", "secret", "credential"}},
	{"code_execution", []string{"eval", "exec"}},
	{"network", []string{"http", "request", "fetch"}},
	{"file_io", []string{"file", "read", "write"}},
	{"loop", []string{"for ", "while ", "loop"}},
	{"null_access", []string{"unwrap", ".get(", "expect("}},
	{"panic", []string{"panic", "crash"}},
	{"unsafe", []string{"unsafe"}},
	{"async", []string{"async", "await"}},
	{"concurrency", []string{"mutex", "lock", "atomic"}},
	{"clone", []string{"clone()", ".clone()"}},
	{"allocation", []string{"vec!", "push("}},
	{"collect", []string{"collect()", ".collect()"}},
	{"todo", []string{"todo", "fixme"}},
}

// ExtractKeywords returns the fixed-vocabulary keywords present in code.
func ExtractKeywords(code string) []string {
	lower := strings.ToLower(code)
	var keywords []string
	for _, rule := range keywordRules {
		for _, marker := range rule.markers {
			if strings.Contains(lower, marker) {
				keywords = append(keywords, rule.keyword)
				break
			}
		}
	}
	return keywords
}

// categoryRules groups fixed-vocabulary keywords into coarse categories.
var categoryRules = map[string][]string{
	"security":    {"sql", "credentials", "code_execution"},
	"io":          {"network", "file_io"},
	"logic":       {"loop", "null_access", "panic"},
	"concurrency": {"async", "concurrency"},
	"performance": {"clone", "allocation", "collect"},
}

// Categorize groups a code sample's keywords into coarse categories.
// Returns ["general"] when nothing matches.
func Categorize(code string) []string {
	keywords := map[string]bool{}
	for _, k := range ExtractKeywords(code) {
		keywords[k] = true
	}
	var categories []string
	for cat, kws := range categoryRules {
		for _, kw := range kws {
			if keywords[kw] {
				categories = append(categories, cat)
				break
			}
		}
	}
	if len(categories) == 0 {
		return []string{"general"}
	}
	sort.Strings(categories)
	return categories
}

// Jaccard computes the Jaccard similarity of two keyword sets: 0.0 if
// either is empty, else intersection/union.
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	intersection := 0
	for k := range setA {
		if setB[k] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}

// Similarity returns 1.0 when a and b share a signature, else the Jaccard
// similarity of their extracted keyword sets.
func Similarity(a, b string) float64 {
	if Signature(a) == Signature(b) {
		return 1.0
	}
	return Jaccard(ExtractKeywords(a), ExtractKeywords(b))
}

// languageMarker pairs a language name with its first-hit substring
// markers, checked in the given precedence order.
type languageMarker struct {
	language string
	markers  []string
}

var languageMarkers = []languageMarker{
	{"rust", []string{"fn ", "let ", "impl ", "struct ", "enum "}},
	{"python", []string{"def ", "import ", "class ", "elif "}},
	{"javascript", []string{"const ", "function ", "=>", "export "}},
	{"go", []string{"func ", "package ", "go "}},
	{"java", []string{"public class", "private ", "static void main"}},
}

// DetectLanguage returns the first matching language marker family, or
// "unknown" if none match.
func DetectLanguage(code string) string {
	lower := strings.ToLower(code)
	for _, lm := range languageMarkers {
		for _, marker := range lm.markers {
			if strings.Contains(lower, marker) {
				return lm.language
			}
		}
	}
	return "unknown"
}
