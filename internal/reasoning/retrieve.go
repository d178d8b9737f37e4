package reasoning

import (
	"context"
	"database/sql"
	"sort"

	"github.com/harrison/tetrad/internal/models"
	"github.com/harrison/tetrad/internal/patternmatch"
)

// RetrievedPattern pairs a persisted Pattern with its computed relevance.
type RetrievedPattern struct {
	Pattern   models.Pattern
	Relevance float64
}

// Retrieve is read-only: it never gates an evaluation's decision (per
// spec.md §9, "Retrieve does not gate decisions" — implementers must
// resist letting retrieved patterns short-circuit the reviewer fan-out).
// It returns the top maxResults pattern matches for code/language.
func (s *Store) Retrieve(code, language string, maxResults int) ([]RetrievedPattern, error) {
	signature := patternmatch.Signature(code)
	keywords := patternmatch.ExtractKeywords(code)

	var results []RetrievedPattern
	err := s.withLock(func(ctx context.Context, db *sql.DB) error {
		seen := make(map[int64]bool)

		exact, err := queryBySignature(ctx, db, signature)
		if err != nil {
			return err
		}
		for _, p := range exact {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			results = append(results, RetrievedPattern{Pattern: p, Relevance: 1.0})
		}

		for _, kw := range keywords {
			kwMatches, err := queryByKeyword(ctx, db, language, kw, 10)
			if err != nil {
				return err
			}
			for _, p := range kwMatches {
				if seen[p.ID] {
					continue
				}
				seen[p.ID] = true
				results = append(results, RetrievedPattern{Pattern: p, Relevance: 0.7})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance*results[i].Pattern.Confidence > results[j].Relevance*results[j].Pattern.Confidence
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func queryBySignature(ctx context.Context, db *sql.DB, signature string) ([]models.Pattern, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, pattern_type, code_signature, language, issue_category,
		description, solution, success_count, failure_count, confidence, last_seen, created_at
		FROM patterns WHERE code_signature = ?`, signature)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPatterns(rows)
}

func queryByKeyword(ctx context.Context, db *sql.DB, language, keyword string, limit int) ([]models.Pattern, error) {
	like := "%" + keyword + "%"
	rows, err := db.QueryContext(ctx, `SELECT id, pattern_type, code_signature, language, issue_category,
		description, solution, success_count, failure_count, confidence, last_seen, created_at
		FROM patterns
		WHERE (language = ? OR language = 'any') AND (issue_category LIKE ? OR description LIKE ?)
		LIMIT ?`, language, like, like, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPatterns(rows)
}

func scanPatterns(rows *sql.Rows) ([]models.Pattern, error) {
	var out []models.Pattern
	for rows.Next() {
		var p models.Pattern
		var solution sql.NullString
		var lastSeen, createdAt string
		if err := rows.Scan(&p.ID, &p.PatternType, &p.CodeSignature, &p.Language, &p.IssueCategory,
			&p.Description, &solution, &p.SuccessCount, &p.FailureCount, &p.Confidence, &lastSeen, &createdAt); err != nil {
			return nil, err
		}
		if solution.Valid {
			p.Solution = solution.String
		}
		p.LastSeen = parseTimestamp(lastSeen)
		p.CreatedAt = parseTimestamp(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}
