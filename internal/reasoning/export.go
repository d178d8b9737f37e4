package reasoning

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/harrison/tetrad/internal/models"
)

// ExportDocument is the JSON shape written by Export and read by Import.
type ExportDocument struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Knowledge  Distillation    `json:"knowledge"`
	Patterns   []models.Pattern `json:"patterns"`
}

// Export writes the full pattern list plus a distilled knowledge snapshot.
func (s *Store) Export() (ExportDocument, error) {
	knowledge, err := s.Distill()
	if err != nil {
		return ExportDocument{}, err
	}

	var patterns []models.Pattern
	err = s.withLock(func(ctx context.Context, db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT id, pattern_type, code_signature, language, issue_category,
			description, solution, success_count, failure_count, confidence, last_seen, created_at FROM patterns`)
		if err != nil {
			return err
		}
		defer rows.Close()
		patterns, err = scanPatterns(rows)
		return err
	})
	if err != nil {
		return ExportDocument{}, err
	}

	return ExportDocument{
		Version:    "2.0",
		ExportedAt: time.Now(),
		Knowledge:  knowledge,
		Patterns:   patterns,
	}, nil
}

// MarshalJSON-friendly wrapper used by the CLI export command.
func (d ExportDocument) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ImportReport counts the outcome of an Import call.
type ImportReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Merged   int `json:"merged"`
}

// Import inserts missing patterns (keyed by signature+category) and merges
// into existing ones when the imported row has a higher total count or a
// newer last_seen; otherwise it is skipped.
func (s *Store) Import(doc ExportDocument) (ImportReport, error) {
	var report ImportReport
	err := s.withLock(func(ctx context.Context, db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, p := range doc.Patterns {
			row := tx.QueryRowContext(ctx, `SELECT id, success_count, failure_count, last_seen FROM patterns
				WHERE code_signature = ? AND issue_category = ?`, p.CodeSignature, p.IssueCategory)

			var id int64
			var success, failure int
			var lastSeenStr string
			err := row.Scan(&id, &success, &failure, &lastSeenStr)
			if err == sql.ErrNoRows {
				if _, err := tx.ExecContext(ctx, `INSERT INTO patterns
					(pattern_type, code_signature, language, issue_category, description, solution,
					 success_count, failure_count, confidence, last_seen, created_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					string(p.PatternType), p.CodeSignature, p.Language, p.IssueCategory, p.Description, p.Solution,
					p.SuccessCount, p.FailureCount, p.Confidence, formatTimestamp(p.LastSeen), formatTimestamp(p.CreatedAt)); err != nil {
					return err
				}
				report.Imported++
				continue
			}
			if err != nil {
				return err
			}

			existingTotal := success + failure
			importedTotal := p.SuccessCount + p.FailureCount
			existingLastSeen := parseTimestamp(lastSeenStr)
			shouldMerge := importedTotal > existingTotal || p.LastSeen.After(existingLastSeen)
			if !shouldMerge {
				report.Skipped++
				continue
			}

			newSuccess := success + p.SuccessCount
			newFailure := failure + p.FailureCount
			newLastSeen := existingLastSeen
			if p.LastSeen.After(newLastSeen) {
				newLastSeen = p.LastSeen
			}
			confidence := models.Confidence(newSuccess, newFailure)
			ptype := models.TypeForCounts(newSuccess, newFailure)
			if _, err := tx.ExecContext(ctx, `UPDATE patterns SET success_count = ?, failure_count = ?,
				confidence = ?, pattern_type = ?, last_seen = ? WHERE id = ?`,
				newSuccess, newFailure, confidence, string(ptype), formatTimestamp(newLastSeen), id); err != nil {
				return err
			}
			report.Merged++
		}

		return tx.Commit()
	})
	return report, err
}
