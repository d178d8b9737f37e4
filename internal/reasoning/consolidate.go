package reasoning

import (
	"context"
	"database/sql"
	"time"

	"github.com/harrison/tetrad/internal/models"
)

// ConsolidateReport summarizes one Consolidate pass.
type ConsolidateReport struct {
	Merged     int `json:"merged"`
	Pruned     int `json:"pruned"`
	Reinforced int `json:"reinforced"`
	Retyped    int `json:"retyped"`
}

// Consolidate is idempotent and safe to run periodically: merge
// duplicates, prune stale low-confidence rows, reinforce high-count
// high-confidence rows, then recompute every row's confidence and type
// from the ratio rule, per spec.md §4.E.
func (s *Store) Consolidate() (ConsolidateReport, error) {
	var report ConsolidateReport
	err := s.withLock(func(ctx context.Context, db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		merged, err := mergeDuplicates(ctx, tx)
		if err != nil {
			return err
		}
		report.Merged = merged

		pruned, err := prunePatterns(ctx, tx)
		if err != nil {
			return err
		}
		report.Pruned = pruned

		reinforced, err := reinforcePatterns(ctx, tx)
		if err != nil {
			return err
		}
		report.Reinforced = reinforced

		retyped, err := recomputeAll(ctx, tx)
		if err != nil {
			return err
		}
		report.Retyped = retyped

		return tx.Commit()
	})
	return report, err
}

// mergeDuplicates finds (signature, category) groups with more than one
// row (which should not normally happen given the unique index, but
// guards against it being relaxed or rows inserted out of band) and moves
// counts into the lowest-id row before deleting the rest.
func mergeDuplicates(ctx context.Context, tx *sql.Tx) (int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT code_signature, issue_category FROM patterns
		GROUP BY code_signature, issue_category HAVING COUNT(*) > 1`)
	if err != nil {
		return 0, err
	}
	type key struct{ signature, category string }
	var dupGroups []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.signature, &k.category); err != nil {
			rows.Close()
			return 0, err
		}
		dupGroups = append(dupGroups, k)
	}
	rows.Close()

	merged := 0
	for _, g := range dupGroups {
		idRows, err := tx.QueryContext(ctx, `SELECT id, success_count, failure_count FROM patterns
			WHERE code_signature = ? AND issue_category = ? ORDER BY id ASC`, g.signature, g.category)
		if err != nil {
			return merged, err
		}
		type row struct {
			id               int64
			success, failure int
		}
		var group []row
		for idRows.Next() {
			var r row
			if err := idRows.Scan(&r.id, &r.success, &r.failure); err != nil {
				idRows.Close()
				return merged, err
			}
			group = append(group, r)
		}
		idRows.Close()
		if len(group) < 2 {
			continue
		}

		keep := group[0]
		totalSuccess, totalFailure := keep.success, keep.failure
		for _, r := range group[1:] {
			totalSuccess += r.success
			totalFailure += r.failure
			if _, err := tx.ExecContext(ctx, `DELETE FROM patterns WHERE id = ?`, r.id); err != nil {
				return merged, err
			}
			merged++
		}
		confidence := models.Confidence(totalSuccess, totalFailure)
		ptype := models.TypeForCounts(totalSuccess, totalFailure)
		if _, err := tx.ExecContext(ctx, `UPDATE patterns SET success_count = ?, failure_count = ?,
			confidence = ?, pattern_type = ? WHERE id = ?`,
			totalSuccess, totalFailure, confidence, string(ptype), keep.id); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

func prunePatterns(ctx context.Context, tx *sql.Tx) (int, error) {
	cutoff := formatTimestamp(time.Now().AddDate(0, 0, -30))
	res, err := tx.ExecContext(ctx, `DELETE FROM patterns
		WHERE confidence < 0.3 AND (success_count + failure_count) < 3 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func reinforcePatterns(ctx context.Context, tx *sql.Tx) (int, error) {
	res, err := tx.ExecContext(ctx, `UPDATE patterns
		SET confidence = MIN(confidence * 1.05, 1.0)
		WHERE (success_count + failure_count) > 10 AND confidence > 0.7`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func recomputeAll(ctx context.Context, tx *sql.Tx) (int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, success_count, failure_count, confidence, pattern_type FROM patterns`)
	if err != nil {
		return 0, err
	}
	type row struct {
		id                       int64
		success, failure         int
		confidence               float64
		patternType              string
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.success, &r.failure, &r.confidence, &r.patternType); err != nil {
			rows.Close()
			return 0, err
		}
		all = append(all, r)
	}
	rows.Close()

	retyped := 0
	for _, r := range all {
		newConfidence := models.Confidence(r.success, r.failure)
		newType := models.TypeForCounts(r.success, r.failure)
		if string(newType) != r.patternType {
			retyped++
		}
		if _, err := tx.ExecContext(ctx, `UPDATE patterns SET confidence = ?, pattern_type = ? WHERE id = ?`,
			newConfidence, string(newType), r.id); err != nil {
			return retyped, err
		}
	}
	return retyped, nil
}
