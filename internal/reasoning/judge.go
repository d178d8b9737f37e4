package reasoning

import (
	"context"
	"database/sql"
	"time"

	"github.com/harrison/tetrad/internal/models"
	"github.com/harrison/tetrad/internal/patternmatch"
)

// JudgeInput carries everything Judge needs to turn one evaluation into
// pattern updates.
type JudgeInput struct {
	RequestID        string
	Code             string
	Language         string
	Result           models.EvaluationResult
	LoopsToConsensus int
	MaxLoops         int
}

// JudgeReport counts how many patterns were created vs updated.
type JudgeReport struct {
	Created int
	Updated int
}

// Judge is the mutating phase: it persists a Trajectory row and
// upserts one Pattern per Finding (plus a synthetic success pattern when
// no findings were reported and the evaluation succeeded), per spec.md
// §4.E.
func (s *Store) Judge(in JudgeInput) (JudgeReport, error) {
	signature := patternmatch.Signature(in.Code)
	wasSuccessful := in.Result.ConsensusAchieved && in.LoopsToConsensus <= in.MaxLoops
	initialScore := minVoteScore(in.Result.Votes)
	now := time.Now()

	var report JudgeReport
	err := s.withLock(func(ctx context.Context, db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		var patternID *int64
		if len(in.Result.Findings) > 0 {
			for _, f := range in.Result.Findings {
				id, created, err := upsertFindingPattern(ctx, tx, f, signature, in.Language, wasSuccessful, now)
				if err != nil {
					return err
				}
				patternID = &id
				if created {
					report.Created++
				} else {
					report.Updated++
				}
			}
		} else if wasSuccessful {
			id, created, err := upsertSuccessPattern(ctx, tx, signature, in.Language, now)
			if err != nil {
				return err
			}
			patternID = &id
			if created {
				report.Created++
			} else {
				report.Updated++
			}
		}

		if err := insertTrajectory(ctx, tx, in, signature, patternID, initialScore, wasSuccessful, now); err != nil {
			return err
		}

		return tx.Commit()
	})
	return report, err
}

func minVoteScore(votes map[string]models.ModelVote) int {
	min := -1
	for _, v := range votes {
		if min == -1 || v.Score < min {
			min = v.Score
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

func upsertFindingPattern(ctx context.Context, tx *sql.Tx, f models.Finding, signature, language string, wasSuccessful bool, now time.Time) (int64, bool, error) {
	category := string(f.Category)
	row := tx.QueryRowContext(ctx, `SELECT id, success_count, failure_count FROM patterns
		WHERE code_signature = ? AND issue_category = ?`, signature, category)

	var id int64
	var success, failure int
	err := row.Scan(&id, &success, &failure)
	if err == sql.ErrNoRows {
		if wasSuccessful {
			success, failure = 1, 0
		} else {
			success, failure = 0, 1
		}
		const confidence = 0.5
		ptype := models.PatternAmbiguous
		if !wasSuccessful {
			ptype = models.PatternAntiPattern
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO patterns
			(pattern_type, code_signature, language, issue_category, description, solution,
			 success_count, failure_count, confidence, last_seen, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(ptype), signature, language, category, f.Issue, f.Suggestion,
			success, failure, confidence, formatTimestamp(now), formatTimestamp(now))
		if err != nil {
			return 0, false, err
		}
		newID, err := res.LastInsertId()
		return newID, true, err
	}
	if err != nil {
		return 0, false, err
	}

	if wasSuccessful {
		success++
	} else {
		failure++
	}
	confidence := models.Confidence(success, failure)
	_, err = tx.ExecContext(ctx, `UPDATE patterns SET success_count = ?, failure_count = ?,
		confidence = ?, last_seen = ? WHERE id = ?`,
		success, failure, confidence, formatTimestamp(now), id)
	return id, false, err
}

func upsertSuccessPattern(ctx context.Context, tx *sql.Tx, signature, language string, now time.Time) (int64, bool, error) {
	const category = "success"
	row := tx.QueryRowContext(ctx, `SELECT id, success_count, failure_count FROM patterns
		WHERE code_signature = ? AND issue_category = ?`, signature, category)

	var id int64
	var success, failure int
	err := row.Scan(&id, &success, &failure)
	if err == sql.ErrNoRows {
		success = 1
		confidence := models.Confidence(success, 0)
		res, err := tx.ExecContext(ctx, `INSERT INTO patterns
			(pattern_type, code_signature, language, issue_category, description, solution,
			 success_count, failure_count, confidence, last_seen, created_at)
			VALUES (?, ?, ?, ?, ?, '', ?, 0, ?, ?, ?)`,
			string(models.PatternGoodPattern), signature, language, category, "evaluation succeeded with no findings",
			success, confidence, formatTimestamp(now), formatTimestamp(now))
		if err != nil {
			return 0, false, err
		}
		newID, err := res.LastInsertId()
		return newID, true, err
	}
	if err != nil {
		return 0, false, err
	}

	success++
	confidence := models.Confidence(success, failure)
	_, err = tx.ExecContext(ctx, `UPDATE patterns SET success_count = ?, confidence = ?,
		last_seen = ? WHERE id = ?`,
		success, confidence, formatTimestamp(now), id)
	return id, false, err
}

func insertTrajectory(ctx context.Context, tx *sql.Tx, in JudgeInput, signature string, patternID *int64, initialScore int, wasSuccessful bool, now time.Time) error {
	var pid sql.NullInt64
	if patternID != nil {
		pid = sql.NullInt64{Int64: *patternID, Valid: true}
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO trajectories
		(pattern_id, request_id, code_hash, initial_score, final_score, loops_to_consensus, was_successful, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pid, in.RequestID, signature, initialScore, in.Result.Score, in.LoopsToConsensus, boolToInt(wasSuccessful), formatTimestamp(now))
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
