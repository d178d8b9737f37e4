package reasoning

import (
	"context"
	"database/sql"

	"github.com/harrison/tetrad/internal/models"
)

// LanguageStats summarizes one language's pattern population.
type LanguageStats struct {
	Language        string  `json:"language"`
	TotalPatterns   int     `json:"total_patterns"`
	SuccessRate     float64 `json:"success_rate"`
	AvgConfidence   float64 `json:"avg_confidence"`
}

// Distillation is the read-only analytics snapshot Distill returns.
type Distillation struct {
	TopAntiPatterns        []models.Pattern          `json:"top_anti_patterns"`
	TopGoodPatterns        []models.Pattern          `json:"top_good_patterns"`
	ProblematicCategories  map[string]int            `json:"problematic_categories"`
	LanguageStats          map[string]LanguageStats  `json:"language_stats"`
	AvgLoopsToConsensus    float64                   `json:"avg_loops_to_consensus"`
	TotalPatterns          int                       `json:"total_patterns"`
	TotalTrajectories      int                       `json:"total_trajectories"`
}

// Distill returns the analytics snapshot described in spec.md §4.E.
func (s *Store) Distill() (Distillation, error) {
	var d Distillation
	err := s.withLock(func(ctx context.Context, db *sql.DB) error {
		var err error
		d.TopAntiPatterns, err = topPatterns(ctx, db, string(models.PatternAntiPattern), 10)
		if err != nil {
			return err
		}
		d.TopGoodPatterns, err = topPatterns(ctx, db, string(models.PatternGoodPattern), 10)
		if err != nil {
			return err
		}
		d.ProblematicCategories, err = categoryHistogram(ctx, db)
		if err != nil {
			return err
		}
		d.LanguageStats, err = languageStats(ctx, db)
		if err != nil {
			return err
		}
		d.AvgLoopsToConsensus, err = avgLoopsToConsensus(ctx, db)
		if err != nil {
			return err
		}
		d.TotalPatterns, err = countRows(ctx, db, "patterns")
		if err != nil {
			return err
		}
		d.TotalTrajectories, err = countRows(ctx, db, "trajectories")
		return err
	})
	return d, err
}

func topPatterns(ctx context.Context, db *sql.DB, patternType string, limit int) ([]models.Pattern, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, pattern_type, code_signature, language, issue_category,
		description, solution, success_count, failure_count, confidence, last_seen, created_at
		FROM patterns WHERE pattern_type = ?
		ORDER BY (success_count + failure_count) DESC, confidence DESC
		LIMIT ?`, patternType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPatterns(rows)
}

func categoryHistogram(ctx context.Context, db *sql.DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT issue_category, COUNT(*) FROM patterns
		WHERE pattern_type = ? GROUP BY issue_category`, string(models.PatternAntiPattern))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		out[category] = count
	}
	return out, rows.Err()
}

func languageStats(ctx context.Context, db *sql.DB) (map[string]LanguageStats, error) {
	rows, err := db.QueryContext(ctx, `SELECT language,
		COUNT(*),
		SUM(CASE WHEN pattern_type = ? THEN 1 ELSE 0 END),
		AVG(confidence)
		FROM patterns GROUP BY language`, string(models.PatternGoodPattern))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]LanguageStats)
	for rows.Next() {
		var lang string
		var total, goodCount int
		var avgConfidence float64
		if err := rows.Scan(&lang, &total, &goodCount, &avgConfidence); err != nil {
			return nil, err
		}
		successRate := 0.0
		if total > 0 {
			successRate = float64(goodCount) / float64(total)
		}
		out[lang] = LanguageStats{
			Language:      lang,
			TotalPatterns: total,
			SuccessRate:   successRate,
			AvgConfidence: avgConfidence * 100,
		}
	}
	return out, rows.Err()
}

func avgLoopsToConsensus(ctx context.Context, db *sql.DB) (float64, error) {
	var avg sql.NullFloat64
	row := db.QueryRowContext(ctx, `SELECT AVG(loops_to_consensus) FROM trajectories WHERE was_successful = 1`)
	if err := row.Scan(&avg); err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func countRows(ctx context.Context, db *sql.DB, table string) (int, error) {
	var n int
	row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
