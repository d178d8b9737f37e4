package hooks

import (
	"context"
	"sync/atomic"

	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/models"
)

// LoggingHook emits a structured record per evaluation, and a secondary
// warning record when the decision is Block.
type LoggingHook struct {
	log logger.Logger
}

// NewLoggingHook constructs the always-available logging built-in.
func NewLoggingHook(log logger.Logger) *LoggingHook {
	return &LoggingHook{log: log}
}

func (h *LoggingHook) Name() string  { return "logging" }
func (h *LoggingHook) Event() Event  { return EventPostEvaluate }

func (h *LoggingHook) Execute(_ context.Context, hc Context) (Result, error) {
	if hc.Result == nil {
		return Result{Outcome: Continue}, nil
	}
	h.log.Info("evaluation complete",
		logger.F("request_id", hc.Result.RequestID),
		logger.F("decision", hc.Result.Decision),
		logger.F("score", hc.Result.Score),
		logger.F("consensus_achieved", hc.Result.ConsensusAchieved),
		logger.F("findings", len(hc.Result.Findings)),
	)
	if hc.Result.Decision == models.DecisionBlock {
		h.log.Warn("evaluation blocked",
			logger.F("request_id", hc.Result.RequestID),
			logger.F("score", hc.Result.Score),
		)
	}
	return Result{Outcome: Continue}, nil
}

// MetricsSnapshot is a point-in-time read of the metrics hook's counters.
type MetricsSnapshot struct {
	Total        int64   `json:"total"`
	Passes       int64   `json:"passes"`
	Revises      int64   `json:"revises"`
	Blocks       int64   `json:"blocks"`
	SuccessRate  float64 `json:"success_rate"`
	AverageScore float64 `json:"average_score"`
}

// MetricsHook maintains atomic counters of evaluations, passes, revises,
// blocks, and score sum.
type MetricsHook struct {
	total, passes, revises, blocks, scoreSum int64
}

// NewMetricsHook constructs the always-available metrics built-in.
func NewMetricsHook() *MetricsHook { return &MetricsHook{} }

func (h *MetricsHook) Name() string { return "metrics" }
func (h *MetricsHook) Event() Event { return EventPostEvaluate }

func (h *MetricsHook) Execute(_ context.Context, hc Context) (Result, error) {
	if hc.Result == nil {
		return Result{Outcome: Continue}, nil
	}
	atomic.AddInt64(&h.total, 1)
	atomic.AddInt64(&h.scoreSum, int64(hc.Result.Score))
	switch hc.Result.Decision {
	case models.DecisionPass:
		atomic.AddInt64(&h.passes, 1)
	case models.DecisionRevise:
		atomic.AddInt64(&h.revises, 1)
	case models.DecisionBlock:
		atomic.AddInt64(&h.blocks, 1)
	}
	return Result{Outcome: Continue}, nil
}

// Snapshot returns the current metrics.
func (h *MetricsHook) Snapshot() MetricsSnapshot {
	total := atomic.LoadInt64(&h.total)
	passes := atomic.LoadInt64(&h.passes)
	revises := atomic.LoadInt64(&h.revises)
	blocks := atomic.LoadInt64(&h.blocks)
	sum := atomic.LoadInt64(&h.scoreSum)

	var successRate, avgScore float64
	if total > 0 {
		successRate = float64(passes) / float64(total)
		avgScore = float64(sum) / float64(total)
	}
	return MetricsSnapshot{
		Total:        total,
		Passes:       passes,
		Revises:      revises,
		Blocks:       blocks,
		SuccessRate:  successRate,
		AverageScore: avgScore,
	}
}

// ConfigWatchHook is a PreEvaluate hook that never Skips or Modifies; it
// logs when the watched config's generation has advanced since the
// previous evaluation. Always registered last so it never shadows an
// earlier hook's Skip/Modify.
//
// Grounded on the teacher's internal/behavioral.FileWatcher fsnotify loop,
// repurposed from watching transcript JSONL files to watching tetrad.toml.
type ConfigWatchHook struct {
	log          logger.Logger
	generation   func() int32
	lastObserved int32
}

// NewConfigWatchHook constructs the hook around a generation accessor,
// typically (*config.Watcher).Generation.
func NewConfigWatchHook(log logger.Logger, generation func() int32) *ConfigWatchHook {
	return &ConfigWatchHook{log: log, generation: generation, lastObserved: generation()}
}

func (h *ConfigWatchHook) Name() string { return "config_watch" }
func (h *ConfigWatchHook) Event() Event { return EventPreEvaluate }

func (h *ConfigWatchHook) Execute(_ context.Context, _ Context) (Result, error) {
	current := h.generation()
	if current != h.lastObserved {
		h.log.Info("configuration reloaded", logger.F("generation", current))
		h.lastObserved = current
	}
	return Result{Outcome: Continue}, nil
}
