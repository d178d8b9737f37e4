package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/tetrad/internal/cache"
	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/consensus"
	"github.com/harrison/tetrad/internal/hooks"
	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/models"
	"github.com/harrison/tetrad/internal/reasoning"
	"github.com/harrison/tetrad/internal/reviewer"
)

// Handler owns one instance each of the Reviewer Fleet, Consensus Engine,
// Evaluation Cache, Reasoning Bank (optional), Hook Pipeline, and the
// confirmations map.
type Handler struct {
	cfg    *config.Config
	log    logger.Logger
	fleet  *reviewer.Fleet
	engine *consensus.Engine
	cache  *cache.Cache
	bank   *reasoning.Store // nil when reasoning is disabled
	hooks  *hooks.Pipeline

	confirmMu     sync.RWMutex
	confirmations map[string]bool

	evalCount int64
}

// NewHandler wires a Handler from configuration. bank may be nil when
// cfg.Reasoning.Enabled is false.
func NewHandler(cfg *config.Config, log logger.Logger, fleet *reviewer.Fleet, bank *reasoning.Store) *Handler {
	var c *cache.Cache
	if cfg.Cache.Enabled {
		c = cache.New(cfg.Cache.Capacity, time.Duration(cfg.Cache.TTLSecs)*time.Second)
	}

	pipeline := hooks.NewPipeline()
	pipeline.Register(hooks.NewLoggingHook(log))
	pipeline.Register(hooks.NewMetricsHook())

	return &Handler{
		cfg:           cfg,
		log:           log,
		fleet:         fleet,
		engine:        consensus.NewEngine(cfg.Consensus),
		cache:         c,
		bank:          bank,
		hooks:         pipeline,
		confirmations: make(map[string]bool),
	}
}

// Hooks exposes the pipeline so callers (e.g. the config watcher wiring in
// internal/cmd) can register additional hooks such as ConfigWatchHook.
func (h *Handler) Hooks() *hooks.Pipeline { return h.hooks }

func newRequestID() string {
	return uuid.NewString()
}

// skipResult synthesizes the "skipped by hook" result spec.md §4.H
// mandates when a PreEvaluate hook returns Skip.
func skipResult(requestID string) models.EvaluationResult {
	return models.EvaluationResult{
		RequestID:         requestID,
		Decision:          models.DecisionPass,
		Score:             100,
		ConsensusAchieved: true,
		Votes:             map[string]models.ModelVote{},
		Findings:          nil,
		Feedback:          "Evaluation skipped by hook.",
		Timestamp:         time.Now(),
	}
}

// Evaluate runs the shared evaluate-internal algorithm from spec.md §4.H
// for the review_plan/review_code/review_tests/final_check tools.
func (h *Handler) Evaluate(ctx context.Context, req models.EvaluationRequest) (models.EvaluationResult, error) {
	if req.ID == "" {
		req.ID = newRequestID()
	}

	pre, err := h.hooks.RunPreEvaluate(ctx, req)
	if err != nil {
		return models.EvaluationResult{}, fmt.Errorf("tools: pre-evaluate hook %q failed: %w", pre.HookName, err)
	}
	switch pre.Outcome {
	case hooks.Skip:
		return skipResult(req.ID), nil
	case hooks.ModifyRequest:
		req = pre.NewRequest
	}

	cacheable := req.Kind == models.KindCode
	var cacheKey string
	if cacheable && h.cache != nil {
		cacheKey = cache.Key(req.Payload, req.Language, req.Kind)
		if cached, ok := h.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	if h.bank != nil {
		// Retrieve is observational only — it annotates logs but never
		// gates the decision, per spec.md §9.
		if matches, err := h.bank.Retrieve(req.Payload, req.Language, h.cfg.Reasoning.MaxPatternsPerQuery); err == nil {
			h.log.Debug("retrieved patterns", logger.F("request_id", req.ID), logger.F("count", len(matches)))
		} else {
			h.log.Warn("reasoning bank retrieve failed", logger.F("error", err.Error()))
		}
	}

	votes := h.fleet.Evaluate(ctx, req)
	result := h.engine.Decide(req.ID, votes)

	if err := h.hooks.RunPostEvaluate(ctx, req, result); err != nil {
		return models.EvaluationResult{}, fmt.Errorf("tools: post-evaluate hook failed: %w", err)
	}
	if result.ConsensusAchieved {
		if err := h.hooks.RunOnConsensus(ctx, req, result); err != nil {
			return models.EvaluationResult{}, fmt.Errorf("tools: on-consensus hook failed: %w", err)
		}
	}
	if result.Decision == models.DecisionBlock {
		if err := h.hooks.RunOnBlock(ctx, req, result); err != nil {
			return models.EvaluationResult{}, fmt.Errorf("tools: on-block hook failed: %w", err)
		}
	}

	if h.bank != nil {
		_, err := h.bank.Judge(reasoning.JudgeInput{
			RequestID:        req.ID,
			Code:             req.Payload,
			Language:         req.Language,
			Result:           result,
			LoopsToConsensus: 1,
			MaxLoops:         int(h.cfg.Consensus.MaxLoops),
		})
		if err != nil {
			// ReasoningBankError: logged and swallowed at the Tool Handler
			// boundary, per spec.md §7 — the evaluation result still
			// returns successfully.
			h.log.Warn("reasoning bank judge failed", logger.F("error", err.Error()))
		} else {
			h.maybeAutoConsolidate()
		}
	}

	if cacheable && h.cache != nil {
		h.cache.Insert(cacheKey, result)
	}

	return result, nil
}

func (h *Handler) maybeAutoConsolidate() {
	h.evalCount++
	interval := int64(h.cfg.Reasoning.ConsolidationInterval)
	if interval <= 0 || h.evalCount%interval != 0 {
		return
	}
	if _, err := h.bank.Consolidate(); err != nil {
		h.log.Warn("reasoning bank consolidate failed", logger.F("error", err.Error()))
	}
}
