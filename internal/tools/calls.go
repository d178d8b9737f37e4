package tools

import (
	"context"
	"fmt"

	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/models"
)

// ReviewPlanArgs is the tetrad_review_plan tool's input.
type ReviewPlanArgs struct {
	Plan    string `json:"plan"`
	Context string `json:"context,omitempty"`
}

// ReviewPlan evaluates a plan. Not cacheable.
func (h *Handler) ReviewPlan(ctx context.Context, args ReviewPlanArgs) (models.EvaluationResult, error) {
	headings := ExtractOutlineHeadings(args.Plan)
	if len(headings) > 0 {
		h.log.Debug("plan outline detected", logger.F("headings", len(headings)))
	}
	return h.Evaluate(ctx, models.EvaluationRequest{
		Payload: args.Plan,
		Kind:    models.KindPlan,
		Context: args.Context,
	})
}

// ReviewCodeArgs is the tetrad_review_code tool's input.
type ReviewCodeArgs struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	FilePath string `json:"file_path,omitempty"`
	Context  string `json:"context,omitempty"`
}

// ReviewCode evaluates code. Cacheable.
func (h *Handler) ReviewCode(ctx context.Context, args ReviewCodeArgs) (models.EvaluationResult, error) {
	return h.Evaluate(ctx, models.EvaluationRequest{
		Payload:  args.Code,
		Language: args.Language,
		Kind:     models.KindCode,
		Context:  args.Context,
		FilePath: args.FilePath,
	})
}

// ReviewTestsArgs is the tetrad_review_tests tool's input.
type ReviewTestsArgs struct {
	Tests    string `json:"tests"`
	Language string `json:"language"`
	Context  string `json:"context,omitempty"`
}

// ReviewTests evaluates a test suite. Not cacheable.
func (h *Handler) ReviewTests(ctx context.Context, args ReviewTestsArgs) (models.EvaluationResult, error) {
	return h.Evaluate(ctx, models.EvaluationRequest{
		Payload:  args.Tests,
		Language: args.Language,
		Kind:     models.KindTests,
		Context:  args.Context,
	})
}

// ConfirmArgs is the tetrad_confirm tool's input.
type ConfirmArgs struct {
	RequestID string `json:"request_id"`
	Agreed    bool   `json:"agreed"`
	Notes     string `json:"notes,omitempty"`
}

// ConfirmResult is the tetrad_confirm tool's output.
type ConfirmResult struct {
	RequestID  string `json:"request_id"`
	CanProceed bool   `json:"can_proceed"`
}

// Confirm records confirmations[request_id] = agreed.
func (h *Handler) Confirm(args ConfirmArgs) ConfirmResult {
	h.confirmMu.Lock()
	h.confirmations[args.RequestID] = args.Agreed
	h.confirmMu.Unlock()
	return ConfirmResult{RequestID: args.RequestID, CanProceed: args.Agreed}
}

func (h *Handler) confirmed(requestID string) bool {
	h.confirmMu.RLock()
	defer h.confirmMu.RUnlock()
	return h.confirmations[requestID]
}

// FinalCheckArgs is the tetrad_final_check tool's input.
type FinalCheckArgs struct {
	Code              string `json:"code"`
	Language          string `json:"language"`
	PreviousRequestID string `json:"previous_request_id,omitempty"`
}

// FinalCheckResult is the tetrad_final_check tool's output.
type FinalCheckResult struct {
	models.EvaluationResult
	MeetsRequirements bool   `json:"meets_requirements"`
	Certified         bool   `json:"certified"`
	CertificateID     string `json:"certificate_id,omitempty"`
	Message           string `json:"message,omitempty"`
}

// FinalCheck runs the standard evaluate-internal path and then applies the
// certification logic from spec.md §4.H.
func (h *Handler) FinalCheck(ctx context.Context, args FinalCheckArgs) (FinalCheckResult, error) {
	result, err := h.Evaluate(ctx, models.EvaluationRequest{
		Payload:  args.Code,
		Language: args.Language,
		Kind:     models.KindFinalCheck,
	})
	if err != nil {
		return FinalCheckResult{}, err
	}

	meetsRequirements := result.ConsensusAchieved && result.Score >= h.engine.MinScore()

	certified := meetsRequirements
	message := ""
	if args.PreviousRequestID != "" {
		if !h.confirmed(args.PreviousRequestID) {
			certified = false
			message = "Prior confirmation pending for request " + args.PreviousRequestID
		}
	}

	out := FinalCheckResult{
		EvaluationResult:  result,
		MeetsRequirements: meetsRequirements,
		Certified:         certified,
		Message:           message,
	}
	if certified {
		out.CertificateID = "TETRAD-" + result.RequestID
	}
	return out, nil
}

// StatusResult is the tetrad_status tool's output.
type StatusResult struct {
	Reviewers         []statusReviewer `json:"reviewers"`
	CacheStats        any              `json:"cache_stats,omitempty"`
	ReasoningEnabled  bool             `json:"reasoning_enabled"`
	ConsensusRule     string           `json:"consensus_rule"`
	MinScore          int              `json:"min_score"`
	MaxLoops          int              `json:"max_loops"`
}

type statusReviewer struct {
	Name           string `json:"name"`
	Command        string `json:"command"`
	Specialization string `json:"specialization"`
	Enabled        bool   `json:"enabled"`
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
}

// Status probes reviewer availability, gathers versions, and reports
// cache/config state.
func (h *Handler) Status(ctx context.Context) StatusResult {
	probed := h.fleet.Probe(ctx)
	reviewers := make([]statusReviewer, len(probed))
	for i, p := range probed {
		reviewers[i] = statusReviewer{
			Name:           p.Name,
			Command:        p.Command,
			Specialization: p.Specialization,
			Enabled:        p.Enabled,
			Available:      p.Available,
			Version:        p.Version,
		}
	}

	var cacheStats any
	if h.cache != nil {
		cacheStats = h.cache.Stats()
	}

	return StatusResult{
		Reviewers:        reviewers,
		CacheStats:       cacheStats,
		ReasoningEnabled: h.bank != nil,
		ConsensusRule:    h.engine.RuleName(),
		MinScore:         h.engine.MinScore(),
		MaxLoops:         h.engine.MaxLoops(),
	}
}

// ErrUnknownTool is wrapped into the error the MCP server's tools/call
// dispatch returns when the tool name doesn't match any tool.
var ErrUnknownTool = fmt.Errorf("tools: unknown tool")
