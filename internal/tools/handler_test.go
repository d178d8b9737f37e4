package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/harrison/tetrad/internal/cache"
	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/hooks"
	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/models"
	"github.com/harrison/tetrad/internal/reviewer"
)

type stubHook struct {
	name   string
	event  hooks.Event
	result hooks.Result
	err    error
	calls  *int
}

func (s stubHook) Name() string       { return s.name }
func (s stubHook) Event() hooks.Event { return s.event }
func (s stubHook) Execute(context.Context, hooks.Context) (hooks.Result, error) {
	if s.calls != nil {
		*s.calls++
	}
	return s.result, s.err
}

// allReviewersDisabledConfig builds a config with every reviewer subprocess
// disabled so Evaluate's Fleet.Evaluate call never shells out, and with
// reasoning/cache left to the caller to toggle.
func allReviewersDisabledConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Executors.Codex.Enabled = false
	cfg.Executors.Gemini.Enabled = false
	cfg.Executors.Qwen.Enabled = false
	cfg.Reasoning.Enabled = false
	return cfg
}

func newTestHandler(t *testing.T, mutate func(*config.Config)) *Handler {
	t.Helper()
	cfg := allReviewersDisabledConfig()
	if mutate != nil {
		mutate(cfg)
	}
	log := logger.Nop()
	fleet := reviewer.NewFleet(cfg, log)
	return NewHandler(cfg, log, fleet, nil)
}

func TestEvaluateWithNoReviewersRevises(t *testing.T) {
	h := newTestHandler(t, nil)
	result, err := h.Evaluate(context.Background(), models.EvaluationRequest{
		Payload: "func f() {}", Language: "go", Kind: models.KindCode,
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Decision != models.DecisionRevise {
		t.Fatalf("decision = %q, want revise with zero votes", result.Decision)
	}
	if result.ConsensusAchieved {
		t.Fatal("zero votes should never achieve consensus")
	}
}

func TestEvaluateSkipHookShortCircuits(t *testing.T) {
	h := newTestHandler(t, nil)
	h.Hooks().Register(stubHook{name: "gate", event: hooks.EventPreEvaluate, result: hooks.Result{Outcome: hooks.Skip}})

	result, err := h.Evaluate(context.Background(), models.EvaluationRequest{Payload: "x", Kind: models.KindCode})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Feedback != "Evaluation skipped by hook." {
		t.Fatalf("feedback = %q, want the skip message", result.Feedback)
	}
	if !result.ConsensusAchieved || result.Score != 100 {
		t.Fatalf("skip result = %+v, want a synthesized pass", result)
	}
}

func TestEvaluateModifyRequestHookChangesPayload(t *testing.T) {
	h := newTestHandler(t, func(c *config.Config) {
		c.Cache.Enabled = true
		c.Cache.Capacity = 10
		c.Cache.TTLSecs = 300
	})
	modified := models.EvaluationRequest{ID: "keep-id", Payload: "modified payload", Kind: models.KindCode}
	h.Hooks().Register(stubHook{name: "rewriter", event: hooks.EventPreEvaluate, result: hooks.Result{Outcome: hooks.ModifyRequest, NewRequest: modified}})

	result, err := h.Evaluate(context.Background(), models.EvaluationRequest{ID: "keep-id", Payload: "original", Kind: models.KindCode})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.RequestID != "keep-id" {
		t.Fatalf("request id = %q, want preserved from the modified request", result.RequestID)
	}
	// The evaluated (and cached) payload is the hook's, not the caller's.
	if _, ok := h.cache.Get(cache.Key("modified payload", "", models.KindCode)); !ok {
		t.Fatal("expected the modified payload to have been evaluated and cached")
	}
	if _, ok := h.cache.Get(cache.Key("original", "", models.KindCode)); ok {
		t.Fatal("the original payload should not have been evaluated")
	}
}

func TestEvaluatePreEvaluateHookErrorPropagates(t *testing.T) {
	h := newTestHandler(t, nil)
	boom := errors.New("boom")
	h.Hooks().Register(stubHook{name: "broken", event: hooks.EventPreEvaluate, err: boom})

	_, err := h.Evaluate(context.Background(), models.EvaluationRequest{Payload: "x", Kind: models.KindCode})
	if !errors.Is(err, boom) {
		t.Fatalf("expected hook error to propagate, got %v", err)
	}
}

func TestEvaluateCachesCodeReviewsAndBypassesSecondFleetCall(t *testing.T) {
	h := newTestHandler(t, func(c *config.Config) {
		c.Cache.Enabled = true
		c.Cache.Capacity = 10
		c.Cache.TTLSecs = 300
	})

	req := models.EvaluationRequest{Payload: "func f() {}", Language: "go", Kind: models.KindCode}
	first, err := h.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("first Evaluate() error = %v", err)
	}

	second, err := h.Evaluate(context.Background(), models.EvaluationRequest{Payload: req.Payload, Language: req.Language, Kind: req.Kind})
	if err != nil {
		t.Fatalf("second Evaluate() error = %v", err)
	}
	if second.RequestID != first.RequestID {
		t.Fatalf("second call request id = %q, want the cached result's id %q", second.RequestID, first.RequestID)
	}
}

func TestEvaluateDoesNotCachePlanKind(t *testing.T) {
	h := newTestHandler(t, func(c *config.Config) {
		c.Cache.Enabled = true
		c.Cache.Capacity = 10
		c.Cache.TTLSecs = 300
	})

	first, err := h.Evaluate(context.Background(), models.EvaluationRequest{Payload: "## Plan", Kind: models.KindPlan})
	if err != nil {
		t.Fatalf("first Evaluate() error = %v", err)
	}
	second, err := h.Evaluate(context.Background(), models.EvaluationRequest{Payload: "## Plan", Kind: models.KindPlan})
	if err != nil {
		t.Fatalf("second Evaluate() error = %v", err)
	}
	if second.RequestID == first.RequestID {
		t.Fatal("plan evaluations are not cacheable, each call should mint a new request id")
	}
}

func TestConfirmRecordsAgreement(t *testing.T) {
	h := newTestHandler(t, nil)
	res := h.Confirm(ConfirmArgs{RequestID: "r1", Agreed: true})
	if !res.CanProceed {
		t.Fatal("expected CanProceed true when agreed")
	}
	if !h.confirmed("r1") {
		t.Fatal("expected confirmation to be recorded")
	}
	if h.confirmed("unknown") {
		t.Fatal("unknown request id should report unconfirmed")
	}
}

func TestFinalCheckWithoutPreviousRequestDoesNotCertifyWithoutConsensus(t *testing.T) {
	h := newTestHandler(t, func(c *config.Config) {
		c.Consensus.DefaultRule = config.RuleWeak
		c.Consensus.MinScore = 0
	})
	result, err := h.FinalCheck(context.Background(), FinalCheckArgs{Code: "func f() {}", Language: "go"})
	if err != nil {
		t.Fatalf("FinalCheck() error = %v", err)
	}
	// Zero votes never pass consensus regardless of min_score, so this
	// should not be certified.
	if result.Certified {
		t.Fatal("zero-vote evaluation should never certify")
	}
	if result.CertificateID != "" {
		t.Fatal("uncertified result must not carry a certificate id")
	}
}

func TestFinalCheckWithUnconfirmedPreviousRequestBlocksCertification(t *testing.T) {
	h := newTestHandler(t, nil)
	result, err := h.FinalCheck(context.Background(), FinalCheckArgs{
		Code: "func f() {}", Language: "go", PreviousRequestID: "never-confirmed",
	})
	if err != nil {
		t.Fatalf("FinalCheck() error = %v", err)
	}
	if result.Certified {
		t.Fatal("an unconfirmed previous_request_id must block certification")
	}
	if result.Message == "" {
		t.Fatal("expected a message explaining the pending confirmation")
	}
}

func TestStatusReportsConfiguredConsensusRule(t *testing.T) {
	h := newTestHandler(t, func(c *config.Config) {
		c.Consensus.DefaultRule = config.RuleGolden
	})
	status := h.Status(context.Background())
	if status.ConsensusRule != "golden" {
		t.Fatalf("consensus rule = %q, want golden", status.ConsensusRule)
	}
	if status.ReasoningEnabled {
		t.Fatal("reasoning bank was not wired for this handler, ReasoningEnabled should be false")
	}
	if len(status.Reviewers) != 3 {
		t.Fatalf("reviewers = %d, want 3", len(status.Reviewers))
	}
	for _, r := range status.Reviewers {
		if r.Enabled {
			t.Fatalf("reviewer %s should be disabled in this test config", r.Name)
		}
	}
}

func TestReviewPlanReviewCodeReviewTestsWireKindCorrectly(t *testing.T) {
	h := newTestHandler(t, nil)
	ctx := context.Background()

	plan, err := h.ReviewPlan(ctx, ReviewPlanArgs{Plan: "# Step 1\ndo the thing"})
	if err != nil {
		t.Fatalf("ReviewPlan() error = %v", err)
	}
	if plan.RequestID == "" {
		t.Fatal("expected a request id")
	}

	code, err := h.ReviewCode(ctx, ReviewCodeArgs{Code: "func f() {}", Language: "go"})
	if err != nil {
		t.Fatalf("ReviewCode() error = %v", err)
	}
	if code.RequestID == "" {
		t.Fatal("expected a request id")
	}

	tests, err := h.ReviewTests(ctx, ReviewTestsArgs{Tests: "func TestX(t *testing.T) {}", Language: "go"})
	if err != nil {
		t.Fatalf("ReviewTests() error = %v", err)
	}
	if tests.RequestID == "" {
		t.Fatal("expected a request id")
	}
}
