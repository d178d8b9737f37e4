package reviewer

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/models"
)

// ErrTimeout is returned by Evaluate when the subprocess exceeds its
// configured timeout. Timeouts are fatal for that reviewer — no fallback
// vote is produced, per spec.md §4.A.
var ErrTimeout = errors.New("reviewer: timed out")

// ErrExecutorFailed wraps a spawn error other than "binary not found".
type ErrExecutorFailed struct{ Err error }

func (e *ErrExecutorFailed) Error() string { return "reviewer: executor failed: " + e.Err.Error() }
func (e *ErrExecutorFailed) Unwrap() error  { return e.Err }

// Adapter wraps one external reviewer subprocess.
type Adapter struct {
	name           string
	specialization string
	cfg            config.ExecutorConfig
	log            logger.Logger
}

// NewAdapter constructs an Adapter for the named reviewer.
func NewAdapter(name, specialization string, cfg config.ExecutorConfig, log logger.Logger) *Adapter {
	return &Adapter{name: name, specialization: specialization, cfg: cfg, log: log}
}

// Name returns the reviewer's display name (Codex, Gemini, Qwen).
func (a *Adapter) Name() string { return a.name }

// Command returns the configured binary name.
func (a *Adapter) Command() string { return a.cfg.Command }

// Specialization returns the reviewer's advisory specialization tag.
func (a *Adapter) Specialization() string { return a.specialization }

// Enabled reports whether this reviewer participates in consensus.
func (a *Adapter) Enabled() bool { return a.cfg.Enabled }

// IsAvailable launches the configured command with --version and reports
// exit-zero success within a short probe timeout.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	_, err := a.Version(ctx)
	return err == nil
}

// Version runs `<command> --version` and returns the first line of
// stdout.
func (a *Adapter) Version(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, a.cfg.Command, "--version")
	SetCleanEnv(cmd)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(first), nil
}

// Evaluate builds the review prompt, spawns the subprocess with the
// configured argv followed by the prompt as the final positional
// argument, enforces the configured timeout, and normalizes the output
// into a ModelVote.
//
// Failure semantics (spec.md §4.A):
//   - timeout -> ErrTimeout, no vote produced;
//   - command not found -> neutral Warn/50 vote, never an error;
//   - any other spawn error -> ErrExecutorFailed;
//   - parse failure -> degrades to keyword inference, never an error.
func (a *Adapter) Evaluate(ctx context.Context, req models.EvaluationRequest) (models.ModelVote, error) {
	prompt := BuildPrompt(req)
	args := append(append([]string{}, a.cfg.Args...), prompt)

	timeout := time.Duration(a.cfg.TimeoutSecs) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.cfg.Command, args...)
	SetCleanEnv(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return models.ModelVote{}, ErrTimeout
	}
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return a.notFoundVote(), nil
		}
		if _, isExit := err.(*exec.ExitError); !isExit {
			return models.ModelVote{}, &ErrExecutorFailed{Err: err}
		}
		// Non-zero exit is not authoritative per spec.md §6: some
		// reviewers return 0 with error text and vice versa, so keep
		// parsing stdout regardless.
	}

	if a.log != nil && hasErrorNoise(stderr.String()) {
		a.log.Warn("reviewer stderr", logger.F("reviewer", a.name), logger.F("stderr", truncate(stderr.String(), 500)))
	}

	return a.parseVote(stdout.String()), nil
}

func (a *Adapter) notFoundVote() models.ModelVote {
	return models.ModelVote{
		Reviewer:  a.name,
		Vote:      models.VoteWarn,
		Score:     50,
		Reasoning: "CLI not available",
	}
}

func (a *Adapter) parseVote(raw string) models.ModelVote {
	body := ExtractReviewerPayload(a.name, raw)
	if pv, ok := ParseStructured(body); ok {
		vote := models.Vote(strings.ToUpper(pv.Vote))
		if vote != models.VotePass && vote != models.VoteWarn && vote != models.VoteFail {
			vote = models.VoteWarn
		}
		return models.ModelVote{
			Reviewer:    a.name,
			Vote:        vote,
			Score:       pv.Score,
			Reasoning:   pv.Reasoning,
			Issues:      pv.Issues,
			Suggestions: pv.Suggestions,
		}
	}
	return KeywordInfer(a.name, body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
