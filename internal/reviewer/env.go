package reviewer

import (
	"os"
	"os/exec"
	"strings"
)

// cleanEnvPassthrough is the fixed allow-list of environment variables
// forwarded to reviewer subprocesses. Grounded on the teacher's
// internal/claude.SetCleanEnv: the child inherits a filtered env rather
// than the full parent env, so a reviewer targeting one provider never
// sees another provider's API key sitting in the parent's environment.
var cleanEnvPassthrough = []string{
	"PATH", "HOME", "TMPDIR", "TEMP", "TMP",
	"LANG", "LC_ALL", "SHELL", "USER",
}

// SetCleanEnv replaces cmd's environment with the filtered allow-list
// followed by extra (KEY=VALUE entries); anything already in cmd.Env is
// discarded.
func SetCleanEnv(cmd *exec.Cmd, extra ...string) {
	env := make([]string, 0, len(cleanEnvPassthrough)+len(extra))
	for _, key := range cleanEnvPassthrough {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	env = append(env, extra...)
	cmd.Env = env
}

// hasErrorNoise reports whether stderr output should be logged: it must
// contain "error"/"Error" and must not contain the known-benign
// "Loaded cached credentials" notice some CLI reviewers emit on stderr.
func hasErrorNoise(stderr string) bool {
	if stderr == "" {
		return false
	}
	if strings.Contains(stderr, "Loaded cached credentials") {
		return false
	}
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "error")
}
