// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"os/exec"
	"strings"
	"testing"
)

// RequireGit skips the test when no git executable is on PATH.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// InitRepo turns dir into a git working tree with a local identity and
// commit signing disabled.
func InitRepo(t testing.TB, dir string) {
	t.Helper()
	Git(t, dir, "init", "--quiet")
	Git(t, dir, "config", "user.email", "release@example.com")
	Git(t, dir, "config", "user.name", "Release Bot")
	Git(t, dir, "config", "commit.gpgsign", "false")
	Git(t, dir, "config", "tag.gpgsign", "false")
}

// CommitAll stages everything in dir and commits it with message.
func CommitAll(t testing.TB, dir, message string) {
	t.Helper()
	Git(t, dir, "add", ".")
	Git(t, dir, "commit", "--quiet", "-m", message)
}

// Git runs git in dir and returns its combined output. The test fails on a
// non-zero exit.
func Git(t testing.TB, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...) //nolint:noctx // test setup
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}
