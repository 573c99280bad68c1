// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brpub/brpub/internal/config"
	"github.com/brpub/brpub/internal/issue"
	"github.com/brpub/brpub/pkg/types"
)

func runRoot(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCommand(app)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestConfigInit_WritesAndRefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")
	app := NewApp(Dependencies{})

	out, err := runRoot(t, app, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output %q does not name the file", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "user_agent:") {
		t.Errorf("unexpected config content:\n%s", data)
	}

	_, err = runRoot(t, app, "--config", path, "config", "init")
	if !errors.Is(err, config.ErrConfigExists) {
		t.Fatalf("second init error = %v, want ErrConfigExists", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !ae.HasSuggestions() {
		t.Error("overwrite refusal should be actionable")
	}

	if _, err := runRoot(t, app, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := configWithRegistry("/src/registry")
	app := NewApp(Dependencies{Config: &fakeConfig{cfg: cfg, source: "/home/me/.config/brpub/config.cue"}})

	out, err := runRoot(t, app, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"Current Configuration", "/home/me/.config/brpub/config.cue", `path: "/src/registry"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestConfigShow_Defaults(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{Config: &fakeConfig{cfg: config.DefaultConfig()}})
	out, err := runRoot(t, app, "config", "show", "--module", "/src/foo")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "(using defaults)") {
		t.Errorf("output lacks the defaults marker:\n%s", out)
	}
}

func TestConfigShow_LoadError(t *testing.T) {
	t.Parallel()

	cfgs := &fakeConfig{err: errors.New("field not allowed")}
	app := NewApp(Dependencies{Config: cfgs})

	_, err := runRoot(t, app, "config", "show", "--module", "/src/foo")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != types.ExitUsage {
		t.Fatalf("error = %v, want usage ExitError", err)
	}
	if cfgs.opts[0].ModuleDir != "/src/foo" {
		t.Errorf("--module not forwarded: %+v", cfgs.opts[0])
	}
}

func TestConfigPath_Explicit(t *testing.T) {
	t.Parallel()

	out, err := runRoot(t, NewApp(Dependencies{}), "--config", "/etc/brpub.cue", "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != "/etc/brpub.cue" {
		t.Errorf("config path = %q", out)
	}
}
