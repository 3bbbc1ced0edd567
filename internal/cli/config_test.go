package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"viddigest/internal/config"
)

// Coverage Notes:
// - config set/get/list round trips through a real config file under
//   an isolated XDG_CONFIG_HOME.
// - Unknown keys rejected by every subcommand.
// - get falls back to environment variables when the file has no value.
//
// These tests mutate the process environment via t.Setenv, so they do
// not run in parallel.

// isolateConfig points the config package at a scratch directory and
// clears the override environment variables.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvBaseDir, "")
	t.Setenv(config.EnvModel, "")
}

func configEnv(t *testing.T) (*Env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	env := NewEnv(WithStdout(stdout), WithStderr(stderr))
	return env, stdout, stderr
}

func executeConfig(env *Env, args ...string) error {
	cmd := ConfigCmd(env)
	cmd.SetArgs(args)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func TestConfigSetGetRoundTrip(t *testing.T) {
	isolateConfig(t)
	env, stdout, stderr := configEnv(t)

	if err := executeConfig(env, "set", "model", "openai/gpt-oss-120b"); err != nil {
		t.Fatalf("config set error = %v", err)
	}
	if !strings.Contains(stderr.String(), "Set model = openai/gpt-oss-120b") {
		t.Errorf("set confirmation missing from stderr: %q", stderr.String())
	}

	if err := executeConfig(env, "get", "model"); err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "openai/gpt-oss-120b" {
		t.Errorf("config get model = %q", got)
	}
}

func TestConfigSetBaseDirExpandsAndValidates(t *testing.T) {
	isolateConfig(t)
	env, _, _ := configEnv(t)

	base := filepath.Join(t.TempDir(), "videos")
	if err := executeConfig(env, "set", "base-dir", base); err != nil {
		t.Fatalf("config set base-dir error = %v", err)
	}

	value, err := config.Get(config.KeyBaseDir)
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if value != base {
		t.Errorf("stored base-dir = %q, want %q", value, base)
	}
}

func TestConfigSetUnknownKey(t *testing.T) {
	isolateConfig(t)
	env, _, _ := configEnv(t)

	if err := executeConfig(env, "set", "volume", "11"); err == nil {
		t.Error("config set volume error = nil, want unknown key error")
	}
}

func TestConfigGetUnsetKeyPrintsNothing(t *testing.T) {
	isolateConfig(t)
	env, stdout, _ := configEnv(t)

	if err := executeConfig(env, "get", "model"); err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("config get unset key wrote %q", stdout.String())
	}
}

func TestConfigGetEnvFallback(t *testing.T) {
	isolateConfig(t)
	t.Setenv(config.EnvModel, "env-model")
	env, stdout, _ := configEnv(t)

	if err := executeConfig(env, "get", "model"); err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "env-model" {
		t.Errorf("config get model = %q, want env fallback", got)
	}
}

func TestConfigList(t *testing.T) {
	isolateConfig(t)
	env, stdout, _ := configEnv(t)

	base := t.TempDir()
	if err := executeConfig(env, "set", "base-dir", base); err != nil {
		t.Fatalf("config set error = %v", err)
	}
	if err := executeConfig(env, "set", "model", "openai/gpt-oss-120b"); err != nil {
		t.Fatalf("config set error = %v", err)
	}

	if err := executeConfig(env, "list"); err != nil {
		t.Fatalf("config list error = %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "base-dir="+base) {
		t.Errorf("list missing base-dir: %q", out)
	}
	if !strings.Contains(out, "model=openai/gpt-oss-120b") {
		t.Errorf("list missing model: %q", out)
	}
}
