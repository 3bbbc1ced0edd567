package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Notes:
// - White-box testing (package config) to test internal parseFile.
// - Uses t.TempDir() + t.Setenv("XDG_CONFIG_HOME") for I/O isolation.
// - Tests using t.Setenv are NOT parallel (incompatible with t.Parallel).
//
// Coverage gaps (intentional - rare I/O errors not worth mocking):
// - os.UserHomeDir() failures in dir(), ExpandPath()
// - Write errors in writeFile() (disk full, permission denied mid-write)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// writeConfigFile creates a config file in the given directory.
func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, "viddigest")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvBaseDir, "")
	t.Setenv(EnvModel, "")
	return dir
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != DefaultBaseDir {
		t.Errorf("BaseDir = %q, want default %q", cfg.BaseDir, DefaultBaseDir)
	}
	if cfg.Model != "" {
		t.Errorf("Model = %q, want empty", cfg.Model)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := isolate(t)
	writeConfigFile(t, dir, "base-dir=/data/videos\nmodel=openai/gpt-oss-120b\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != "/data/videos" {
		t.Errorf("BaseDir = %q", cfg.BaseDir)
	}
	if cfg.Model != "openai/gpt-oss-120b" {
		t.Errorf("Model = %q", cfg.Model)
	}
}

func TestLoadEnvFallback(t *testing.T) {
	isolate(t)
	t.Setenv(EnvBaseDir, "/env/videos")
	t.Setenv(EnvModel, "env-model")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != "/env/videos" {
		t.Errorf("BaseDir = %q, want env value", cfg.BaseDir)
	}
	if cfg.Model != "env-model" {
		t.Errorf("Model = %q, want env value", cfg.Model)
	}
}

func TestLoadFileBeatsEnv(t *testing.T) {
	dir := isolate(t)
	writeConfigFile(t, dir, "base-dir=/file/videos\n")
	t.Setenv(EnvBaseDir, "/env/videos")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != "/file/videos" {
		t.Errorf("BaseDir = %q, want file value", cfg.BaseDir)
	}
}

func TestLoadInvalidSyntax(t *testing.T) {
	dir := isolate(t)
	writeConfigFile(t, dir, "this is not a key value pair\n")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want syntax error")
	}
}

// ---------------------------------------------------------------------------
// Save / Get / List
// ---------------------------------------------------------------------------

func TestSaveAndGet(t *testing.T) {
	isolate(t)

	if err := Save(KeyBaseDir, "/saved/videos"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Get(KeyBaseDir)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "/saved/videos" {
		t.Errorf("Get() = %q", got)
	}
}

func TestSavePreservesOtherKeys(t *testing.T) {
	isolate(t)

	if err := Save(KeyBaseDir, "/videos"); err != nil {
		t.Fatal(err)
	}
	if err := Save(KeyModel, "some-model"); err != nil {
		t.Fatal(err)
	}

	all, err := List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all[KeyBaseDir] != "/videos" || all[KeyModel] != "some-model" {
		t.Errorf("List() = %v", all)
	}
}

func TestGetMissingKey(t *testing.T) {
	isolate(t)

	got, err := Get("no-such-key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "" {
		t.Errorf("Get() = %q, want empty", got)
	}
}

func TestListNoFile(t *testing.T) {
	isolate(t)

	all, err := List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("List() = %v, want empty", all)
	}
}

// ---------------------------------------------------------------------------
// parseFile
// ---------------------------------------------------------------------------

func TestParseFileSkipsCommentsAndBlanks(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "config")
	content := "# comment\n\nbase-dir = /videos \n  # indented comment\nmodel=m\n"
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := parseFile(p)
	if err != nil {
		t.Fatalf("parseFile() error = %v", err)
	}
	if data["base-dir"] != "/videos" {
		t.Errorf("base-dir = %q, want trimmed value", data["base-dir"])
	}
	if len(data) != 2 {
		t.Errorf("parsed %d keys, want 2", len(data))
	}
}

// ---------------------------------------------------------------------------
// ValidBaseDir / ExpandPath
// ---------------------------------------------------------------------------

func TestValidBaseDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := ValidBaseDir(dir); err != nil {
		t.Errorf("ValidBaseDir(existing) error = %v", err)
	}

	missing := filepath.Join(dir, "new", "nested")
	if err := ValidBaseDir(missing); err != nil {
		t.Errorf("ValidBaseDir(missing) error = %v", err)
	}
	if info, err := os.Stat(missing); err != nil || !info.IsDir() {
		t.Error("missing base-dir not created")
	}

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ValidBaseDir(file); err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("ValidBaseDir(file) error = %v, want not-a-directory", err)
	}

	if err := ValidBaseDir(""); err == nil {
		t.Error("ValidBaseDir(empty) error = nil")
	}
}

func TestExpandPath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/videos"); got != filepath.Join(home, "videos") {
		t.Errorf("ExpandPath(~/videos) = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(abs) = %q", got)
	}
}
