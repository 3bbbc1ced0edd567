package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// Coverage Notes:
// - Exists: missing file, empty file treated as absent, non-empty hit,
//   directory is not an artifact.
// - Read/Write round trip and read of a missing key.
// - List: prefix and suffix filtering, empty files skipped, lexical
//   order, missing root.

func newTestStore(t *testing.T) *DirStore {
	t.Helper()
	s, err := NewDirStore(filepath.Join(t.TempDir(), "artifacts"))
	if err != nil {
		t.Fatalf("NewDirStore() error = %v", err)
	}
	return s
}

func TestExists(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if s.Exists("missing.txt") {
		t.Error("Exists() = true for missing artifact")
	}

	if err := os.WriteFile(s.Path("empty.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if s.Exists("empty.txt") {
		t.Error("Exists() = true for empty artifact")
	}

	if err := s.Write("full.txt", "content"); err != nil {
		t.Fatal(err)
	}
	if !s.Exists("full.txt") {
		t.Error("Exists() = false for written artifact")
	}

	if err := os.Mkdir(s.Path("subdir"), 0o755); err != nil {
		t.Fatal(err)
	}
	if s.Exists("subdir") {
		t.Error("Exists() = true for a directory")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.Write("transcript.txt", "hello world"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := s.Read("transcript.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "hello world" {
		t.Errorf("Read() = %q, want %q", got, "hello world")
	}
}

func TestReadMissingKey(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.Read("nope.txt"); err == nil {
		t.Error("Read() error = nil for missing artifact")
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, name := range []string{"chunk_02_transcript.txt", "chunk_01_transcript.txt"} {
		if err := s.Write(name, "text"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Write("audio.flac", "binaryish"); err != nil {
		t.Fatal(err)
	}
	// Shares the suffix but not the prefix.
	if err := s.Write("full_transcript.txt", "combined"); err != nil {
		t.Fatal(err)
	}
	// Empty files are not cached artifacts.
	if err := os.WriteFile(s.Path("chunk_03_transcript.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := s.List("chunk_", "_transcript.txt")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"chunk_01_transcript.txt", "chunk_02_transcript.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestListMissingRoot(t *testing.T) {
	t.Parallel()

	s := &DirStore{root: filepath.Join(t.TempDir(), "never-created")}
	got, err := s.List("", ".txt")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got != nil {
		t.Errorf("List() = %v, want nil", got)
	}
}
