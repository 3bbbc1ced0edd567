package source

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

// Coverage Notes:
// - Download: cache short-circuit, yt-dlp invocation shape, command
//   failure, and the success-without-output edge where yt-dlp exits zero
//   but produced no file.

// fakeRunner records invocations and can create the expected output file
// as a side effect, standing in for yt-dlp.
type fakeRunner struct {
	calls     [][]string
	err       error
	createOut string
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return "", f.err
}

func (f *fakeRunner) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return []byte("yt-dlp: error"), f.err
	}
	if f.createOut != "" {
		if err := os.WriteFile(f.createOut, []byte("flac data"), 0o644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func testWorkspace(t *testing.T) Workspace {
	t.Helper()
	ws, err := CreateWorkspace(t.TempDir(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestDownloadCacheHit(t *testing.T) {
	t.Parallel()

	ws := testWorkspace(t)
	if err := os.WriteFile(ws.AudioPath(), []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{}
	d := NewDownloader("yt-dlp", WithRunner(runner))

	got, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", ws)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got != ws.AudioPath() {
		t.Errorf("Download() = %q, want %q", got, ws.AudioPath())
	}
	if len(runner.calls) != 0 {
		t.Errorf("yt-dlp invoked %d times on cache hit, want 0", len(runner.calls))
	}
}

func TestDownloadInvokesYtDlp(t *testing.T) {
	t.Parallel()

	ws := testWorkspace(t)
	runner := &fakeRunner{createOut: ws.AudioPath()}
	d := NewDownloader("/opt/bin/yt-dlp", WithRunner(runner))

	got, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", ws)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got != ws.AudioPath() {
		t.Errorf("Download() = %q, want %q", got, ws.AudioPath())
	}

	if len(runner.calls) != 1 {
		t.Fatalf("yt-dlp invoked %d times, want 1", len(runner.calls))
	}
	call := strings.Join(runner.calls[0], " ")
	for _, fragment := range []string{
		"/opt/bin/yt-dlp",
		"-f bestaudio",
		"--extract-audio",
		"--audio-format flac",
		"ffmpeg:-ar 16000 -ac 1",
		"https://youtu.be/dQw4w9WgXcQ",
	} {
		if !strings.Contains(call, fragment) {
			t.Errorf("yt-dlp call missing %q: %s", fragment, call)
		}
	}
}

func TestDownloadCommandFailure(t *testing.T) {
	t.Parallel()

	ws := testWorkspace(t)
	runner := &fakeRunner{err: errors.New("exit status 1")}
	d := NewDownloader("yt-dlp", WithRunner(runner))

	_, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", ws)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("Download() error = %v, want ErrDownloadFailed", err)
	}
}

func TestDownloadSuccessWithoutOutput(t *testing.T) {
	t.Parallel()

	ws := testWorkspace(t)
	runner := &fakeRunner{} // exit zero, no file created
	d := NewDownloader("yt-dlp", WithRunner(runner))

	_, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", ws)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("Download() error = %v, want ErrDownloadFailed", err)
	}
}
