package source

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"viddigest/internal/executor"
)

// Downloader fetches the best audio track of a video as 16 kHz mono FLAC
// via yt-dlp.
type Downloader struct {
	ytDlpPath string
	runner    executor.Runner
	stderr    io.Writer
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithRunner overrides the command runner, mainly for tests.
func WithRunner(r executor.Runner) DownloaderOption {
	return func(d *Downloader) { d.runner = r }
}

// WithStderr sets the writer for progress and warning messages.
func WithStderr(w io.Writer) DownloaderOption {
	return func(d *Downloader) { d.stderr = w }
}

// NewDownloader creates a Downloader using the yt-dlp binary at ytDlpPath.
func NewDownloader(ytDlpPath string, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		ytDlpPath: ytDlpPath,
		runner:    executor.OSRunner{},
		stderr:    io.Discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches the audio for url into ws, returning the path of the
// resulting audio.flac. A cached non-empty audio file short-circuits the
// download entirely.
func (d *Downloader) Download(ctx context.Context, url string, ws Workspace) (string, error) {
	target := ws.AudioPath()
	if fileCached(target) {
		fmt.Fprintf(d.stderr, "Audio already exists: %s\n", target)
		return target, nil
	}

	args := []string{
		"-f", "bestaudio",
		"--extract-audio",
		"--audio-format", "flac",
		"--postprocessor-args", "ffmpeg:-ar 16000 -ac 1",
		"-o", filepath.Join(ws.AudioDir, "audio.%(ext)s"),
		url,
	}

	out, err := d.runner.CombinedOutput(ctx, d.ytDlpPath, args...)
	if err != nil {
		return "", fmt.Errorf("%w: %v\noutput: %s", ErrDownloadFailed, err, out)
	}
	if !fileCached(target) {
		return "", fmt.Errorf("%w: yt-dlp reported success but %s is missing or empty",
			ErrDownloadFailed, target)
	}

	fmt.Fprintf(d.stderr, "Download successful: %s\n", target)
	return target, nil
}
