// Package source resolves video URLs into workspace directories and
// downloads their audio tracks.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var (
	// ErrInvalidURL indicates no video ID could be extracted from the URL.
	ErrInvalidURL = errors.New("invalid video URL")

	// ErrDownloadFailed indicates the audio download did not produce a
	// usable file.
	ErrDownloadFailed = errors.New("audio download failed")
)

// idPatterns are tried in order; the first capture group wins. Video IDs
// are exactly 11 characters from the YouTube ID alphabet.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:vi/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([0-9A-Za-z_-]{11})`),
}

// ExtractVideoID pulls the 11-character video ID out of a URL. Supports
// watch, short-link, embed and vi URL shapes.
func ExtractVideoID(url string) (string, error) {
	for _, pattern := range idPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: no video ID in %q", ErrInvalidURL, url)
}

// Workspace is the per-video directory layout every stage writes into.
type Workspace struct {
	VideoID        string
	Root           string
	AudioDir       string
	ChunksDir      string
	TranscriptsDir string
	AnalysisDir    string
}

// AudioPath returns the canonical location of the downloaded audio track.
func (w Workspace) AudioPath() string {
	return filepath.Join(w.AudioDir, "audio.flac")
}

// CreateWorkspace builds the directory tree for a video under baseDir,
// creating any directories that do not already exist. Existing contents
// are left untouched so interrupted runs can resume.
func CreateWorkspace(baseDir, videoID string) (Workspace, error) {
	ws := Workspace{
		VideoID: videoID,
		Root:    filepath.Join(baseDir, videoID),
	}
	ws.AudioDir = filepath.Join(ws.Root, "audio")
	ws.ChunksDir = filepath.Join(ws.Root, "chunks")
	ws.TranscriptsDir = filepath.Join(ws.Root, "transcripts")
	ws.AnalysisDir = filepath.Join(ws.Root, "analysis")

	for _, dir := range []string{ws.Root, ws.AudioDir, ws.ChunksDir, ws.TranscriptsDir, ws.AnalysisDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Workspace{}, fmt.Errorf("create workspace directory %q: %w", dir, err)
		}
	}
	return ws, nil
}

// fileCached reports whether path exists with non-zero size.
func fileCached(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
