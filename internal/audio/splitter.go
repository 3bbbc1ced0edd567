package audio

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"viddigest/internal/executor"
	"viddigest/internal/format"
)

// DefaultSizeCeiling is the largest chunk size the transcription provider
// accepts, with headroom under its hard 25 MB limit.
const DefaultSizeCeiling = 18 * 1024 * 1024

// Splitter turns one audio file into size-bounded FLAC chunks.
type Splitter struct {
	ffmpegPath  string
	ffprobePath string
	runner      executor.Runner
	sizeCeiling int64
	stderr      io.Writer
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithSplitRunner overrides the command runner, mainly for tests.
func WithSplitRunner(r executor.Runner) SplitterOption {
	return func(s *Splitter) { s.runner = r }
}

// WithSizeCeiling sets the per-chunk size bound in bytes.
func WithSizeCeiling(bytes int64) SplitterOption {
	return func(s *Splitter) { s.sizeCeiling = bytes }
}

// WithSplitStderr sets the writer for progress and warning messages.
func WithSplitStderr(w io.Writer) SplitterOption {
	return func(s *Splitter) { s.stderr = w }
}

// NewSplitter creates a Splitter using the given ffmpeg and ffprobe
// binaries.
func NewSplitter(ffmpegPath, ffprobePath string, opts ...SplitterOption) *Splitter {
	s := &Splitter{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		runner:      executor.OSRunner{},
		sizeCeiling: DefaultSizeCeiling,
		stderr:      io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Duration reports the length of an audio file in seconds via ffprobe,
// falling back to parsing ffmpeg's banner when ffprobe fails.
func (s *Splitter) Duration(ctx context.Context, audioFile string) (float64, error) {
	out, probeErr := s.runner.Output(ctx, s.ffprobePath,
		"-v", "quiet",
		"-print_format", "csv=p=0",
		"-show_entries", "format=duration",
		audioFile,
	)
	if probeErr == nil {
		seconds, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
		if err == nil && seconds > 0 {
			return seconds, nil
		}
		probeErr = fmt.Errorf("ffprobe reported %q", strings.TrimSpace(out))
	}

	seconds, err := s.durationFromFFmpeg(ctx, audioFile)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDurationUnavailable, probeErr)
	}
	return seconds, nil
}

// durationPattern matches the "Duration: HH:MM:SS.cc" line ffmpeg
// prints while reading its input.
var durationPattern = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)

func (s *Splitter) durationFromFFmpeg(ctx context.Context, audioFile string) (float64, error) {
	// FFmpeg returns non-zero for a null output run even when it
	// successfully reads file info, so parse whatever it produced.
	output, err := s.runner.CombinedOutput(ctx, s.ffmpegPath,
		"-i", audioFile,
		"-f", "null", "-",
	)
	if err != nil && len(output) == 0 {
		return 0, err
	}

	matches := durationPattern.FindStringSubmatch(string(output))
	if matches == nil {
		return 0, fmt.Errorf("no duration in ffmpeg output")
	}
	h, _ := strconv.Atoi(matches[1])
	m, _ := strconv.Atoi(matches[2])
	sec, _ := strconv.Atoi(matches[3])
	frac, _ := strconv.ParseFloat("0."+matches[4], 64)
	return float64(h*3600+m*60+sec) + frac, nil
}

// Split divides audioFile into chunk_NN.flac files under chunksDir and
// returns their paths in segment order. An already-populated chunks
// directory short-circuits splitting entirely; chunk counts that no
// longer match the current plan only produce a warning. Segments whose
// encode fails are dropped with a warning so transcription can proceed
// on the rest.
func (s *Splitter) Split(ctx context.Context, audioFile, chunksDir string) ([]string, error) {
	info, err := os.Stat(audioFile)
	if err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAudio, audioFile)
	}

	if existing, err := existingChunks(chunksDir); err != nil {
		return nil, err
	} else if len(existing) > 0 {
		fmt.Fprintf(s.stderr, "Chunks already exist: %d files\n", len(existing))
		if want := expectedChunkCount(info.Size(), s.sizeCeiling); len(existing) != want {
			fmt.Fprintf(s.stderr,
				"Warning: found %d chunks but current audio would split into %d; delete %s to resplit\n",
				len(existing), want, chunksDir)
		}
		return existing, nil
	}

	if info.Size() <= s.sizeCeiling {
		target := filepath.Join(chunksDir, "chunk_01.flac")
		if err := copyFile(audioFile, target); err != nil {
			return nil, fmt.Errorf("copy audio to chunk: %w", err)
		}
		fmt.Fprintf(s.stderr, "File is already under %s\n", format.SizeMB(s.sizeCeiling))
		return []string{target}, nil
	}

	duration, err := s.Duration(ctx, audioFile)
	if err != nil {
		return nil, err
	}

	segments, err := Plan(duration, info.Size(), s.sizeCeiling)
	if err != nil {
		return nil, err
	}

	var chunks []string
	for _, seg := range segments {
		target := filepath.Join(chunksDir, seg.OutputName())
		if _, err := s.runner.CombinedOutput(ctx, s.ffmpegPath,
			"-i", audioFile,
			"-ss", formatSeconds(seg.Start),
			"-t", formatSeconds(seg.Duration),
			"-ar", "16000",
			"-ac", "1",
			"-map", "0:a",
			"-c:a", "flac",
			target,
		); err != nil {
			fmt.Fprintf(s.stderr, "Error creating chunk %d: %v\n", seg.Index, err)
			continue
		}
		chunks = append(chunks, target)
		if chunkInfo, err := os.Stat(target); err == nil {
			fmt.Fprintf(s.stderr, "Created chunk: %s (%s)\n",
				filepath.Base(target), format.SizeMB(chunkInfo.Size()))
		}
	}
	return chunks, nil
}

func existingChunks(chunksDir string) ([]string, error) {
	entries, err := os.ReadDir(chunksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chunks directory: %w", err)
	}

	var chunks []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".flac") {
			continue
		}
		chunks = append(chunks, filepath.Join(chunksDir, entry.Name()))
	}
	sort.Strings(chunks)
	return chunks, nil
}

func expectedChunkCount(totalBytes, ceilingBytes int64) int {
	if totalBytes <= ceilingBytes {
		return 1
	}
	return int(math.Ceil(float64(totalBytes) / float64(ceilingBytes)))
}

// formatSeconds renders a float without exponent notation so ffmpeg
// accepts it as a time value.
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
