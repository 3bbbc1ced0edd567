// Package transcribe converts audio chunks to text through Groq's
// whisper endpoint and assembles the per-chunk transcripts into one
// full transcript.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"viddigest/internal/apierr"
)

// ModelWhisperLargeV3Turbo is the Groq transcription model.
const ModelWhisperLargeV3Turbo = "whisper-large-v3-turbo"

// Default retry configuration for transient transcription failures.
const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
)

// Transcriber transcribes a single audio file to text.
type Transcriber interface {
	// Transcribe converts the audio file at audioPath to text. The prompt
	// gives the model domain context and may be empty.
	Transcribe(ctx context.Context, audioPath, prompt string) (string, error)
}

// audioTranscriber is the slice of the provider client we depend on.
// *openai.Client implements it implicitly, which lets tests inject fakes.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*GroqTranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// GroqTranscriber transcribes audio through Groq's OpenAI-compatible API
// with exponential backoff on transient errors.
type GroqTranscriber struct {
	client     audioTranscriber
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// GroqTranscriberOption configures a GroqTranscriber.
type GroqTranscriberOption func(*GroqTranscriber)

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) GroqTranscriberOption {
	return func(t *GroqTranscriber) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) GroqTranscriberOption {
	return func(t *GroqTranscriber) {
		if base > 0 {
			t.baseDelay = base
		}
		if max > 0 {
			t.maxDelay = max
		}
	}
}

// NewGroqTranscriber creates a GroqTranscriber over the given client.
func NewGroqTranscriber(client audioTranscriber, opts ...GroqTranscriberOption) *GroqTranscriber {
	t := &GroqTranscriber{
		client:     client,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe sends the audio file to the whisper model and returns the
// plain transcript text. Transient errors are retried with backoff.
func (t *GroqTranscriber) Transcribe(ctx context.Context, audioPath, prompt string) (string, error) {
	req := openai.AudioRequest{
		Model:       ModelWhisperLargeV3Turbo,
		FilePath:    audioPath,
		Prompt:      prompt,
		Format:      openai.AudioResponseFormatText,
		Temperature: 0,
	}

	cfg := apierr.RetryConfig{
		MaxRetries: t.maxRetries,
		BaseDelay:  t.baseDelay,
		MaxDelay:   t.maxDelay,
	}

	return apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return "", apierr.Classify(err)
		}
		return resp.Text, nil
	}, apierr.IsRetryable)
}

// artifactCache is the slice of the store we use for transcript files.
type artifactCache interface {
	Exists(key string) bool
	Read(key string) (string, error)
	Write(key string, content string) error
}

// TranscriptName maps a chunk file path to its transcript artifact key.
func TranscriptName(chunkPath string) string {
	base := filepath.Base(chunkPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_transcript.txt"
}

// TranscribeAll transcribes every chunk sequentially, writing each
// transcript into the cache as soon as it completes. Cached transcripts
// are not re-requested. Chunks whose audio is missing or whose
// transcription fails are skipped with a message; the returned keys
// cover only the successful transcripts, in chunk order.
func TranscribeAll(ctx context.Context, tr Transcriber, cache artifactCache, chunks []string, prompt string, progress io.Writer) ([]string, error) {
	var keys []string
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return keys, err
		}

		key := TranscriptName(chunk)
		if cache.Exists(key) {
			fmt.Fprintf(progress, "Transcription already exists: %s\n", key)
			keys = append(keys, key)
			continue
		}

		if info, err := os.Stat(chunk); err != nil || info.Size() == 0 {
			fmt.Fprintf(progress, "Audio file not found: %s\n", chunk)
			continue
		}

		text, err := tr.Transcribe(ctx, chunk, prompt)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return keys, err
			}
			fmt.Fprintf(progress, "Error transcribing %s: %v\n", chunk, err)
			continue
		}
		if err := cache.Write(key, text); err != nil {
			return keys, err
		}

		fmt.Fprintf(progress, "Transcribed: %s -> %s\n", filepath.Base(chunk), key)
		keys = append(keys, key)
	}
	return keys, nil
}
