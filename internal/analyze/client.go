// Package analyze produces per-chunk summaries and a final analysis from
// transcript text through Groq's chat completion API, recording every
// call attempt in a cost ledger.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"viddigest/internal/apierr"
)

// GroqBaseURL is the OpenAI-compatible endpoint for Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is the chat model used for analysis.
const DefaultModel = "openai/gpt-oss-120b"

// Request parameters fixed across analysis calls.
const (
	analysisTemperature = 1
	analysisMaxTokens   = 8192
)

// Client produces summaries from transcript text.
type Client interface {
	// ChunkSummary summarizes one transcript chunk.
	ChunkSummary(ctx context.Context, transcript string) (string, error)

	// FinalAnalysis folds all chunk summaries into the final result.
	FinalAnalysis(ctx context.Context, summaries string) (string, error)
}

// CostReporter is the optional cost tracking capability of a Client.
type CostReporter interface {
	CostLedger() *Ledger
}

// chatStream is the streaming response surface we consume.
// *openai.ChatCompletionStream implements it.
type chatStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// chatStreamer opens chat completion streams. Tests inject fakes;
// production wraps *openai.Client.
type chatStreamer interface {
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (chatStream, error)
}

// openaiStreamer adapts *openai.Client to chatStreamer.
type openaiStreamer struct {
	client *openai.Client
}

func (s openaiStreamer) CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (chatStream, error) {
	return s.client.CreateChatCompletionStream(ctx, req)
}

// Compile-time interface compliance checks.
var (
	_ Client       = (*GroqClient)(nil)
	_ CostReporter = (*GroqClient)(nil)
	_ chatStream   = (*openai.ChatCompletionStream)(nil)
)

// NewGroqChatClient builds the provider client pointed at Groq.
func NewGroqChatClient(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = GroqBaseURL
	return openai.NewClientWithConfig(cfg)
}

// GroqClient is a Client over Groq's streaming chat API. Every call
// attempt appends exactly one CallRecord to the ledger; calls are never
// retried so the ledger stays a faithful account of spend.
type GroqClient struct {
	streamer chatStreamer
	model    string
	ledger   *Ledger
	output   io.Writer
}

// GroqClientOption configures a GroqClient.
type GroqClientOption func(*GroqClient)

// WithModel overrides the analysis model.
func WithModel(model string) GroqClientOption {
	return func(c *GroqClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithOutput sets the writer streamed response text is echoed to.
func WithOutput(w io.Writer) GroqClientOption {
	return func(c *GroqClient) { c.output = w }
}

// withStreamer overrides the stream opener, for tests.
func withStreamer(s chatStreamer) GroqClientOption {
	return func(c *GroqClient) { c.streamer = s }
}

// NewGroqClient creates a GroqClient over the given provider client.
func NewGroqClient(client *openai.Client, opts ...GroqClientOption) *GroqClient {
	c := &GroqClient{
		streamer: openaiStreamer{client: client},
		model:    DefaultModel,
		ledger:   &Ledger{},
		output:   io.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CostLedger returns the append-only record of every call attempt.
func (c *GroqClient) CostLedger() *Ledger {
	return c.ledger
}

func (c *GroqClient) ChunkSummary(ctx context.Context, transcript string) (string, error) {
	return c.call(ctx, chunkSystemPrompt, transcript, CallTypeChunkSummary)
}

func (c *GroqClient) FinalAnalysis(ctx context.Context, summaries string) (string, error) {
	return c.call(ctx, finalSystemPrompt, summaries, CallTypeFinalAnalysis)
}

// call streams one chat completion, echoing text as it arrives and
// recording the attempt in the ledger whether it succeeds or fails.
func (c *GroqClient) call(ctx context.Context, systemPrompt, userPrompt, callType string) (string, error) {
	start := now()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature:         analysisTemperature,
		MaxCompletionTokens: analysisMaxTokens,
		TopP:                1,
		Stream:              true,
		StreamOptions:       &openai.StreamOptions{IncludeUsage: true},
	}

	text, usage, err := c.stream(ctx, req)
	elapsed := now().Sub(start)

	rec := CallRecord{
		Timestamp:       start.Format(time.RFC3339),
		CallType:        callType,
		Model:           c.model,
		DurationSeconds: round2(elapsed.Seconds()),
	}

	if err != nil {
		rec.Error = err.Error()
		c.ledger.Append(rec)
		return "", fmt.Errorf("%s call: %w", callType, apierr.Classify(err))
	}

	rec.Temperature = analysisTemperature
	rec.MaxTokens = analysisMaxTokens
	if usage != nil {
		rec.UsageSource = UsageActual
		rec.PromptTokens = usage.PromptTokens
		rec.CompletionTokens = usage.CompletionTokens
		rec.TotalTokens = usage.TotalTokens
	} else {
		rec.UsageSource = UsageEstimate
		rec.PromptTokensEstimate = wordCount(systemPrompt) + wordCount(userPrompt)
		rec.CompletionTokensEstimate = wordCount(text)
		rec.TotalTokensEstimate = rec.PromptTokensEstimate + rec.CompletionTokensEstimate
	}
	c.ledger.Append(rec)
	return text, nil
}

// stream consumes the response stream, returning the accumulated text
// and the usage block from the final frame when the provider sent one.
func (c *GroqClient) stream(ctx context.Context, req openai.ChatCompletionRequest) (string, *openai.Usage, error) {
	stream, err := c.streamer.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = stream.Close() }()

	var sb strings.Builder
	var usage *openai.Usage
	for {
		frame, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, err
		}
		if frame.Usage != nil {
			usage = frame.Usage
		}
		if len(frame.Choices) > 0 {
			delta := frame.Choices[0].Delta.Content
			sb.WriteString(delta)
			fmt.Fprint(c.output, delta)
		}
	}
	fmt.Fprintln(c.output)

	return sb.String(), usage, nil
}

// wordCount is the token estimate fallback: whitespace-separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}
