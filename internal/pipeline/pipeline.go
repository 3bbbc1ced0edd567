// Package pipeline orchestrates a full video run: download, split,
// transcribe, combine, report and analyze, with every stage resuming
// from cached artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"viddigest/internal/analyze"
	"viddigest/internal/audio"
	"viddigest/internal/format"
	"viddigest/internal/metadata"
	"viddigest/internal/source"
	"viddigest/internal/store"
	"viddigest/internal/transcribe"
)

// CostMetadataName is the artifact key of the saved cost ledger.
const CostMetadataName = "cost_metadata.json"

var (
	// ErrNoChunks indicates splitting produced no usable chunks.
	ErrNoChunks = errors.New("no audio chunks produced")

	// ErrNoTranscripts indicates no chunk could be transcribed.
	ErrNoTranscripts = errors.New("no transcripts produced")
)

// Downloader fetches a video's audio track into a workspace.
type Downloader interface {
	Download(ctx context.Context, url string, ws source.Workspace) (string, error)
}

// Splitter turns an audio file into size-bounded chunks and probes
// durations for the metadata report.
type Splitter interface {
	Split(ctx context.Context, audioFile, chunksDir string) ([]string, error)
	Duration(ctx context.Context, audioFile string) (float64, error)
}

// Compile-time interface compliance checks.
var (
	_ Downloader = (*source.Downloader)(nil)
	_ Splitter   = (*audio.Splitter)(nil)
)

// Deps are the stage implementations the pipeline drives.
type Deps struct {
	Downloader  Downloader
	Splitter    Splitter
	Transcriber transcribe.Transcriber
	Client      analyze.Client
}

// Outcome is what a completed run produced.
type Outcome struct {
	VideoID        string
	Workspace      source.Workspace
	AudioFile      string
	Chunks         []string
	TranscriptKeys []string
	Analysis       analyze.Result
}

// Pipeline runs the full processing sequence for one video URL.
type Pipeline struct {
	baseDir string
	deps    Deps
	prompt  string
	output  io.Writer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPrompt sets the transcription context prompt.
func WithPrompt(prompt string) Option {
	return func(p *Pipeline) { p.prompt = prompt }
}

// WithOutput sets the writer for progress and report output.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.output = w }
}

// New creates a Pipeline rooted at baseDir.
func New(baseDir string, deps Deps, opts ...Option) *Pipeline {
	p := &Pipeline{
		baseDir: baseDir,
		deps:    deps,
		output:  io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one video URL end to end. Acquisition failures (invalid
// URL, download, splitting, transcription) are fatal; analysis failures
// are reported but leave the transcripts usable, so the run still
// succeeds.
func (p *Pipeline) Run(ctx context.Context, url string) (*Outcome, error) {
	videoID, err := source.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(p.output, "Processing video ID: %s\n", videoID)

	ws, err := source.CreateWorkspace(p.baseDir, videoID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(p.output, "Working directory: %s\n", ws.Root)

	audioFile, err := p.deps.Downloader.Download(ctx, url, ws)
	if err != nil {
		return nil, err
	}

	chunks, err := p.deps.Splitter.Split(ctx, audioFile, ws.ChunksDir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	transcripts, err := store.NewDirStore(ws.TranscriptsDir)
	if err != nil {
		return nil, err
	}

	keys, err := transcribe.TranscribeAll(ctx, p.deps.Transcriber, transcripts, chunks, p.prompt, p.output)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNoTranscripts
	}

	combinedKey, err := transcribe.Combine(keys, transcripts, p.output)
	if err != nil {
		return nil, err
	}

	report := metadata.Collect(ctx, p.deps.Splitter.Duration, audioFile, chunks, transcripts, keys, combinedKey)
	report.Render(p.output)

	outcome := &Outcome{
		VideoID:        videoID,
		Workspace:      ws,
		AudioFile:      audioFile,
		Chunks:         chunks,
		TranscriptKeys: keys,
	}

	analysis, err := store.NewDirStore(ws.AnalysisDir)
	if err != nil {
		return nil, err
	}

	// Analysis works from the transcripts directory rather than this
	// run's transcription results, so chunks cached by earlier runs are
	// summarized too.
	chunkTranscripts, err := transcripts.List("chunk_", "_transcript.txt")
	if err != nil {
		return outcome, err
	}

	fmt.Fprintf(p.output, "\nProcessing %d transcript chunks for summaries, then final analysis...\n", len(chunkTranscripts))
	analyzer := analyze.NewTranscriptAnalyzer(p.deps.Client, p.output)
	result, err := analyzer.AnalyzeChunks(ctx, transcripts, chunkTranscripts, analysis)
	if err != nil {
		return outcome, err
	}
	outcome.Analysis = result

	p.reportCosts(analysis)

	fmt.Fprintf(p.output, "\nProcessing complete!\nAll files saved in: %s\n", ws.Root)
	return outcome, nil
}

// reportCosts narrates the cost summary and persists the ledger when the
// client tracks spend.
func (p *Pipeline) reportCosts(analysis *store.DirStore) {
	reporter, ok := p.deps.Client.(analyze.CostReporter)
	if !ok {
		return
	}
	ledger := reporter.CostLedger()
	if ledger.Len() == 0 {
		return
	}

	s := ledger.Summarize()
	fmt.Fprintf(p.output, "\nLLM ANALYSIS COST SUMMARY\n")
	fmt.Fprintf(p.output, "Total API calls: %d\n", s.TotalCalls)
	fmt.Fprintf(p.output, "Successful calls: %d\n", s.SuccessfulCalls)
	fmt.Fprintf(p.output, "Failed calls: %d\n", s.FailedCalls)
	fmt.Fprintf(p.output, "Total tokens: %d (prompt %d, completion %d)\n",
		s.TotalTokens, s.PromptTokens, s.CompletionTokens)
	fmt.Fprintf(p.output, "Average tokens per call: %.1f\n", s.AverageTokensPerCall)
	fmt.Fprintf(p.output, "Actual usage calls: %d, estimated: %d\n",
		s.ActualUsageCalls, s.EstimatedUsageCalls)
	fmt.Fprintf(p.output, "Total duration: %s\n", format.Seconds(s.TotalDurationSeconds))
	fmt.Fprintf(p.output, "Model used: %s\n", s.ModelUsed)
	fmt.Fprintf(p.output, "Input cost: $%.6f\n", s.InputCostUSD)
	fmt.Fprintf(p.output, "Output cost: $%.6f\n", s.OutputCostUSD)
	fmt.Fprintf(p.output, "Total cost: $%.6f\n", s.TotalCostUSD)
	if s.InputPricePerMillion != "" {
		fmt.Fprintf(p.output, "Pricing: %s/1M input, %s/1M output\n",
			s.InputPricePerMillion, s.OutputPricePerMillion)
	}

	data, err := ledger.JSON()
	if err != nil {
		fmt.Fprintf(p.output, "Error encoding cost metadata: %v\n", err)
		return
	}
	if err := analysis.Write(CostMetadataName, string(data)); err != nil {
		fmt.Fprintf(p.output, "Error saving cost metadata: %v\n", err)
		return
	}
	fmt.Fprintf(p.output, "Cost metadata saved: %s\n", analysis.Path(CostMetadataName))
}
