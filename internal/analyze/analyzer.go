package analyze

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// FinalAnalysisName is the artifact key of the final analysis.
const FinalAnalysisName = "final_analysis.txt"

// artifactCache is the slice of the store the analyzer needs.
type artifactCache interface {
	Exists(key string) bool
	Read(key string) (string, error)
	Write(key string, content string) error
}

// transcriptReader fetches chunk transcripts by key.
type transcriptReader interface {
	Exists(key string) bool
	Read(key string) (string, error)
}

// ChunkSummary pairs a produced summary with the transcript it came from.
type ChunkSummary struct {
	Summary   string
	SourceKey string
}

// Result is the outcome of analyzing all transcript chunks.
// ClientUsed names the client implementation that produced it.
type Result struct {
	ChunkSummaries  map[string]ChunkSummary
	FinalAnalysis   string
	ChunksProcessed int
	ClientUsed      string
}

// TranscriptAnalyzer runs the two-stage analysis: one summary per chunk,
// then a final fold over all summaries.
type TranscriptAnalyzer struct {
	client Client
	output io.Writer
}

// NewTranscriptAnalyzer creates an analyzer over the given client.
// Progress and streamed text go to output.
func NewTranscriptAnalyzer(client Client, output io.Writer) *TranscriptAnalyzer {
	if output == nil {
		output = io.Discard
	}
	return &TranscriptAnalyzer{client: client, output: output}
}

// summaryName maps a 1-based chunk position to its summary artifact key.
func summaryName(position int) string {
	return fmt.Sprintf("chunk_%02d_summary.txt", position)
}

// AnalyzeChunks summarizes each transcript and folds the summaries into
// a final analysis. Transcript keys are processed in sorted order; the
// chunk label is the 1-based position in that order, so a missing or
// empty transcript leaves a gap in the labels rather than renumbering
// later chunks. Cached summaries are reused without a provider call.
// A chunk whose summary call fails is skipped; the final analysis runs
// as long as at least one summary exists.
func (a *TranscriptAnalyzer) AnalyzeChunks(ctx context.Context, transcripts transcriptReader, transcriptKeys []string, summaries artifactCache) (Result, error) {
	result := Result{
		ChunkSummaries: map[string]ChunkSummary{},
		ClientUsed:     fmt.Sprintf("%T", a.client),
	}

	sorted := make([]string, len(transcriptKeys))
	copy(sorted, transcriptKeys)
	sort.Strings(sorted)

	var folded []string
	for i, key := range sorted {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		position := i + 1
		label := fmt.Sprintf("chunk_%02d", position)

		if !transcripts.Exists(key) {
			fmt.Fprintf(a.output, "Transcript file not found: %s\n", key)
			continue
		}
		content, err := transcripts.Read(key)
		if err != nil {
			fmt.Fprintf(a.output, "Transcript file not found: %s\n", key)
			continue
		}
		content = strings.TrimSpace(content)
		if content == "" {
			fmt.Fprintf(a.output, "Empty transcript file: %s\n", key)
			continue
		}

		fmt.Fprintf(a.output, "\nProcessing %s summary\n", label)

		summary, err := a.chunkSummary(ctx, content, summaryName(position), summaries)
		if err != nil {
			fmt.Fprintf(a.output, "Error summarizing %s: %v\n", label, err)
			continue
		}

		folded = append(folded, fmt.Sprintf("Chunk %d Summary:\n%s", position, summary))
		result.ChunkSummaries[label] = ChunkSummary{Summary: summary, SourceKey: key}
	}
	result.ChunksProcessed = len(folded)

	if len(folded) == 0 {
		return result, nil
	}

	fmt.Fprintf(a.output, "\nFinal analysis with all summaries\n")
	final, err := a.finalAnalysis(ctx, strings.Join(folded, "\n\n"), summaries)
	if err != nil {
		fmt.Fprintf(a.output, "Error producing final analysis: %v\n", err)
		return result, nil
	}
	result.FinalAnalysis = final
	return result, nil
}

func (a *TranscriptAnalyzer) chunkSummary(ctx context.Context, content, key string, cache artifactCache) (string, error) {
	if cache.Exists(key) {
		fmt.Fprintf(a.output, "Summary already exists: %s\n", key)
		return cache.Read(key)
	}
	summary, err := a.client.ChunkSummary(ctx, content)
	if err != nil {
		return "", err
	}
	if err := cache.Write(key, summary); err != nil {
		return "", err
	}
	return summary, nil
}

func (a *TranscriptAnalyzer) finalAnalysis(ctx context.Context, allSummaries string, cache artifactCache) (string, error) {
	if cache.Exists(FinalAnalysisName) {
		fmt.Fprintf(a.output, "Final analysis already exists: %s\n", FinalAnalysisName)
		return cache.Read(FinalAnalysisName)
	}
	final, err := a.client.FinalAnalysis(ctx, allSummaries)
	if err != nil {
		return "", err
	}
	if err := cache.Write(FinalAnalysisName, final); err != nil {
		return "", err
	}
	return final, nil
}
