// Package metadata collects and renders statistics over the artifacts a
// run produced: audio sizes and durations, transcript text counts, and
// their totals.
package metadata

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"viddigest/internal/format"
)

var sentenceEndings = regexp.MustCompile(`[.!?]+`)

// TextStats are counts over one transcript text.
type TextStats struct {
	Filename           string
	Characters         int
	CharactersNoSpaces int
	Words              int
	Sentences          int
	FileSizeBytes      int64
}

// AnalyzeText computes text statistics. A sentence is a run of
// terminating punctuation.
func AnalyzeText(text string) TextStats {
	return TextStats{
		Characters:         len(text),
		CharactersNoSpaces: len(strings.ReplaceAll(text, " ", "")),
		Words:              len(strings.Fields(text)),
		Sentences:          len(sentenceEndings.FindAllString(text, -1)),
	}
}

// AudioStats describe one audio file.
type AudioStats struct {
	Filename        string
	SizeBytes       int64
	DurationSeconds float64
}

// DurationFunc reports an audio file's length in seconds.
type DurationFunc func(ctx context.Context, audioFile string) (float64, error)

// transcriptReader fetches transcript artifacts by key.
type transcriptReader interface {
	Exists(key string) bool
	Read(key string) (string, error)
	Path(key string) string
}

// Report is the full metadata snapshot of a run.
type Report struct {
	OriginalAudio      *AudioStats
	AudioChunks        []AudioStats
	TranscriptChunks   []TextStats
	CombinedTranscript *TextStats
}

// Collect gathers statistics for the source audio, every chunk, every
// chunk transcript and the combined transcript. Files that are missing
// or unreadable are simply left out of the report.
func Collect(ctx context.Context, duration DurationFunc, audioFile string, chunks []string, transcripts transcriptReader, transcriptKeys []string, combinedKey string) Report {
	var report Report

	if stats := analyzeAudio(ctx, duration, audioFile); stats != nil {
		report.OriginalAudio = stats
	}

	sortedChunks := make([]string, len(chunks))
	copy(sortedChunks, chunks)
	sort.Strings(sortedChunks)
	for _, chunk := range sortedChunks {
		if stats := analyzeAudio(ctx, duration, chunk); stats != nil {
			report.AudioChunks = append(report.AudioChunks, *stats)
		}
	}

	sortedKeys := make([]string, len(transcriptKeys))
	copy(sortedKeys, transcriptKeys)
	sort.Strings(sortedKeys)
	for _, key := range sortedKeys {
		if stats := analyzeTranscript(transcripts, key); stats != nil {
			report.TranscriptChunks = append(report.TranscriptChunks, *stats)
		}
	}

	if combinedKey != "" {
		report.CombinedTranscript = analyzeTranscript(transcripts, combinedKey)
	}

	return report
}

func analyzeAudio(ctx context.Context, duration DurationFunc, path string) *AudioStats {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil
	}
	stats := &AudioStats{
		Filename:  filepath.Base(path),
		SizeBytes: info.Size(),
	}
	if duration != nil {
		if seconds, err := duration(ctx, path); err == nil {
			stats.DurationSeconds = seconds
		}
	}
	return stats
}

func analyzeTranscript(transcripts transcriptReader, key string) *TextStats {
	if !transcripts.Exists(key) {
		return nil
	}
	text, err := transcripts.Read(key)
	if err != nil {
		return nil
	}
	stats := AnalyzeText(strings.TrimSpace(text))
	stats.Filename = key
	if info, err := os.Stat(transcripts.Path(key)); err == nil {
		stats.FileSizeBytes = info.Size()
	}
	return &stats
}

// Render writes the report in the runbook layout.
func (r Report) Render(w io.Writer) {
	bar := strings.Repeat("=", 70)
	fmt.Fprintf(w, "\n%s\nCONTENT METADATA\n%s\n", bar, bar)

	if r.OriginalAudio != nil {
		a := r.OriginalAudio
		fmt.Fprintf(w, "\nORIGINAL AUDIO FILE:\n")
		fmt.Fprintf(w, "File:     %s\n", a.Filename)
		fmt.Fprintf(w, "Duration: %s\n", format.Seconds(a.DurationSeconds))
		fmt.Fprintf(w, "Size:     %s (%d bytes)\n", format.SizeMB(a.SizeBytes), a.SizeBytes)
	}

	if len(r.AudioChunks) > 0 {
		fmt.Fprintf(w, "\nAUDIO CHUNKS (%d files):\n", len(r.AudioChunks))
		var totalBytes int64
		var totalSeconds float64
		for i, chunk := range r.AudioChunks {
			fmt.Fprintf(w, "Chunk %2d: %s, %s, %s\n",
				i+1, chunk.Filename, format.Seconds(chunk.DurationSeconds), format.SizeMB(chunk.SizeBytes))
			totalBytes += chunk.SizeBytes
			totalSeconds += chunk.DurationSeconds
		}
		fmt.Fprintf(w, "Total duration: %s\n", format.Seconds(totalSeconds))
		fmt.Fprintf(w, "Total size:     %s\n", format.SizeMB(totalBytes))
	}

	if len(r.TranscriptChunks) > 0 {
		fmt.Fprintf(w, "\nTRANSCRIPT CHUNKS (%d files):\n", len(r.TranscriptChunks))
		totals := TextStats{}
		for i, chunk := range r.TranscriptChunks {
			fmt.Fprintf(w, "Chunk %2d: %s (%s)\n", i+1, chunk.Filename, format.Size(chunk.FileSizeBytes))
			fmt.Fprintf(w, "  Characters: %d (%d no spaces)\n", chunk.Characters, chunk.CharactersNoSpaces)
			fmt.Fprintf(w, "  Words:      %d\n", chunk.Words)
			fmt.Fprintf(w, "  Sentences:  %d\n", chunk.Sentences)
			totals.Characters += chunk.Characters
			totals.CharactersNoSpaces += chunk.CharactersNoSpaces
			totals.Words += chunk.Words
			totals.Sentences += chunk.Sentences
		}
		fmt.Fprintf(w, "\nTRANSCRIPT TOTALS:\n")
		fmt.Fprintf(w, "Characters: %d (%d no spaces)\n", totals.Characters, totals.CharactersNoSpaces)
		fmt.Fprintf(w, "Words:      %d\n", totals.Words)
		fmt.Fprintf(w, "Sentences:  %d\n", totals.Sentences)
		if totals.Words > 0 {
			fmt.Fprintf(w, "Words per chunk: %.1f\n", float64(totals.Words)/float64(len(r.TranscriptChunks)))
			if totals.Sentences > 0 {
				fmt.Fprintf(w, "Words per sentence: %.1f\n", float64(totals.Words)/float64(totals.Sentences))
			}
		}
	}

	if r.CombinedTranscript != nil {
		c := r.CombinedTranscript
		fmt.Fprintf(w, "\nCOMBINED TRANSCRIPT:\n")
		fmt.Fprintf(w, "File:       %s (%s)\n", c.Filename, format.Size(c.FileSizeBytes))
		fmt.Fprintf(w, "Characters: %d (%d no spaces)\n", c.Characters, c.CharactersNoSpaces)
		fmt.Fprintf(w, "Words:      %d\n", c.Words)
		fmt.Fprintf(w, "Sentences:  %d\n", c.Sentences)
	}

	fmt.Fprintf(w, "%s\n", bar)
}
