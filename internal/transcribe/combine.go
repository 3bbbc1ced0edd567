package transcribe

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// FullTranscriptName is the artifact key of the combined transcript.
const FullTranscriptName = "full_transcript.txt"

// Combine joins chunk transcripts into a single full transcript artifact
// and returns its key. Transcripts are joined in sorted key order with a
// single space between them, trimmed at both ends. An already cached
// full transcript is returned as-is.
func Combine(keys []string, cache artifactCache, progress io.Writer) (string, error) {
	if cache.Exists(FullTranscriptName) {
		fmt.Fprintf(progress, "Combined transcription already exists: %s\n", FullTranscriptName)
		return FullTranscriptName, nil
	}

	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	var parts []string
	for _, key := range sorted {
		text, err := cache.Read(key)
		if err != nil {
			fmt.Fprintf(progress, "Error processing %s: %v\n", key, err)
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	if len(parts) == 0 {
		fmt.Fprintf(progress, "No transcript content to combine\n")
		return FullTranscriptName, nil
	}

	if err := cache.Write(FullTranscriptName, strings.Join(parts, " ")); err != nil {
		return "", err
	}
	fmt.Fprintf(progress, "Combined transcription saved: %s\n", FullTranscriptName)
	return FullTranscriptName, nil
}
