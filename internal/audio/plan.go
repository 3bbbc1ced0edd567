// Package audio plans and executes size-bounded splitting of an audio
// track into uniform time segments via ffmpeg.
package audio

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoAudio indicates the source audio file is missing or empty.
	ErrNoAudio = errors.New("audio file missing or empty")

	// ErrDurationUnavailable indicates ffprobe could not report a usable
	// duration for the source file.
	ErrDurationUnavailable = errors.New("audio duration unavailable")
)

// Segment is one planned slice of the source audio. Index is 1-based;
// Start and Duration are seconds.
type Segment struct {
	Index    int
	Start    float64
	Duration float64
}

// OutputName returns the chunk file name for the segment, zero-padded to
// two digits.
func (s Segment) OutputName() string {
	return fmt.Sprintf("chunk_%02d.flac", s.Index)
}

// Plan divides a track of the given duration and byte size into the
// minimum number of equal-duration segments whose average size fits under
// ceilingBytes. A file already under the ceiling yields a single
// pass-through segment covering the whole track.
func Plan(durationSeconds float64, totalBytes, ceilingBytes int64) ([]Segment, error) {
	if totalBytes <= 0 {
		return nil, ErrNoAudio
	}
	if ceilingBytes <= 0 {
		return nil, fmt.Errorf("invalid size ceiling %d", ceilingBytes)
	}

	if totalBytes <= ceilingBytes {
		return []Segment{{Index: 1, Start: 0, Duration: durationSeconds}}, nil
	}

	if durationSeconds <= 0 {
		return nil, ErrDurationUnavailable
	}

	numChunks := int(math.Ceil(float64(totalBytes) / float64(ceilingBytes)))
	chunkDuration := durationSeconds / float64(numChunks)

	segments := make([]Segment, 0, numChunks)
	for i := 0; i < numChunks; i++ {
		segments = append(segments, Segment{
			Index:    i + 1,
			Start:    float64(i) * chunkDuration,
			Duration: chunkDuration,
		})
	}
	return segments, nil
}
