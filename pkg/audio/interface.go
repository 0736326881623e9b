package audio

import (
	"context"
	"time"
)

// DefaultChunkLength is the nominal transcription window. Short windows
// give the caption timing its granularity; one unintelligible window never
// takes down the whole transcription.
const DefaultChunkLength = 3 * time.Second

// Track is an immutable handle to an extracted audio resource
type Track struct {
	Path       string
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// Chunk is one contiguous time window of a track. Path points at the
// materialized slice once the chunk has been cut.
type Chunk struct {
	Index int
	Start time.Duration
	End   time.Duration
	Path  string
}

// Span returns the chunk's length
func (c *Chunk) Span() time.Duration {
	return c.End - c.Start
}

// Chunker materializes fixed-length windows of a track as standalone audio
// files
type Chunker interface {
	// ChunkTrack cuts the track into contiguous windows written under dir
	ChunkTrack(ctx context.Context, track Track, dir string) ([]*Chunk, error)

	// CleanupChunks removes materialized chunk files
	CleanupChunks(chunks []*Chunk) error
}
