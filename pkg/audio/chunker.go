package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/burnsub/burnsub/pkg/media"
)

// ChunkerImpl implements the Chunker interface
type ChunkerImpl struct {
	toolchain   media.Toolchain
	chunkLength time.Duration
}

// NewChunker creates an audio chunker cutting windows of chunkLength
func NewChunker(toolchain media.Toolchain, chunkLength time.Duration) *ChunkerImpl {
	if chunkLength <= 0 {
		chunkLength = DefaultChunkLength
	}
	return &ChunkerImpl{
		toolchain:   toolchain,
		chunkLength: chunkLength,
	}
}

// ChunkTrack cuts the track into contiguous windows written under dir
func (c *ChunkerImpl) ChunkTrack(ctx context.Context, track Track, dir string) ([]*Chunk, error) {
	chunks := CalculateChunks(track.Duration, c.chunkLength)
	if len(chunks) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory: %w", err)
	}

	for i, chunk := range chunks {
		chunk.Path = filepath.Join(dir, fmt.Sprintf("chunk_%03d.wav", chunk.Index))
		if err := c.toolchain.CutAudio(ctx, track.Path, chunk.Start, chunk.Span(), chunk.Path); err != nil {
			// The failing cut may have left a partial file behind; clean it
			// up along with the finished chunks.
			_ = c.CleanupChunks(chunks[:i+1])
			return nil, fmt.Errorf("failed to cut chunk %d: %w", chunk.Index, err)
		}
	}

	return chunks, nil
}

// CleanupChunks removes materialized chunk files
func (c *ChunkerImpl) CleanupChunks(chunks []*Chunk) error {
	var lastErr error
	for _, chunk := range chunks {
		if chunk.Path == "" {
			continue
		}
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}

// CalculateChunks partitions [0, duration) into contiguous, non-overlapping
// windows of chunkLength; the final window may be shorter. A zero-duration
// track yields no chunks.
func CalculateChunks(duration, chunkLength time.Duration) []*Chunk {
	if duration <= 0 || chunkLength <= 0 {
		return nil
	}

	var chunks []*Chunk
	index := 0
	for start := time.Duration(0); start < duration; start += chunkLength {
		end := start + chunkLength
		if end > duration {
			end = duration
		}
		chunks = append(chunks, &Chunk{
			Index: index,
			Start: start,
			End:   end,
		})
		index++
	}
	return chunks
}
