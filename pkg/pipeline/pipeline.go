package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/burnsub/burnsub/pkg/audio"
	"github.com/burnsub/burnsub/pkg/caption"
	"github.com/burnsub/burnsub/pkg/logger"
	"github.com/burnsub/burnsub/pkg/media"
	"github.com/burnsub/burnsub/pkg/session"
	"github.com/burnsub/burnsub/pkg/stt"
)

// Impl implements the Pipeline interface
type Impl struct {
	toolchain  media.Toolchain
	chunker    audio.Chunker
	recognizer stt.Recognizer
	workers    int
}

// Option customizes the pipeline
type Option func(*Impl)

// WithWorkers sets the number of concurrent recognition workers
func WithWorkers(workers int) Option {
	return func(p *Impl) {
		if workers > 0 {
			p.workers = workers
		}
	}
}

// New creates a pipeline over the given toolchain, chunker and recognizer
func New(toolchain media.Toolchain, chunker audio.Chunker, recognizer stt.Recognizer, options ...Option) *Impl {
	p := &Impl{
		toolchain:  toolchain,
		chunker:    chunker,
		recognizer: recognizer,
		workers:    3,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// ExtractAndTranscribe extracts the audio track, transcribes it chunk by
// chunk and writes the subtitle file into the workspace
func (p *Impl) ExtractAndTranscribe(ctx context.Context, videoPath string, ws *session.Workspace) (string, error) {
	log := logger.WithComponent("pipeline").WithField("file", filepath.Base(videoPath))
	startTime := time.Now()

	info, err := p.toolchain.Probe(videoPath)
	if err != nil {
		return "", err
	}
	if !info.HasAudio {
		return "", &media.ProcessingError{Op: media.OpExtractAudio, Err: errors.New("input has no decodable audio stream")}
	}

	audioPath, err := ws.Path(AudioFileName)
	if err != nil {
		return "", err
	}
	if err := p.toolchain.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return "", err
	}

	// Probe the extracted track: its duration is what the chunk windows
	// and cue timestamps are derived from.
	audioInfo, err := p.toolchain.Probe(audioPath)
	if err != nil {
		return "", err
	}
	track := audio.Track{
		Path:       audioPath,
		SampleRate: audioInfo.SampleRate,
		Channels:   audioInfo.Channels,
		Duration:   audioInfo.Duration,
	}

	chunkDir := filepath.Join(ws.Dir, "chunks")
	chunks, err := p.chunker.ChunkTrack(ctx, track, chunkDir)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = p.chunker.CleanupChunks(chunks)
		_ = os.Remove(chunkDir)
	}()

	log.Info().
		Dur("duration", track.Duration).
		Int("chunk_count", len(chunks)).
		Str("recognizer", p.recognizer.Name()).
		Msg("Transcribing audio chunks")

	outcomes, err := p.recognizeChunks(ctx, chunks)
	if err != nil {
		return "", err
	}

	transcripts := make([]caption.ChunkTranscript, len(chunks))
	recognized := 0
	for i, chunk := range chunks {
		transcripts[i] = caption.ChunkTranscript{Start: chunk.Start, End: chunk.End}
		if outcomes[i].Status == stt.StatusText {
			transcripts[i].Text = outcomes[i].Text
			recognized++
		}
	}
	units := caption.BuildUnits(transcripts)

	subtitlePath, err := ws.Path(SubtitleFileName)
	if err != nil {
		return "", err
	}
	if err := writeSubtitleFile(subtitlePath, units); err != nil {
		return "", err
	}

	log.Info().
		Int("recognized_chunks", recognized).
		Int("cues", len(units)).
		Dur("elapsed", time.Since(startTime)).
		Str("subtitle_path", subtitlePath).
		Msg("Subtitle file written")

	return subtitlePath, nil
}

// Burn composites the subtitle file onto the video per the resolved style
func (p *Impl) Burn(ctx context.Context, videoPath, subtitlePath string, styleInput caption.StyleInput, ws *session.Workspace, destName string) (string, error) {
	log := logger.WithComponent("pipeline").WithField("file", filepath.Base(videoPath))

	if destName == "" {
		destName = DefaultOutputName
	}
	destPath, err := ws.Path(destName)
	if err != nil {
		return "", err
	}

	style := caption.ResolveStyle(styleInput)
	log.Info().
		Int("font_size", style.FontSize).
		Str("font_colour", style.PrimaryColour).
		Str("dest", destName).
		Msg("Burning captions")

	if err := p.toolchain.BurnSubtitles(ctx, videoPath, subtitlePath, style, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// recognizeChunks fans recognition out over a bounded worker pool and
// collects outcomes by chunk index, so the caption sequence is assembled
// in chunk order no matter which calls finish first.
func (p *Impl) recognizeChunks(ctx context.Context, chunks []*audio.Chunk) ([]stt.Outcome, error) {
	outcomes := make([]stt.Outcome, len(chunks))
	if len(chunks) == 0 {
		return outcomes, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	semaphore := make(chan struct{}, p.workers)

	for i, chunk := range chunks {
		wg.Add(1)
		go func(index int, chunk *audio.Chunk) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			outcome, err := p.recognizer.Recognize(ctx, chunk.Path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("chunk %d: %w", index, err)
				}
				return
			}
			outcomes[index] = outcome
		}(i, chunk)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return outcomes, nil
}

// writeSubtitleFile serializes cues to a temp sibling and renames it into
// place, so a failed write never leaves a partial subtitle file behind
func writeSubtitleFile(path string, units []caption.Unit) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}

	if err := caption.WriteSRT(f, units); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close subtitle file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move subtitle file into place: %w", err)
	}
	return nil
}
