package media

import (
	"context"
	"time"

	"github.com/burnsub/burnsub/pkg/caption"
)

// Info contains metadata about a media file
type Info struct {
	FilePath   string
	Duration   time.Duration
	HasAudio   bool
	HasVideo   bool
	SampleRate int
	Channels   int
	Size       int64
}

// Toolchain abstracts the audio/video codec toolchain. The pipeline depends
// on this interface only, so its logic is testable with a fake.
type Toolchain interface {
	// Probe extracts metadata from a media file
	Probe(filePath string) (*Info, error)

	// ExtractAudio writes a mono 16 kHz 16-bit PCM WAV rendition of the
	// input's audio stream to audioPath
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error

	// CutAudio writes the [start, start+length) window of an audio file
	// to outPath as mono 16 kHz PCM WAV
	CutAudio(ctx context.Context, audioPath string, start, length time.Duration, outPath string) error

	// BurnSubtitles re-encodes the video with the subtitle file composited
	// onto the video stream per the given style
	BurnSubtitles(ctx context.Context, videoPath, subtitlePath string, style caption.Style, outPath string) error
}
