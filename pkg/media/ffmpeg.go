package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/burnsub/burnsub/pkg/caption"
	"github.com/burnsub/burnsub/pkg/logger"
)

// Speech recognition wants narrowband mono input; 16 kHz covers the voice
// band with margin and keeps chunk files small.
const (
	speechSampleRate = "16000"
	speechChannels   = "1"
)

const defaultTimeout = 10 * time.Minute

// FFmpeg implements the Toolchain interface by invoking the ffmpeg binary
type FFmpeg struct {
	ffmpegPath string
	timeout    time.Duration
}

// Option customizes the FFmpeg toolchain
type Option func(*FFmpeg)

// WithTimeout bounds every toolchain invocation
func WithTimeout(timeout time.Duration) Option {
	return func(f *FFmpeg) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithBinary overrides the ffmpeg binary path
func WithBinary(path string) Option {
	return func(f *FFmpeg) {
		if path != "" {
			f.ffmpegPath = path
		}
	}
}

// NewFFmpeg creates an ffmpeg-backed toolchain
func NewFFmpeg(options ...Option) *FFmpeg {
	f := &FFmpeg{
		ffmpegPath: "ffmpeg",
		timeout:    defaultTimeout,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Probe extracts metadata from a media file
func (f *FFmpeg) Probe(filePath string) (*Info, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	raw, err := ffmpeg.Probe(filePath)
	if err != nil {
		return nil, &ProcessingError{Op: OpProbe, Err: err}
	}

	info := &Info{FilePath: filePath}
	if err := parseProbeInfo(raw, info); err != nil {
		return nil, &ProcessingError{Op: OpProbe, Err: err}
	}
	return info, nil
}

// ExtractAudio writes a mono 16 kHz 16-bit PCM WAV rendition of the
// input's audio stream to audioPath
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	log := logger.WithComponent("toolchain").WithField("input", filepath.Base(videoPath))

	if err := os.MkdirAll(filepath.Dir(audioPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := ffmpeg.Input(videoPath).
		Output(audioPath, ffmpeg.KwArgs{
			"acodec": "pcm_s16le",
			"ar":     speechSampleRate,
			"ac":     speechChannels,
		}).
		OverWriteOutput().
		GetArgs()

	log.Info().Str("audio_path", audioPath).Msg("Extracting audio track")
	if err := f.run(ctx, OpExtractAudio, args); err != nil {
		return err
	}

	if _, err := os.Stat(audioPath); err != nil {
		return &ProcessingError{Op: OpExtractAudio, Err: fmt.Errorf("output file was not created: %s", audioPath)}
	}
	return nil
}

// CutAudio writes the [start, start+length) window of an audio file to
// outPath as mono 16 kHz PCM WAV
func (f *FFmpeg) CutAudio(ctx context.Context, audioPath string, start, length time.Duration, outPath string) error {
	args := ffmpeg.Input(audioPath, ffmpeg.KwArgs{
		"ss": formatOffset(start),
		"t":  formatOffset(length),
	}).
		Output(outPath, ffmpeg.KwArgs{
			"acodec": "pcm_s16le",
			"ar":     speechSampleRate,
			"ac":     speechChannels,
		}).
		OverWriteOutput().
		GetArgs()

	return f.run(ctx, OpCutAudio, args)
}

// BurnSubtitles re-encodes the video with the subtitle file composited onto
// the video stream. The encode goes to a hidden sibling first and is
// renamed into place on success, so a failed run leaves no partial output.
func (f *FFmpeg) BurnSubtitles(ctx context.Context, videoPath, subtitlePath string, style caption.Style, outPath string) error {
	log := logger.WithComponent("toolchain").WithField("input", filepath.Base(videoPath))

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	partial := filepath.Join(filepath.Dir(outPath), ".partial-"+filepath.Base(outPath))
	args := ffmpeg.Input(videoPath).
		Output(partial, ffmpeg.KwArgs{
			"vf":     subtitleFilter(subtitlePath, style),
			"c:v":    "libx264",
			"preset": "fast",
			"crf":    "23",
			"c:a":    "copy",
		}).
		OverWriteOutput().
		GetArgs()

	log.Info().
		Str("subtitle_path", subtitlePath).
		Str("output_path", outPath).
		Int("font_size", style.FontSize).
		Msg("Burning subtitles into video")

	if err := f.run(ctx, OpBurnSubtitles, args); err != nil {
		_ = os.Remove(partial)
		return err
	}

	if err := os.Rename(partial, outPath); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// run executes ffmpeg with a bounded time budget, capturing stderr for
// diagnostics
func (f *FFmpeg) run(ctx context.Context, op string, args []string) error {
	runCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log := logger.WithComponent("toolchain").WithField("op", op)
	log.Debug().Strs("args", args).Msg("Running ffmpeg")

	startTime := time.Now()
	err := cmd.Run()
	elapsed := time.Since(startTime)

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			log.Error().Dur("elapsed", elapsed).Dur("budget", f.timeout).Msg("ffmpeg timed out")
			return &TimeoutError{Op: op, Budget: f.timeout}
		}
		diag := tailOf(stderr.String(), 2048)
		log.Error().Err(err).Dur("elapsed", elapsed).Str("diagnostics", diag).Msg("ffmpeg failed")
		return &ProcessingError{Op: op, Diagnostics: diag, Err: err}
	}

	log.Debug().Dur("elapsed", elapsed).Msg("ffmpeg completed")
	return nil
}

// subtitleFilter builds the subtitles filter argument with a force_style
// override
func subtitleFilter(subtitlePath string, style caption.Style) string {
	return fmt.Sprintf("subtitles=%s:force_style='%s'", EscapeFilterPath(subtitlePath), style.ForceStyle())
}

// EscapeFilterPath escapes a path for embedding in an ffmpeg filter
// argument. Colons separate filter options and backslashes are the filter
// graph escape character; leaving either unescaped corrupts the graph.
func EscapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, ":", `\:`)
	return path
}

// formatOffset formats a duration as HH:MM:SS.mmm for ffmpeg -ss/-t
func formatOffset(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, milliseconds)
}

func tailOf(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// parseProbeInfo parses ffprobe JSON output and fills Info
func parseProbeInfo(probeData string, info *Info) error {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
			Size     string `json:"size"`
		} `json:"format"`
		Streams []struct {
			CodecType  string `json:"codec_type"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
	}

	if err := json.Unmarshal([]byte(probeData), &probe); err != nil {
		return fmt.Errorf("failed to parse probe JSON: %w", err)
	}

	if probe.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err == nil {
			info.Duration = time.Duration(seconds * float64(time.Second))
		}
	}
	if probe.Format.Size != "" {
		size, err := strconv.ParseInt(probe.Format.Size, 10, 64)
		if err == nil {
			info.Size = size
		}
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "audio":
			info.HasAudio = true
			if info.SampleRate == 0 && stream.SampleRate != "" {
				if rate, err := strconv.Atoi(stream.SampleRate); err == nil {
					info.SampleRate = rate
				}
			}
			if info.Channels == 0 {
				info.Channels = stream.Channels
			}
		case "video":
			info.HasVideo = true
		}
	}

	return nil
}
