package pipeline

import (
	"context"

	"github.com/burnsub/burnsub/pkg/caption"
	"github.com/burnsub/burnsub/pkg/session"
)

// Well-known workspace filenames
const (
	AudioFileName     = "audio.wav"
	SubtitleFileName  = "subtitles.srt"
	DefaultOutputName = "final_captioned_video.mp4"
)

// Pipeline runs the caption-generation stages against a session workspace.
// Both operations are synchronous and idempotent: re-running with the same
// inputs deterministically overwrites prior output.
type Pipeline interface {
	// ExtractAndTranscribe extracts the video's audio track, transcribes
	// it chunk by chunk and writes the subtitle file into the workspace,
	// returning the subtitle file path. A video with no recognizable
	// speech yields an empty subtitle file, not an error.
	ExtractAndTranscribe(ctx context.Context, videoPath string, ws *session.Workspace) (string, error)

	// Burn re-encodes the video with the subtitle file composited onto
	// the video stream, styled per styleInput, writing destName (or
	// DefaultOutputName) into the workspace and returning its path.
	Burn(ctx context.Context, videoPath, subtitlePath string, styleInput caption.StyleInput, ws *session.Workspace, destName string) (string, error)
}
