package media

import (
	"errors"
	"testing"
	"time"

	"github.com/burnsub/burnsub/pkg/caption"
)

func TestEscapeFilterPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain path", "/tmp/subs.srt", "/tmp/subs.srt"},
		{"colon", "C:/videos/subs.srt", `C\:/videos/subs.srt`},
		{"backslash", `C:\videos\subs.srt`, `C\:\\videos\\subs.srt`},
		{"both repeated", `a:b\c:d`, `a\:b\\c\:d`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeFilterPath(tt.input); got != tt.expected {
				t.Errorf("EscapeFilterPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSubtitleFilter(t *testing.T) {
	style := caption.ResolveStyle(caption.StyleInput{FontSize: "24"})

	got := subtitleFilter("/tmp/work/subtitles.srt", style)
	expected := "subtitles=/tmp/work/subtitles.srt:force_style='" +
		"FontSize=24,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,Outline=2,Shadow=1'"
	if got != expected {
		t.Errorf("subtitleFilter = %q, want %q", got, expected)
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{0, "00:00:00.000"},
		{3 * time.Second, "00:00:03.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
		{3725*time.Second + 400*time.Millisecond, "01:02:05.400"},
	}

	for _, tt := range tests {
		if got := formatOffset(tt.duration); got != tt.expected {
			t.Errorf("formatOffset(%v) = %q, want %q", tt.duration, got, tt.expected)
		}
	}
}

func TestParseProbeInfo(t *testing.T) {
	probeJSON := `{
		"format": {"duration": "12.500", "size": "1048576"},
		"streams": [
			{"codec_type": "video"},
			{"codec_type": "audio", "sample_rate": "44100", "channels": 2}
		]
	}`

	var info Info
	if err := parseProbeInfo(probeJSON, &info); err != nil {
		t.Fatalf("parseProbeInfo failed: %v", err)
	}

	if info.Duration != 12500*time.Millisecond {
		t.Errorf("Duration = %v, want 12.5s", info.Duration)
	}
	if info.Size != 1048576 {
		t.Errorf("Size = %d, want 1048576", info.Size)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Errorf("HasVideo = %v, HasAudio = %v; want both true", info.HasVideo, info.HasAudio)
	}
	if info.SampleRate != 44100 || info.Channels != 2 {
		t.Errorf("SampleRate = %d, Channels = %d", info.SampleRate, info.Channels)
	}
}

func TestParseProbeInfoNoAudio(t *testing.T) {
	probeJSON := `{
		"format": {"duration": "5.0"},
		"streams": [{"codec_type": "video"}]
	}`

	var info Info
	if err := parseProbeInfo(probeJSON, &info); err != nil {
		t.Fatalf("parseProbeInfo failed: %v", err)
	}
	if info.HasAudio {
		t.Error("HasAudio = true for video-only input")
	}
	if !info.HasVideo {
		t.Error("HasVideo = false for video-only input")
	}
}

func TestParseProbeInfoInvalidJSON(t *testing.T) {
	var info Info
	if err := parseProbeInfo("not json", &info); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestProcessingErrorUnwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &ProcessingError{Op: OpBurnSubtitles, Diagnostics: "some stderr", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("ProcessingError should unwrap to its cause")
	}

	var procErr *ProcessingError
	if !errors.As(error(err), &procErr) {
		t.Error("errors.As should match *ProcessingError")
	}
}

func TestTailOf(t *testing.T) {
	tests := []struct {
		input    string
		n        int
		expected string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"abcdefghij", 4, "ghij"},
	}

	for _, tt := range tests {
		if got := tailOf(tt.input, tt.n); got != tt.expected {
			t.Errorf("tailOf(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.expected)
		}
	}
}
