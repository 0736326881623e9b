package whisper

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanTranscript(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello world", "hello world"},
		{"multiple lines join", "hello\nworld\n", "hello world"},
		{"blank audio marker dropped", "[BLANK_AUDIO]", ""},
		{"sound marker dropped", "(wind blowing) hello", "hello"},
		{"markers among speech", "hello [MUSIC] there (laughs) friend", "hello there friend"},
		{"multi-word bracket marker dropped", "[typing sounds]", ""},
		{"multi-word paren marker dropped", "(wind blowing)\n[BLANK_AUDIO]\nhello there\n", "hello there"},
		{"multi-word marker inside a line", "so (door slams shut) anyway", "so anyway"},
		{"whitespace only", "   \n  \n", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanTranscript(tt.input); got != tt.expected {
				t.Errorf("cleanTranscript(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	t.Run("missing model path", func(t *testing.T) {
		r := NewRecognizer("whisper-cli", "")
		if err := r.ValidateConfig(); err == nil {
			t.Error("expected error for empty model path")
		}
	})

	t.Run("nonexistent model file", func(t *testing.T) {
		r := NewRecognizer("whisper-cli", "/nonexistent/model.bin")
		if err := r.ValidateConfig(); err == nil {
			t.Error("expected error for missing model file")
		}
	})

	t.Run("existing model file", func(t *testing.T) {
		modelPath := filepath.Join(t.TempDir(), "model.bin")
		if err := os.WriteFile(modelPath, []byte("weights"), 0o644); err != nil {
			t.Fatal(err)
		}
		r := NewRecognizer("whisper-cli", modelPath)
		if err := r.ValidateConfig(); err != nil {
			t.Errorf("ValidateConfig failed: %v", err)
		}
	})
}

func TestNewRecognizerDefaults(t *testing.T) {
	r := NewRecognizer("", "model.bin")
	if r.binary != "whisper-cli" {
		t.Errorf("default binary = %q, want whisper-cli", r.binary)
	}
	if r.Name() != "whisper-cli" {
		t.Errorf("Name() = %q", r.Name())
	}
}
