package stt

import "testing"

func TestTextOutcome(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Status
		text     string
	}{
		{"plain text", "hello there", StatusText, "hello there"},
		{"trims whitespace", "  hello  ", StatusText, "hello"},
		{"empty degrades to no speech", "", StatusNoSpeech, ""},
		{"whitespace degrades to no speech", "   \t\n", StatusNoSpeech, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := TextOutcome(tt.input)
			if outcome.Status != tt.expected {
				t.Errorf("Status = %v, want %v", outcome.Status, tt.expected)
			}
			if outcome.Text != tt.text {
				t.Errorf("Text = %q, want %q", outcome.Text, tt.text)
			}
		})
	}
}

func TestFailedCarriesDiagnostics(t *testing.T) {
	outcome := Failed("exit status 1")
	if outcome.Status != StatusFailed {
		t.Errorf("Status = %v, want StatusFailed", outcome.Status)
	}
	if outcome.Diagnostics != "exit status 1" {
		t.Errorf("Diagnostics = %q", outcome.Diagnostics)
	}
	if outcome.Text != "" {
		t.Errorf("Text = %q, want empty", outcome.Text)
	}
}
