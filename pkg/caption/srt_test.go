package caption

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "00:00:00,000"},
		{"milliseconds only", 400 * time.Millisecond, "00:00:00,400"},
		{"just under a minute", 59*time.Second + 999*time.Millisecond, "00:00:59,999"},
		{"hours minutes seconds", 3725*time.Second + 400*time.Millisecond, "01:02:05,400"},
		{"negative clamps to zero", -5 * time.Second, "00:00:00,000"},
		{
			// Sub-millisecond part rounds half-up and carries into the
			// seconds field.
			"rounding carries",
			59*time.Second + 999*time.Millisecond + 500*time.Microsecond,
			"00:01:00,000",
		},
		{
			"rounds down below half",
			1*time.Second + 499*time.Microsecond,
			"00:00:01,000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.duration); got != tt.expected {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.duration, got, tt.expected)
			}
		})
	}
}

func TestWriteSRT(t *testing.T) {
	units := []Unit{
		{Index: 1, Start: 0, End: 1500 * time.Millisecond, Text: "hello world"},
		{Index: 2, Start: 1500 * time.Millisecond, End: 3 * time.Second, Text: "good bye"},
	}

	var buf bytes.Buffer
	if err := WriteSRT(&buf, units); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	expected := "1\n00:00:00,000 --> 00:00:01,500\nhello world\n\n" +
		"2\n00:00:01,500 --> 00:00:03,000\ngood bye\n\n"
	if buf.String() != expected {
		t.Errorf("WriteSRT output:\n%q\nwant:\n%q", buf.String(), expected)
	}
}

func TestWriteSRTEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSRT(&buf, nil); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

func TestSRTRoundTrip(t *testing.T) {
	units := []Unit{
		{Index: 1, Start: 0, End: 3 * time.Second, Text: "first cue"},
		{Index: 2, Start: 3 * time.Second, End: 6 * time.Second, Text: "second cue"},
		{Index: 3, Start: 3661 * time.Second, End: 3662 * time.Second, Text: "an hour in"},
	}

	var buf bytes.Buffer
	if err := WriteSRT(&buf, units); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	parsed, err := ParseSRT(&buf)
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}
	if len(parsed) != len(units) {
		t.Fatalf("parsed %d units, want %d", len(parsed), len(units))
	}
	for i := range units {
		if parsed[i] != units[i] {
			t.Errorf("unit %d = %+v, want %+v", i, parsed[i], units[i])
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"zero", "00:00:00,000", 0, false},
		{"full", "01:02:05,400", 3725*time.Second + 400*time.Millisecond, false},
		{"missing millis", "00:00:01", 0, true},
		{"too few fields", "00:01,000", 0, true},
		{"garbage", "abc", 0, true},
		{"negative field", "00:-1:00,000", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseSRTMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"non-numeric index", "x\n00:00:00,000 --> 00:00:01,000\nhi\n\n"},
		{"missing arrow", "1\n00:00:00,000 00:00:01,000\nhi\n\n"},
		{"missing text", "1\n00:00:00,000 --> 00:00:01,000\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSRT(strings.NewReader(tt.input)); err == nil {
				t.Error("expected parse error, got nil")
			}
		})
	}
}
