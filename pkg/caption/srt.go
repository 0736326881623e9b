package caption

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// WriteSRT serializes cues in SubRip format: one block per cue holding the
// index line, the time range line and the text, separated by blank lines.
// An empty cue sequence produces an empty file.
func WriteSRT(w io.Writer, units []Unit) error {
	bw := bufio.NewWriter(w)
	for _, u := range units {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			u.Index, FormatTimestamp(u.Start), FormatTimestamp(u.End), u.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatTimestamp renders a duration as HH:MM:SS,mmm. Milliseconds round
// half-up and carry into seconds when they land on 1000.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := (d.Nanoseconds() + 500_000) / 1_000_000

	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// ParseSRT reads SubRip cues back from r. Multi-line cue text is joined
// with newlines.
func ParseSRT(r io.Reader) ([]Unit, error) {
	var units []Unit

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		index, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("invalid cue index %q: %w", line, err)
		}

		if !scanner.Scan() {
			return nil, fmt.Errorf("cue %d: missing time range line", index)
		}
		timeLine := strings.TrimSpace(scanner.Text())
		parts := strings.Split(timeLine, " --> ")
		if len(parts) != 2 {
			return nil, fmt.Errorf("cue %d: malformed time range %q", index, timeLine)
		}
		start, err := ParseTimestamp(parts[0])
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", index, err)
		}
		end, err := ParseTimestamp(parts[1])
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", index, err)
		}

		var textLines []string
		for scanner.Scan() {
			text := scanner.Text()
			if strings.TrimSpace(text) == "" {
				break
			}
			textLines = append(textLines, text)
		}
		if len(textLines) == 0 {
			return nil, fmt.Errorf("cue %d: missing text", index)
		}

		units = append(units, Unit{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(textLines, "\n"),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return units, nil
}

// ParseTimestamp parses an HH:MM:SS,mmm timestamp
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	clock, msPart, ok := strings.Cut(s, ",")
	if !ok {
		return 0, fmt.Errorf("malformed timestamp %q", s)
	}
	fields := strings.Split(clock, ":")
	if len(fields) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", s)
	}

	var parts [4]int64
	for i, field := range append(fields, msPart) {
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
		parts[i] = n
	}

	total := parts[0]*3_600_000 + parts[1]*60_000 + parts[2]*1000 + parts[3]
	return time.Duration(total) * time.Millisecond, nil
}
