package caption

import (
	"strings"
	"time"
)

// MaxWordsPerUnit caps how many words a single cue may carry.
const MaxWordsPerUnit = 10

// Unit is one subtitle cue
type Unit struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// ChunkTranscript pairs a chunk's time window with its recognized text.
// Chunks that yielded no speech carry empty text and contribute no cues.
type ChunkTranscript struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// BuildUnits splits each chunk transcript into groups of at most
// MaxWordsPerUnit words and assigns every group an equal share of its
// chunk's time window. Cue indices run from 1 across the whole sequence
// with no gaps, regardless of how many chunks were skipped.
func BuildUnits(chunks []ChunkTranscript) []Unit {
	var units []Unit
	index := 0

	for _, chunk := range chunks {
		words := strings.Fields(chunk.Text)
		if len(words) == 0 {
			continue
		}

		groups := (len(words) + MaxWordsPerUnit - 1) / MaxWordsPerUnit
		span := chunk.End - chunk.Start
		unitSpan := span / time.Duration(groups)

		for k := 0; k < groups; k++ {
			lo := k * MaxWordsPerUnit
			hi := lo + MaxWordsPerUnit
			if hi > len(words) {
				hi = len(words)
			}

			start := chunk.Start + time.Duration(k)*unitSpan
			end := start + unitSpan
			if k == groups-1 {
				// Integer division remainder lands on the last cue so the
				// groups cover the chunk window exactly.
				end = chunk.End
			}

			index++
			units = append(units, Unit{
				Index: index,
				Start: start,
				End:   end,
				Text:  strings.Join(words[lo:hi], " "),
			})
		}
	}

	return units
}
