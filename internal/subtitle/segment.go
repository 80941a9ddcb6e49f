package subtitle

import (
	"fmt"
	"math"
	"strings"
)

// single word with its own timing window
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// timed caption segment; Words is optional and rebuilt on demand
type Segment struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

const (
	minSegmentSpan = 0.2
	minWordSpan    = 0.2
)

// SanitizeSegments repairs client-supplied segments: missing or broken
// timings get index-derived fallbacks and every interval is forced to a
// positive span. Segment order is preserved.
func SanitizeSegments(raw []Segment) []Segment {
	out := make([]Segment, len(raw))
	for i, seg := range raw {
		fallbackStart := float64(i) * 2

		start := seg.Start
		if !isFinite(start) {
			start = fallbackStart
		}

		minEnd := start + minSegmentSpan
		end := seg.End
		if !isFinite(end) || end <= start {
			end = minEnd
		}

		var words []Word
		if seg.Words != nil {
			words = make([]Word, len(seg.Words))
			for j, w := range seg.Words {
				wordStart := w.Start
				if !isFinite(wordStart) {
					wordStart = start + float64(j)*minWordSpan
				}
				wordEnd := w.End
				if !isFinite(wordEnd) || wordEnd <= wordStart {
					wordEnd = wordStart + minWordSpan
				}
				words[j] = Word{
					Text:  strings.TrimSpace(w.Text),
					Start: wordStart,
					End:   wordEnd,
				}
			}
		}

		id := seg.ID
		if id == "" {
			id = fmt.Sprintf("segment_%d", i)
		}

		out[i] = Segment{
			ID:    id,
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(seg.Text),
			Words: words,
		}
	}
	return out
}

// EnsureWordTimings returns an equal-length slice where every segment has
// word-level timing. Segments that already carry words pass through
// unchanged; for the rest the text is tokenized on whitespace and the
// segment duration is distributed evenly across the tokens, contiguously,
// with the final word pinned to the segment end. A segment too short for
// its token count is extended (0.25s per token, 0.5s minimum).
func EnsureWordTimings(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		if len(seg.Words) > 0 {
			out[i] = seg
			continue
		}

		tokens := strings.Fields(seg.Text)
		if len(tokens) == 0 {
			seg.Words = []Word{}
			out[i] = seg
			continue
		}

		n := float64(len(tokens))
		d := seg.End - seg.Start
		if d < n*0.25 {
			d = n * 0.25
		}
		if d < 0.5 {
			d = 0.5
		}

		per := d / n
		if per <= 0 {
			per = minWordSpan
		}
		end := seg.Start + d

		words := make([]Word, len(tokens))
		cursor := seg.Start
		for j, tok := range tokens {
			wordEnd := cursor + per
			if j == len(tokens)-1 {
				wordEnd = end
			}
			words[j] = Word{Text: tok, Start: cursor, End: wordEnd}
			cursor = wordEnd
		}

		seg.Words = words
		out[i] = seg
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
