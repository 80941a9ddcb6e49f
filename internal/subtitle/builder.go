package subtitle

import (
	"fmt"
	"math"
	"strings"
)

// supported output dialects
type Format string

const (
	FormatSRT Format = "srt"
	FormatASS Format = "ass"
)

// File is a rendered caption file ready to persist.
type File struct {
	Format   Format
	Template string
	Content  string
}

const (
	assHeader = `[Script Info]
ScriptType: v4.00+
PlayResX: 1920
PlayResY: 1080
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding`

	assEventsHeader = `

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text`
)

// BuildFile renders normalized segments into a caption file for the given
// template identifier. Known templates produce the styled ASS dialect;
// unknown identifiers fall back to plain SRT. The output is deterministic
// for identical inputs.
func BuildFile(templateID string, segments []Segment) File {
	normalized := EnsureWordTimings(segments)

	template, ok := LookupTemplate(templateID)
	if !ok {
		return File{Format: FormatSRT, Template: templateID, Content: toSRT(normalized)}
	}

	var events string
	if template.IsKaraoke() {
		events = karaokeEvents(template, normalized)
	} else {
		events = simpleEvents(template, normalized)
	}

	content := assHeader + "\n" + styleLine(template) + assEventsHeader + "\n" + events
	return File{Format: FormatASS, Template: templateID, Content: content}
}

// single style definition derived from the template's visual fields
func styleLine(t Template) string {
	return fmt.Sprintf(
		"Style: %s,%s,%d,%s,&H000000FF,%s,%s,0,0,0,0,100,100,0,0,1,%d,%d,%d,10,10,%d,1",
		t.Name,
		t.FontFamily,
		t.FontSize,
		assColor(t.PrimaryColor),
		assColor(t.OutlineColor),
		assColor(t.ShadowColor),
		t.OutlineWidth,
		t.ShadowWidth,
		t.Alignment,
		t.MarginV,
	)
}

func simpleEvents(t Template, segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := escapeASSText(strings.TrimSpace(seg.Text))
		if t.Uppercase {
			text = strings.ToUpper(text)
		}
		lines = append(lines, fmt.Sprintf(
			"Dialogue: 0,%s,%s,%s,,0,0,0,,%s",
			formatASSTimestamp(seg.Start),
			formatASSTimestamp(seg.End),
			t.Name,
			text,
		))
	}
	return strings.Join(lines, "\n")
}

// karaokeEvents emits one event pair per chunk: a translucent high-blur
// glow layer under a sharp core layer, both spanning the chunk window.
// Every word carries a zoom-in transform plus timed transitions into and
// out of the chunk's highlight color at the word's relative offsets.
func karaokeEvents(t Template, segments []Segment) string {
	colors := t.Karaoke.palette()
	cycleAfter := t.Karaoke.cycleAfter()
	base := assColor(t.PrimaryColor)
	outline := assColor(t.OutlineColor)

	var events []string
	counter := 0

	for _, seg := range segments {
		if len(seg.Words) == 0 {
			continue
		}
		for _, chunk := range ChunkWords(seg.Words) {
			idx := HighlightColorIndex(counter, cycleAfter, len(colors))
			highlight := assColor(colors[idx])

			glow := chunkText(t, chunk, base, outline, highlight, true)
			core := chunkText(t, chunk, base, outline, highlight, false)

			start := formatASSTimestamp(chunk.Start)
			end := formatASSTimestamp(chunk.End)
			events = append(events,
				fmt.Sprintf("Dialogue: 0,%s,%s,%s,,0,0,0,,%s", start, end, t.Name, glow),
				fmt.Sprintf("Dialogue: 1,%s,%s,%s,,0,0,0,,%s", start, end, t.Name, core),
			)
			counter++
		}
	}

	return strings.Join(events, "\n")
}

func chunkText(t Template, chunk Chunk, base, outline, highlight string, glow bool) string {
	zoomIn := `\t(0,80,\fscx105\fscy105)\t(80,160,\fscx100\fscy100)`

	// glow layer: translucent outline with the template's shadow width as
	// blur radius; core layer: opaque and sharp
	var rest string
	if glow {
		rest = fmt.Sprintf(`\1c%s\3c%s\3a&H80&\bord%d\blur%d\fscx100\fscy100`,
			base, outline, t.OutlineWidth, t.ShadowWidth)
	} else {
		rest = fmt.Sprintf(`\1c%s\3c%s\3a&H00&\bord%d\blur0\fscx100\fscy100`,
			base, outline, t.OutlineWidth)
	}

	lines := make([]string, 0, len(chunk.Lines))
	for _, line := range chunk.Lines {
		words := make([]string, 0, len(line))
		for _, w := range line {
			rel := int(math.Round((w.Start - chunk.Start) * 1000))
			dur := int(math.Round((w.End - w.Start) * 1000))
			if dur < 10 {
				dur = 10
			}
			highlightEnd := rel + dur

			tags := zoomIn + rest +
				fmt.Sprintf(`\t(%d,%d,\1c%s)`, rel, rel+1, highlight) +
				fmt.Sprintf(`\t(%d,%d,\1c%s)`, highlightEnd, highlightEnd+1, base)

			// word-highlight templates always render upper-cased
			txt := escapeASSText(strings.ToUpper(w.Text))
			words = append(words, "{"+tags+"}"+txt)
		}
		lines = append(lines, strings.Join(words, " "))
	}

	return strings.Join(lines, `\N`)
}

func toSRT(segments []Segment) string {
	var sb strings.Builder
	for i, seg := range segments {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatSRTTimestamp(seg.Start),
			formatSRTTimestamp(seg.End)))
		sb.WriteString(strings.TrimSpace(seg.Text))
		sb.WriteString("\n\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// timestamps: 00:00:00,000 (millisecond precision)
func formatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int(math.Round(seconds * 1000))
	h := millis / 3600000
	m := millis / 60000 % 60
	s := millis / 1000 % 60
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// timestamps: 00:00:00.00 (centiseconds, truncated not rounded)
func formatASSTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := int(seconds / 3600)
	m := int(seconds/60) % 60
	s := int(seconds) % 60
	cs := int(math.Mod(seconds, 1) * 100)
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, s, cs)
}

// literal braces would open inline override blocks in the styled dialect
func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "{", "(")
	return strings.ReplaceAll(text, "}", ")")
}
