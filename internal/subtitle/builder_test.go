package subtitle

import (
	"strings"
	"testing"
)

func TestFormatSRTTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{125.4, "00:02:05,400"},
		{3661.007, "01:01:01,007"},
		{0.0004, "00:00:00,000"},
		{0.0006, "00:00:00,001"},
		{-3, "00:00:00,000"},
	}

	for _, tt := range tests {
		if got := formatSRTTimestamp(tt.seconds); got != tt.want {
			t.Errorf("formatSRTTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatASSTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.00"},
		{125.4, "00:02:05.40"},
		{1.999, "00:00:01.99"},
		{3600, "01:00:00.00"},
		{-1, "00:00:00.00"},
	}

	for _, tt := range tests {
		if got := formatASSTimestamp(tt.seconds); got != tt.want {
			t.Errorf("formatASSTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestAssColor(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#FFFFFF", "&H00FFFFFF&"},
		{"#000000", "&H00000000&"},
		{"#FFFF40", "&H0040FFFF&"},
		{"#00000080", "&H7F000000&"},
		{"  #ffffff ", "&H00FFFFFF&"},
		{"", "&H00FFFFFF&"},
	}

	for _, tt := range tests {
		if got := assColor(tt.hex); got != tt.want {
			t.Errorf("assColor(%q) = %q, want %q", tt.hex, got, tt.want)
		}
	}
}

func TestBuildFileUnknownTemplateFallsBackToSRT(t *testing.T) {
	segments := []Segment{
		{ID: "segment_0", Start: 0, End: 2, Text: "hello world"},
		{ID: "segment_1", Start: 2, End: 125.4, Text: "second cue"},
	}

	file := BuildFile("does-not-exist", segments)

	if file.Format != FormatSRT {
		t.Fatalf("format = %q, want %q", file.Format, FormatSRT)
	}
	want := "1\n00:00:00,000 --> 00:00:02,000\nhello world\n\n" +
		"2\n00:00:02,000 --> 00:02:05,400\nsecond cue\n"
	if file.Content != want {
		t.Errorf("content = %q, want %q", file.Content, want)
	}
}

func TestBuildFileMinimalStyledEvent(t *testing.T) {
	file := BuildFile("minimal", []Segment{
		{ID: "segment_0", Start: 0, End: 2, Text: "hello world"},
	})

	if file.Format != FormatASS {
		t.Fatalf("format = %q, want %q", file.Format, FormatASS)
	}
	if !strings.HasPrefix(file.Content, "[Script Info]") {
		t.Errorf("content should start with the script info block")
	}
	if !strings.Contains(file.Content, "PlayResX: 1920") || !strings.Contains(file.Content, "PlayResY: 1080") {
		t.Errorf("content missing 1920x1080 play resolution")
	}
	if !strings.Contains(file.Content, "Style: Minimal,Inter,40,&H00FFFFFF&,") {
		t.Errorf("content missing expected style line:\n%s", file.Content)
	}
	wantEvent := "Dialogue: 0,00:00:00.00,00:00:02.00,Minimal,,0,0,0,,hello world"
	if !strings.Contains(file.Content, wantEvent) {
		t.Errorf("content missing event %q:\n%s", wantEvent, file.Content)
	}
}

func TestBuildFileEscapesBraces(t *testing.T) {
	file := BuildFile("minimal", []Segment{
		{ID: "segment_0", Start: 0, End: 1, Text: "a {b} c"},
	})
	if strings.Contains(file.Content, "{b}") {
		t.Errorf("braces should be replaced in event text:\n%s", file.Content)
	}
	if !strings.Contains(file.Content, "a (b) c") {
		t.Errorf("expected escaped text in:\n%s", file.Content)
	}
}

func TestBuildFileKaraokeEventPairs(t *testing.T) {
	file := BuildFile("karaoke", []Segment{
		{
			ID: "segment_0", Start: 0, End: 1, Text: "hello world",
			Words: []Word{
				{Text: "hello", Start: 0, End: 0.5},
				{Text: "world", Start: 0.5, End: 1},
			},
		},
	})

	if file.Format != FormatASS {
		t.Fatalf("format = %q, want %q", file.Format, FormatASS)
	}

	var glow, core []string
	for _, line := range strings.Split(file.Content, "\n") {
		if strings.HasPrefix(line, "Dialogue: 0,") {
			glow = append(glow, line)
		}
		if strings.HasPrefix(line, "Dialogue: 1,") {
			core = append(core, line)
		}
	}
	if len(glow) != 1 || len(core) != 1 {
		t.Fatalf("want one glow and one core event, got %d and %d", len(glow), len(core))
	}

	if !strings.Contains(glow[0], `\3a&H80&`) || !strings.Contains(glow[0], `\blur12`) {
		t.Errorf("glow layer missing translucent blurred outline: %s", glow[0])
	}
	if !strings.Contains(core[0], `\3a&H00&`) || !strings.Contains(core[0], `\blur0`) {
		t.Errorf("core layer should be opaque and sharp: %s", core[0])
	}

	for _, line := range []string{glow[0], core[0]} {
		if !strings.Contains(line, "HELLO") || !strings.Contains(line, "WORLD") {
			t.Errorf("karaoke text should be upper-cased: %s", line)
		}
		// highlight ramps at each word's relative offset, restore after its span
		if !strings.Contains(line, `\t(0,1,\1c&H0040FFFF&)`) {
			t.Errorf("missing first word highlight transition: %s", line)
		}
		if !strings.Contains(line, `\t(500,501,\1c&H0040FFFF&)`) {
			t.Errorf("missing second word highlight transition: %s", line)
		}
		if !strings.Contains(line, `\t(500,501,\1c&H00FFFFFF&)`) {
			t.Errorf("missing first word restore transition: %s", line)
		}
		if !strings.Contains(line, `\t(0,80,\fscx105\fscy105)`) {
			t.Errorf("missing zoom-in transform: %s", line)
		}
	}
}

func TestKaraokeColorCyclesAcrossSegments(t *testing.T) {
	template := Template{
		Name:         "Cycle",
		FontFamily:   "Inter",
		FontSize:     60,
		PrimaryColor: "#FFFFFF",
		OutlineColor: "#000000",
		OutlineWidth: 4,
		ShadowColor:  "#000000",
		ShadowWidth:  10,
		Alignment:    5,
		MarginV:      50,
		Karaoke: &KaraokeConfig{
			HighlightColors:  []string{"#FF0000", "#00FF00"},
			CycleAfterChunks: 1,
		},
	}

	// one chunk per segment; the counter runs across segment boundaries
	segments := []Segment{
		{
			ID: "segment_0", Start: 0, End: 1, Text: "first part",
			Words: []Word{
				{Text: "first", Start: 0, End: 0.5},
				{Text: "part", Start: 0.5, End: 1},
			},
		},
		{
			ID: "segment_1", Start: 1, End: 2, Text: "second part",
			Words: []Word{
				{Text: "second", Start: 1, End: 1.5},
				{Text: "part", Start: 1.5, End: 2},
			},
		},
	}

	events := strings.Split(karaokeEvents(template, segments), "\n")
	if len(events) != 4 {
		t.Fatalf("got %d events, want a glow/core pair per segment", len(events))
	}

	red := `\1c&H000000FF&`
	green := `\1c&H0000FF00&`
	for _, line := range events[:2] {
		if !strings.Contains(line, red) {
			t.Errorf("first segment's chunk should highlight with the first color: %s", line)
		}
		if strings.Contains(line, green) {
			t.Errorf("first segment's chunk leaked the second color: %s", line)
		}
	}
	for _, line := range events[2:] {
		if !strings.Contains(line, green) {
			t.Errorf("second segment's chunk should highlight with the next color: %s", line)
		}
	}
}

func TestBuildFileDeterministic(t *testing.T) {
	segments := []Segment{
		{ID: "segment_0", Start: 0, End: 3, Text: "one two three four five"},
		{ID: "segment_1", Start: 3, End: 6, Text: "six seven"},
	}

	a := BuildFile("karaoke", segments)
	b := BuildFile("karaoke", segments)
	if a.Content != b.Content {
		t.Fatal("identical inputs should produce identical output")
	}
}
