package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// fixed output encoding policy: constant frame rate, quality-constrained
// single-pass H.264, stereo AAC, fast-start metadata
const (
	outputFrameRate = 30

	overlayWidth        = 220
	overlayX            = 0
	overlayBottomMargin = 120
)

// time-windowed overlay asset already resolved to a local file
type OverlayInput struct {
	Path  string
	Start float64
	End   float64
}

// GraphOptions describes one render invocation.
type GraphOptions struct {
	VideoPath    string
	SubtitlePath string
	OutputPath   string
	Overlays     []OverlayInput

	// isolated directory holding the single required font; styled dialect
	FontsDir string
	// inline style override for the simple dialect; mutually exclusive
	// with FontsDir
	ForceStyle string
	// karaoke templates center overlays vertically, others sit above the
	// bottom margin
	Karaoke bool
}

// EscapeFilterPath escapes a filesystem path for embedding inside a filter
// expression: backslashes become forward slashes, colons and spaces get
// backslash-escaped.
func EscapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	path = strings.ReplaceAll(path, ":", `\:`)
	return strings.ReplaceAll(path, " ", `\ `)
}

// BuildFilterGraph produces the filter expression: base frame-rate and
// pixel-format normalization, one compositing stage per overlay in input
// order, then the subtitle burn stage.
func BuildFilterGraph(opts GraphOptions) string {
	subtitles := subtitleFilter(opts)
	base := fmt.Sprintf("fps=%d,format=yuv420p", outputFrameRate)

	if len(opts.Overlays) == 0 {
		return base + "," + subtitles
	}

	y := fmt.Sprintf("main_h-overlay_h-%d", overlayBottomMargin)
	if opts.Karaoke {
		y = "(main_h-overlay_h)/2"
	}

	var stages []string
	stages = append(stages, fmt.Sprintf("[0:v]%s[base]", base))

	prev := "[base]"
	for i, ov := range opts.Overlays {
		scaled := fmt.Sprintf("[ov%d]", i)
		out := fmt.Sprintf("[tmp%d]", i)

		stages = append(stages, fmt.Sprintf("[%d:v]scale=%d:-1%s", i+1, overlayWidth, scaled))
		stages = append(stages, fmt.Sprintf(
			"%s%soverlay=x=%d:y=%s:enable='between(t,%s,%s)'%s",
			prev, scaled, overlayX, y,
			formatSeconds(ov.Start), formatSeconds(ov.End), out,
		))
		prev = out
	}

	stages = append(stages, fmt.Sprintf("%s%s[vout]", prev, subtitles))
	return strings.Join(stages, ";")
}

// BuildRenderArgs returns the full encoder argument list for a render.
func BuildRenderArgs(opts GraphOptions) []string {
	args := []string{"-y", "-i", opts.VideoPath}
	for _, ov := range opts.Overlays {
		args = append(args, "-i", ov.Path)
	}

	filter := BuildFilterGraph(opts)
	if len(opts.Overlays) > 0 {
		args = append(args,
			"-filter_complex", filter,
			"-map", "[vout]",
			"-map", "0:a?",
			"-shortest",
		)
	} else {
		args = append(args, "-vf", filter)
	}

	args = append(args,
		"-c:v", "libx264",
		"-profile:v", "high",
		"-level", "4.1",
		"-pix_fmt", "yuv420p",
		"-preset", "medium",
		"-crf", "18",
		"-r", strconv.Itoa(outputFrameRate),
		"-movflags", "+faststart",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "48000",
		"-ac", "2",
		opts.OutputPath,
	)
	return args
}

func subtitleFilter(opts GraphOptions) string {
	escaped := EscapeFilterPath(opts.SubtitlePath)
	switch {
	case opts.FontsDir != "":
		return fmt.Sprintf("subtitles='%s:fontsdir=%s'", escaped, EscapeFilterPath(opts.FontsDir))
	case opts.ForceStyle != "":
		return fmt.Sprintf("subtitles='%s:force_style=%s'", escaped, opts.ForceStyle)
	default:
		return fmt.Sprintf("subtitles='%s'", escaped)
	}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
