package ffmpeg

import (
	"strings"
	"testing"
)

func TestEscapeFilterPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/captions.ass", "/tmp/captions.ass"},
		{`C:\videos\in.mp4`, `C\:/videos/in.mp4`},
		{"/tmp/my file.ass", `/tmp/my\ file.ass`},
		{"/tmp/a:b c.srt", `/tmp/a\:b\ c.srt`},
	}

	for _, tt := range tests {
		if got := EscapeFilterPath(tt.in); got != tt.want {
			t.Errorf("EscapeFilterPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildFilterGraphNoOverlays(t *testing.T) {
	got := BuildFilterGraph(GraphOptions{SubtitlePath: "/tmp/c.ass"})
	want := "fps=30,format=yuv420p,subtitles='/tmp/c.ass'"
	if got != want {
		t.Errorf("graph = %q, want %q", got, want)
	}
}

func TestBuildFilterGraphOverlayChain(t *testing.T) {
	got := BuildFilterGraph(GraphOptions{
		SubtitlePath: "/tmp/c.ass",
		Overlays: []OverlayInput{
			{Path: "/tmp/a.gif", Start: 1.5, End: 4},
			{Path: "/tmp/b.gif", Start: 4, End: 9.25},
		},
	})

	wantStages := []string{
		"[0:v]fps=30,format=yuv420p[base]",
		"[1:v]scale=220:-1[ov0]",
		"[base][ov0]overlay=x=0:y=main_h-overlay_h-120:enable='between(t,1.5,4)'[tmp0]",
		"[2:v]scale=220:-1[ov1]",
		"[tmp0][ov1]overlay=x=0:y=main_h-overlay_h-120:enable='between(t,4,9.25)'[tmp1]",
		"[tmp1]subtitles='/tmp/c.ass'[vout]",
	}
	want := strings.Join(wantStages, ";")
	if got != want {
		t.Errorf("graph = %q, want %q", got, want)
	}
}

func TestBuildFilterGraphKaraokeCentersOverlays(t *testing.T) {
	got := BuildFilterGraph(GraphOptions{
		SubtitlePath: "/tmp/c.ass",
		Karaoke:      true,
		Overlays:     []OverlayInput{{Path: "/tmp/a.gif", Start: 0, End: 2}},
	})
	if !strings.Contains(got, "y=(main_h-overlay_h)/2") {
		t.Errorf("karaoke overlays should be centered vertically, got %q", got)
	}
	if strings.Contains(got, "main_h-overlay_h-120") {
		t.Errorf("karaoke graph should not use the bottom margin, got %q", got)
	}
}

func TestSubtitleFilterVariants(t *testing.T) {
	tests := []struct {
		name string
		opts GraphOptions
		want string
	}{
		{
			name: "plain",
			opts: GraphOptions{SubtitlePath: "/tmp/c.srt"},
			want: "subtitles='/tmp/c.srt'",
		},
		{
			name: "fontsdir",
			opts: GraphOptions{SubtitlePath: "/tmp/c.ass", FontsDir: "/tmp/job-fonts"},
			want: "subtitles='/tmp/c.ass:fontsdir=/tmp/job-fonts'",
		},
		{
			name: "force_style",
			opts: GraphOptions{SubtitlePath: "/tmp/c.srt", ForceStyle: "Fontname=Inter,Fontsize=40"},
			want: "subtitles='/tmp/c.srt:force_style=Fontname=Inter,Fontsize=40'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := subtitleFilter(tt.opts); got != tt.want {
				t.Errorf("subtitleFilter = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildRenderArgsNoOverlays(t *testing.T) {
	args := BuildRenderArgs(GraphOptions{
		VideoPath:    "/tmp/in.mp4",
		SubtitlePath: "/tmp/c.srt",
		OutputPath:   "/tmp/out.mp4",
	})

	if args[0] != "-y" || args[1] != "-i" || args[2] != "/tmp/in.mp4" {
		t.Fatalf("unexpected input args: %v", args[:3])
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "-filter_complex") {
		t.Errorf("no overlays should use -vf, got %v", args)
	}
	if !strings.Contains(joined, "-vf fps=30,format=yuv420p,subtitles='/tmp/c.srt'") {
		t.Errorf("missing -vf filter: %v", args)
	}
	for _, want := range []string{
		"-c:v libx264", "-profile:v high", "-level 4.1", "-pix_fmt yuv420p",
		"-preset medium", "-crf 18", "-r 30", "-movflags +faststart",
		"-c:a aac", "-b:a 192k", "-ar 48000", "-ac 2",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing encoder args %q in %v", want, args)
		}
	}
	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Errorf("output path should come last, got %q", args[len(args)-1])
	}
}

func TestBuildRenderArgsWithOverlays(t *testing.T) {
	args := BuildRenderArgs(GraphOptions{
		VideoPath:    "/tmp/in.mp4",
		SubtitlePath: "/tmp/c.ass",
		OutputPath:   "/tmp/out.mp4",
		Overlays: []OverlayInput{
			{Path: "/tmp/a.gif", Start: 0, End: 3},
		},
	})

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-i /tmp/in.mp4 -i /tmp/a.gif") {
		t.Errorf("overlay inputs should follow the video input: %v", args)
	}
	for _, want := range []string{"-filter_complex", "-map [vout]", "-map 0:a?", "-shortest"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in %v", want, args)
		}
	}
	if strings.Contains(joined, "-vf ") {
		t.Errorf("overlay renders must not use -vf: %v", args)
	}
}
