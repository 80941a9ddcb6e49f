package worker

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/autocaps/renderd/internal/ffmpeg"
	"github.com/autocaps/renderd/internal/logging"
	"github.com/autocaps/renderd/internal/storage"
	"github.com/autocaps/renderd/internal/store"
	"github.com/autocaps/renderd/internal/subtitle"
)

const (
	inputSignedURLTTL  = 4 * time.Hour
	resultSignedURLTTL = 24 * time.Hour

	// overlay assets default to animated images when the URL carries no
	// usable extension
	defaultOverlayExt = ".gif"

	// kept in sync with the minimal template's style line; applied when
	// the plain dialect is burned without its own style block
	minimalForceStyle = "Fontname=Inter,Fontsize=40,PrimaryColour=&H00FFFFFF&,OutlineColour=&H00000000&,BackColour=&H64000000&,BorderStyle=4"
)

// Options carries the bucket layout and font configuration for job runs.
type Options struct {
	UploadsBucket   string
	CaptionsBucket  string
	RendersBucket   string
	KaraokeFontPath string
}

// Orchestrator executes render jobs: it resolves and downloads every remote
// input, drives the encoder, uploads the result and keeps the job and
// upload records in sync. One instance owns a job's whole lifecycle.
type Orchestrator struct {
	store   *store.Store
	objects storage.ObjectStore
	logger  *logging.Logger
	opts    Options
}

func NewOrchestrator(st *store.Store, objects storage.ObjectStore, logger *logging.Logger, opts Options) *Orchestrator {
	return &Orchestrator{store: st, objects: objects, logger: logger, opts: opts}
}

// Process runs one render job to completion. Validation happens before any
// record is touched; once the job is marked processing every failure lands
// in the failed state with the upload marked render_failed, and all
// temporary files are removed on every exit path.
func (o *Orchestrator) Process(ctx context.Context, payload Payload) error {
	resolutionKey, ok := ResolveResolutionKey(payload.Resolution)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedResolution, payload.Resolution)
	}

	o.logger.Infow("received render job",
		"job_id", payload.JobID,
		"upload_id", payload.UploadID,
		"template", payload.Template,
		"resolution", resolutionKey,
		"overlays", len(payload.Overlays),
	)

	if err := o.store.MarkJobProcessing(ctx, payload.JobID); err != nil {
		return err
	}

	tmpDir := os.TempDir()
	job := &jobFiles{
		video:   filepath.Join(tmpDir, payload.JobID+"-video"),
		caption: filepath.Join(tmpDir, payload.JobID+"-caption"),
		output:  filepath.Join(tmpDir, payload.JobID+"-render.mp4"),
	}
	defer job.cleanup()

	if err := o.run(ctx, &payload, job); err != nil {
		o.logger.Errorw("job failed", "job_id", payload.JobID, "error", err)

		if markErr := o.store.MarkJobFailed(ctx, payload.JobID, err.Error()); markErr != nil {
			o.logger.Errorw("failed to mark job failed", "job_id", payload.JobID, "error", markErr)
		}
		if upErr := o.store.SetUploadRenderFailed(ctx, payload.UploadID); upErr != nil {
			o.logger.Errorw("failed to mark upload render_failed", "upload_id", payload.UploadID, "error", upErr)
		}
		return err
	}

	o.logger.Infow("job completed", "job_id", payload.JobID)
	return nil
}

// temporary filesystem footprint of one job, partitioned by job id
type jobFiles struct {
	video    string
	caption  string
	output   string
	overlays []string
	fontsDir string
}

// best effort; never masks the job outcome
func (j *jobFiles) cleanup() {
	for _, p := range []string{j.video, j.caption, j.output} {
		_ = os.Remove(p)
	}
	for _, p := range j.overlays {
		_ = os.Remove(p)
	}
	if j.fontsDir != "" {
		_ = os.RemoveAll(j.fontsDir)
	}
}

func (o *Orchestrator) run(ctx context.Context, payload *Payload, job *jobFiles) error {
	if payload.CaptionPath == "" && len(payload.Segments) > 0 {
		if err := o.buildCaptionFile(ctx, payload); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		videoURL, err := o.ensureSignedURL(gctx, payload.VideoURL, o.opts.UploadsBucket, payload.VideoPath)
		if err != nil {
			return err
		}
		return storage.DownloadToFile(gctx, videoURL, job.video)
	})
	g.Go(func() error {
		captionURL, err := o.ensureSignedURL(gctx, payload.CaptionURL, o.opts.CaptionsBucket, payload.CaptionPath)
		if err != nil {
			return err
		}
		return storage.DownloadToFile(gctx, captionURL, job.caption)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fetch inputs: %w", err)
	}

	duration, err := ffmpeg.ProbeDuration(job.video)
	if err != nil {
		return fmt.Errorf("probe video duration: %w", err)
	}
	o.logger.Infow("downloaded inputs", "job_id", payload.JobID, "duration_s", duration)

	overlays := o.fetchOverlays(ctx, payload, job, duration)

	template, known := subtitle.LookupTemplate(payload.Template)
	karaoke := known && template.IsKaraoke()

	var fontsDir string
	if karaoke && payload.CaptionFormat == string(subtitle.FormatASS) {
		fontsDir = o.prepareFontDir(payload.JobID, job)
	}

	var forceStyle string
	if payload.CaptionFormat == string(subtitle.FormatSRT) && payload.Template == "minimal" {
		forceStyle = minimalForceStyle
	}

	args := ffmpeg.BuildRenderArgs(ffmpeg.GraphOptions{
		VideoPath:    job.video,
		SubtitlePath: job.caption,
		OutputPath:   job.output,
		Overlays:     overlays,
		FontsDir:     fontsDir,
		ForceStyle:   forceStyle,
		Karaoke:      karaoke,
	})

	o.logger.Infow("launching encoder", "job_id", payload.JobID)
	if err := ffmpeg.Run(ctx, o.logger, args); err != nil {
		return err
	}

	data, err := os.ReadFile(job.output)
	if err != nil {
		return fmt.Errorf("read rendered output: %w", err)
	}

	o.logger.Infow("uploading render",
		"job_id", payload.JobID,
		"bucket", o.opts.RendersBucket,
		"path", payload.OutputPath,
		"bytes", len(data),
	)
	if err := o.objects.Upload(ctx, o.opts.RendersBucket, payload.OutputPath, data, "video/mp4"); err != nil {
		return fmt.Errorf("render upload failed: %w", err)
	}

	downloadURL, err := o.objects.SignedURL(ctx, o.opts.RendersBucket, payload.OutputPath, resultSignedURLTTL)
	if err != nil {
		o.logger.Warnw("could not sign download url", "job_id", payload.JobID, "error", err)
	}

	if err := o.store.MarkJobDone(ctx, payload.JobID, store.JobResult{
		DownloadURL: downloadURL,
		StoragePath: payload.OutputPath,
	}); err != nil {
		return err
	}

	return o.store.UpdateUploadRendered(ctx, payload.UploadID, payload.OutputPath)
}

// buildCaptionFile serializes inline segments into a caption file, persists
// it to the captions bucket and points the payload at it.
func (o *Orchestrator) buildCaptionFile(ctx context.Context, payload *Payload) error {
	file := subtitle.BuildFile(payload.Template, subtitle.SanitizeSegments(payload.Segments))

	contentType := "text/plain"
	if file.Format == subtitle.FormatASS {
		contentType = "text/x-ass"
	}

	captionPath := fmt.Sprintf("%s/%s.%s", payload.UploadID, payload.JobID, file.Format)
	if err := o.objects.Upload(ctx, o.opts.CaptionsBucket, captionPath, []byte(file.Content), contentType); err != nil {
		return fmt.Errorf("store caption file: %w", err)
	}

	if err := o.store.SetUploadRendering(ctx, payload.UploadID, captionPath); err != nil {
		return err
	}

	payload.CaptionPath = captionPath
	payload.CaptionFormat = string(file.Format)
	return nil
}

// ensureSignedURL prefers a direct URL from the payload, then a time-boxed
// signed URL, then the bucket's public URL.
func (o *Orchestrator) ensureSignedURL(ctx context.Context, direct, bucket, object string) (string, error) {
	if direct != "" {
		return direct, nil
	}
	if object == "" {
		return "", fmt.Errorf("missing storage path")
	}

	signed, err := o.objects.SignedURL(ctx, bucket, object, inputSignedURLTTL)
	if err == nil {
		return signed, nil
	}

	if pub := o.objects.PublicURL(bucket, object); pub != "" {
		o.logger.Warnw("signing failed, falling back to public url",
			"bucket", bucket, "object", object, "error", err)
		return pub, nil
	}

	return "", fmt.Errorf("unable to sign asset %s: %w", object, err)
}

// clampOverlays clamps each overlay window to the probed video duration
// and drops windows that end up empty, so no degenerate compositing stage
// ever reaches the filter graph.
func clampOverlays(overlays []Overlay, duration float64) []Overlay {
	var out []Overlay
	for _, ov := range overlays {
		if ov.End > duration {
			ov.End = duration
		}
		if ov.End <= ov.Start {
			continue
		}
		out = append(out, ov)
	}
	return out
}

// fetchOverlays downloads the overlays that survive duration clamping. A
// single failed overlay download drops that overlay, never the job.
func (o *Orchestrator) fetchOverlays(ctx context.Context, payload *Payload, job *jobFiles, duration float64) []ffmpeg.OverlayInput {
	kept := clampOverlays(payload.Overlays, duration)
	if dropped := len(payload.Overlays) - len(kept); dropped > 0 {
		o.logger.Warnw("dropped overlays outside video window",
			"job_id", payload.JobID, "dropped", dropped, "duration_s", duration)
	}

	var out []ffmpeg.OverlayInput
	for i, ov := range kept {
		target := filepath.Join(os.TempDir(),
			fmt.Sprintf("%s-overlay-%d%s", payload.JobID, i, overlayExt(ov.URL)))
		if err := storage.DownloadToFile(ctx, ov.URL, target); err != nil {
			o.logger.Warnw("overlay download failed, dropping",
				"job_id", payload.JobID, "url", ov.URL, "error", err)
			_ = os.Remove(target)
			continue
		}

		job.overlays = append(job.overlays, target)
		out = append(out, ffmpeg.OverlayInput{Path: target, Start: ov.Start, End: ov.End})
	}
	return out
}

// prepareFontDir copies the karaoke font into a job-unique directory under
// a fixed simple name. The encoder scans the whole fontsdir, so it must
// contain exactly one file, and the fixed name sidesteps path-escaping
// problems with the original font location. On copy failure the original
// font's directory is used instead.
func (o *Orchestrator) prepareFontDir(jobID string, job *jobFiles) string {
	if o.opts.KaraokeFontPath == "" {
		return ""
	}

	dir := filepath.Join(os.TempDir(), jobID+"-fonts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		o.logger.Warnw("font dir create failed, using original font location", "error", err)
		return filepath.Dir(o.opts.KaraokeFontPath)
	}

	dest := filepath.Join(dir, "CustomFont.ttf")
	if err := copyFile(o.opts.KaraokeFontPath, dest); err != nil {
		o.logger.Warnw("font copy failed, using original font location",
			"font", o.opts.KaraokeFontPath, "error", err)
		_ = os.RemoveAll(dir)
		return filepath.Dir(o.opts.KaraokeFontPath)
	}

	job.fontsDir = dir
	return dir
}

func overlayExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultOverlayExt
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".gif", ".png", ".jpg", ".jpeg", ".webp", ".webm", ".mp4", ".mov":
		return ext
	}
	return defaultOverlayExt
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
