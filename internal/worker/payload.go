package worker

import (
	"errors"
	"strings"

	"github.com/autocaps/renderd/internal/subtitle"
)

// time-windowed image/video asset composited onto the base frames
type Overlay struct {
	URL    string  `json:"url"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	X      *int    `json:"x,omitempty"`
	Y      *int    `json:"y,omitempty"`
	Width  *int    `json:"width,omitempty"`
	Height *int    `json:"height,omitempty"`
}

// Payload is one inbound render request, produced by the job-creation
// service and consumed exactly once.
type Payload struct {
	JobID         string    `json:"jobId"`
	UploadID      string    `json:"uploadId"`
	VideoPath     string    `json:"videoPath"`
	CaptionPath   string    `json:"captionPath"`
	CaptionFormat string    `json:"captionFormat"`
	Template      string    `json:"template"`
	Resolution    string    `json:"resolution"`
	OutputPath    string    `json:"outputPath"`
	Overlays      []Overlay `json:"overlays,omitempty"`
	VideoURL      string    `json:"videoUrl,omitempty"`
	CaptionURL    string    `json:"captionUrl,omitempty"`
	// inline caption source; when set and no caption file was persisted
	// upstream, the worker builds and uploads one itself
	Segments []subtitle.Segment `json:"segments,omitempty"`
}

type Resolution struct {
	Width  int
	Height int
}

var renderResolutions = map[string]Resolution{
	"1080p": {Width: 1920, Height: 1080},
	"720p":  {Width: 1280, Height: 720},
}

var ErrUnsupportedResolution = errors.New("unsupported resolution")

// ResolveResolutionKey normalizes a resolution label to its canonical key.
// Case and whitespace are ignored and the bare numeric forms are accepted
// as aliases.
func ResolveResolutionKey(res string) (string, bool) {
	n := strings.ToLower(res)
	n = strings.Join(strings.Fields(n), "")
	if _, ok := renderResolutions[n]; ok {
		return n, true
	}
	switch n {
	case "1080":
		return "1080p", true
	case "720":
		return "720p", true
	}
	return "", false
}
