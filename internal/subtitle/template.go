package subtitle

import (
	"fmt"
	"strings"
)

// per-word highlight configuration for karaoke templates
type KaraokeConfig struct {
	HighlightColor   string   `json:"highlightColor,omitempty"`
	HighlightColors  []string `json:"highlightColors,omitempty"`
	Mode             string   `json:"mode,omitempty"`
	CycleAfterChunks int      `json:"cycleAfterChunks,omitempty"`
}

// immutable visual template selected by identifier
type Template struct {
	Name         string         `json:"name"`
	FontFamily   string         `json:"fontFamily"`
	FontSize     int            `json:"fontSize"`
	PrimaryColor string         `json:"primaryColor"`
	OutlineColor string         `json:"outlineColor"`
	OutlineWidth int            `json:"outlineWidth"`
	ShadowColor  string         `json:"shadowColor"`
	ShadowWidth  int            `json:"shadowWidth"`
	Alignment    int            `json:"alignment"`
	MarginV      int            `json:"marginV"`
	Uppercase    bool           `json:"uppercase,omitempty"`
	Karaoke      *KaraokeConfig `json:"karaoke,omitempty"`
}

// IsKaraoke reports whether the template uses per-word highlight events.
func (t Template) IsKaraoke() bool {
	return t.Karaoke != nil
}

// Templates is the catalog of known visual templates, keyed by the template
// identifier carried in the render payload. Unknown identifiers degrade to
// the plain SRT dialect.
var Templates = map[string]Template{
	"minimal": {
		Name:         "Minimal",
		FontFamily:   "Inter",
		FontSize:     40,
		PrimaryColor: "#FFFFFF",
		OutlineColor: "#000000",
		OutlineWidth: 2,
		ShadowColor:  "#00000080",
		ShadowWidth:  0,
		Alignment:    2,
		MarginV:      40,
	},
	"glowy": {
		Name:         "Glowy",
		FontFamily:   "Inter",
		FontSize:     62,
		PrimaryColor: "#FFFFFF",
		OutlineColor: "#00000080",
		OutlineWidth: 5,
		ShadowColor:  "#000000",
		ShadowWidth:  18,
		Alignment:    5,
		MarginV:      40,
	},
	"karaoke": {
		Name:         "CreatorKinetic",
		FontFamily:   "Retro Dream Display Free Demo",
		FontSize:     68,
		PrimaryColor: "#FFFFFF",
		OutlineColor: "#000000",
		OutlineWidth: 6,
		ShadowColor:  "#000000",
		ShadowWidth:  12,
		Alignment:    5,
		MarginV:      50,
		Uppercase:    true,
		Karaoke: &KaraokeConfig{
			HighlightColor: "#FFFF40",
			Mode:           "word",
		},
	},
	"sportGlow": {
		Name:         "SportGlow",
		FontFamily:   "Anton",
		FontSize:     82,
		PrimaryColor: "#FFFFFF",
		OutlineColor: "#000000",
		OutlineWidth: 8,
		ShadowColor:  "#000000",
		ShadowWidth:  20,
		Alignment:    5,
		MarginV:      50,
		Uppercase:    true,
		Karaoke: &KaraokeConfig{
			HighlightColor: "#FFFF40",
			Mode:           "word",
		},
	},
}

// LookupTemplate returns the template for an identifier, if known.
func LookupTemplate(id string) (Template, bool) {
	t, ok := Templates[id]
	return t, ok
}

// highlight palette for a karaoke config; never empty
func (k *KaraokeConfig) palette() []string {
	if k == nil {
		return []string{"#FFFF00"}
	}
	if len(k.HighlightColors) > 0 {
		return k.HighlightColors
	}
	if k.HighlightColor != "" {
		return []string{k.HighlightColor}
	}
	return []string{"#FFFF00"}
}

func (k *KaraokeConfig) cycleAfter() int {
	if k == nil || k.CycleAfterChunks <= 0 {
		return 2
	}
	return k.CycleAfterChunks
}

// assColor converts a #RRGGBB or #RRGGBBAA hex color to the ASS
// &HAABBGGRR& form. ASS alpha is inverted: 00 is opaque, FF transparent.
func assColor(hex string) string {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")

	var r, g, b, a uint8 = 255, 255, 255, 255
	switch len(h) {
	case 6:
		fmt.Sscanf(h, "%02x%02x%02x", &r, &g, &b)
	case 8:
		fmt.Sscanf(h, "%02x%02x%02x%02x", &r, &g, &b, &a)
	}

	return fmt.Sprintf("&H%02X%02X%02X%02X&", 255-a, b, g, r)
}
