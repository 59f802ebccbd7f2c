package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAspectRatio is returned when parsing an unsupported ratio string.
var ErrUnknownAspectRatio = errors.New("catalog: unknown aspect ratio")

// AspectRatio is one of the fixed canvas presets.
type AspectRatio string

const (
	Aspect16x9 AspectRatio = "16:9"
	Aspect1x1  AspectRatio = "1:1"
	Aspect9x16 AspectRatio = "9:16"
	Aspect4x3  AspectRatio = "4:3"
)

// CanvasWidth is the logical width shared by every preset.
const CanvasWidth = 1200

var canvasHeights = map[AspectRatio]int{
	Aspect16x9: 675,
	Aspect1x1:  1200,
	Aspect9x16: 2133,
	Aspect4x3:  900,
}

// Size returns the canvas pixel size for the ratio.
// It panics for values outside the enum; use ParseAspectRatio on user input.
func (a AspectRatio) Size() (width, height int) {
	h, ok := canvasHeights[a]
	if !ok {
		panic(fmt.Sprintf("catalog: aspect ratio %q has no canvas size", string(a)))
	}
	return CanvasWidth, h
}

// Valid reports whether a is one of the enum values.
func (a AspectRatio) Valid() bool {
	_, ok := canvasHeights[a]
	return ok
}

// String returns the ratio in "w:h" form.
func (a AspectRatio) String() string {
	return string(a)
}

// ParseAspectRatio validates a ratio string such as "16:9".
func ParseAspectRatio(s string) (AspectRatio, error) {
	a := AspectRatio(strings.TrimSpace(s))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAspectRatio, s)
	}
	return a, nil
}

// AspectPreset is a user-facing aspect ratio choice.
type AspectPreset struct {
	Label string      `json:"label"`
	Value AspectRatio `json:"value"`
}

// AspectPresets lists the ratios offered to users. 4:3 is intentionally absent.
func AspectPresets() []AspectPreset {
	return []AspectPreset{
		{Label: "YouTube (16:9)", Value: Aspect16x9},
		{Label: "Instagram (1:1)", Value: Aspect1x1},
		{Label: "Story (9:16)", Value: Aspect9x16},
	}
}
