package avatar

import (
	"strconv"
	"strings"
)

const (
	// DefaultSize is the width and height of an avatar in pixels
	DefaultSize = 500
	// DefaultForeground colors the letters or the recolored icon
	DefaultForeground = "white"
	// DefaultFont is the bundled Go font family
	DefaultFont = "Go"
	// DefaultWeight of the letters
	DefaultWeight = "bold"
	// DefaultExport is the media type of the encoded avatar
	DefaultExport = "image/png"
	// IconScale is the share of the canvas taken by a custom icon
	IconScale = 0.7
)

// Options sets numerous options for the avatar; zero fields take defaults
type Options struct {
	Size       int       `json:"size"`       // pixels, default 500
	Foreground string    `json:"foreground"` // text or icon color, default white
	Font       string    `json:"font"`       // "Go" or "Go Mono"
	FontSize   float64   `json:"fontSize"`   // default half of Size
	Weight     string    `json:"weight"`     // "bold", "normal" or a CSS numeric weight
	CustomIcon Reference `json:"-"`          // SVG icons inherit the foreground color
	Export     string    `json:"export"`     // image/png, image/jpeg, image/gif, image/bmp or image/tiff
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{}.normalize()
}

func (o Options) normalize() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if len(strings.TrimSpace(o.Foreground)) == 0 {
		o.Foreground = DefaultForeground
	}
	if len(strings.TrimSpace(o.Font)) == 0 {
		o.Font = DefaultFont
	}
	if o.FontSize <= 0 {
		o.FontSize = float64(o.Size) / 2
	}
	if len(strings.TrimSpace(o.Weight)) == 0 {
		o.Weight = DefaultWeight
	}
	if len(strings.TrimSpace(o.Export)) == 0 {
		o.Export = DefaultExport
	}
	return o
}

// IsBold tells whether Weight asks for a bold face
func (o Options) IsBold() bool {
	w := strings.ToLower(strings.TrimSpace(o.Weight))
	switch w {
	case "bold", "bolder":
		return true
	case "", "normal", "lighter", "regular":
		return false
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 600
}
