package preview

import (
	"github.com/kk-code-lab/arangr/internal/fs"
	"github.com/kk-code-lab/arangr/internal/imageview"
)

// Limits are the size ceilings applied while resolving a preview.
type Limits struct {
	// MaxSize refuses the preview entirely.
	MaxSize int64
	// LargeFile triggers the large-file notice and bounds the AI excerpt.
	LargeFile int64

	TextReadCeiling int64
	TextPrefix      int64
	TextFallback    fs.Fallback

	// DisplayChars caps the characters handed to the display.
	DisplayChars   int
	AIExcerptChars int
	HashMaxSize    int64

	MinZoom float64
	MaxZoom float64
	// MaxImagePixels refuses images whose header declares more pixels.
	MaxImagePixels int64
}

// DefaultLimits returns the stock ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxSize:         50 << 20,
		LargeFile:       1 << 20,
		TextReadCeiling: fs.DefaultReadCeiling,
		TextPrefix:      fs.DefaultTextPrefix,
		DisplayChars:    50000,
		AIExcerptChars:  5000,
		HashMaxSize:     10 << 20,
		MinZoom:         imageview.DefaultMinZoom,
		MaxZoom:         imageview.DefaultMaxZoom,
		MaxImagePixels:  imageview.DefaultMaxPixels,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxSize <= 0 {
		l.MaxSize = d.MaxSize
	}
	if l.LargeFile <= 0 {
		l.LargeFile = d.LargeFile
	}
	if l.TextReadCeiling <= 0 {
		l.TextReadCeiling = d.TextReadCeiling
	}
	if l.TextPrefix <= 0 {
		l.TextPrefix = d.TextPrefix
	}
	if l.DisplayChars <= 0 {
		l.DisplayChars = d.DisplayChars
	}
	if l.AIExcerptChars <= 0 {
		l.AIExcerptChars = d.AIExcerptChars
	}
	if l.HashMaxSize <= 0 {
		l.HashMaxSize = d.HashMaxSize
	}
	if l.MinZoom <= 0 || l.MaxZoom < l.MinZoom {
		l.MinZoom, l.MaxZoom = d.MinZoom, d.MaxZoom
	}
	if l.MaxImagePixels <= 0 {
		l.MaxImagePixels = d.MaxImagePixels
	}
	return l
}

func (l Limits) decodeOptions() fs.DecodeOptions {
	return fs.DecodeOptions{
		ReadCeiling: l.TextReadCeiling,
		Prefix:      l.TextPrefix,
		Fallback:    l.TextFallback,
	}
}
