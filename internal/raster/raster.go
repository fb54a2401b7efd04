// Package raster turns catalog glyphs into PNG bitmaps.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/starford/orderlist/internal/apperr"
	"github.com/starford/orderlist/internal/catalog"
)

// Bitmap is an encoded PNG image of one icon.
type Bitmap struct {
	IconID string
	Width  int
	Height int
	PNG    []byte
}

// GlyphSource resolves icon ids to vector glyphs.
type GlyphSource interface {
	Resolve(id string) (catalog.Glyph, bool)
}

// Loader turns SVG markup into a drawable icon. Loading may complete on
// another goroutine; implementations must honour ctx while waiting.
type Loader interface {
	Load(ctx context.Context, markup []byte) (*oksvg.SvgIcon, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, markup []byte) (*oksvg.SvgIcon, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, markup []byte) (*oksvg.SvgIcon, error) {
	return f(ctx, markup)
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithScale multiplies the glyph's natural size (default 4.0).
func WithScale(s float64) Option {
	return func(r *Rasterizer) { r.scale = s }
}

// WithMaxSize bounds the longest edge of the bitmap in pixels; 0 disables it.
func WithMaxSize(px int) Option {
	return func(r *Rasterizer) { r.maxSize = px }
}

// WithLoader replaces the SVG loading step.
func WithLoader(l Loader) Option {
	return func(r *Rasterizer) { r.loader = l }
}

// Rasterizer renders icons. It holds no per-call state, so one value can
// serve any number of concurrent calls.
type Rasterizer struct {
	glyphs  GlyphSource
	loader  Loader
	scale   float64
	maxSize int
}

// New creates a Rasterizer over glyphs.
func New(glyphs GlyphSource, opts ...Option) *Rasterizer {
	r := &Rasterizer{
		glyphs: glyphs,
		loader: LoaderFunc(LoadSVG),
		scale:  4.0,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}
	return r
}

// Rasterize resolves iconID, loads its markup and paints it onto a fresh
// surface. Every failure is reported as an *apperr.RenderError.
func (r *Rasterizer) Rasterize(ctx context.Context, iconID string) (*Bitmap, error) {
	glyph, ok := r.glyphs.Resolve(iconID)
	if !ok {
		return nil, &apperr.RenderError{IconID: iconID, Err: apperr.ErrUnknownGlyph}
	}

	icon, err := r.loader.Load(ctx, glyph.SVG())
	if err != nil {
		return nil, &apperr.RenderError{IconID: iconID, Err: fmt.Errorf("load: %w", err)}
	}

	img, err := paint(icon, r.scale)
	if err != nil {
		return nil, &apperr.RenderError{IconID: iconID, Err: err}
	}
	if r.maxSize > 0 {
		b := img.Bounds()
		if b.Dx() > r.maxSize || b.Dy() > r.maxSize {
			img = imaging.Fit(img, r.maxSize, r.maxSize, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, &apperr.RenderError{IconID: iconID, Err: fmt.Errorf("encode: %w", err)}
	}
	b := img.Bounds()
	return &Bitmap{IconID: iconID, Width: b.Dx(), Height: b.Dy(), PNG: buf.Bytes()}, nil
}

// LoadSVG parses markup on its own goroutine and waits for the result or for
// ctx to end, whichever comes first.
func LoadSVG(ctx context.Context, markup []byte) (*oksvg.SvgIcon, error) {
	type result struct {
		icon *oksvg.SvgIcon
		err  error
	}
	done := make(chan result, 1)
	go func() {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(markup), oksvg.WarnErrorMode)
		done <- result{icon: icon, err: err}
	}()

	select {
	case res := <-done:
		return res.icon, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// paint draws icon on a white surface sized to its view box times scale.
func paint(icon *oksvg.SvgIcon, scale float64) (image.Image, error) {
	w := int(math.Ceil(icon.ViewBox.W * scale))
	h := int(math.Ceil(icon.ViewBox.H * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty view box %gx%g", icon.ViewBox.W, icon.ViewBox.H)
	}

	surface := imaging.New(w, h, color.White)
	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, surface, surface.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return surface, nil
}
