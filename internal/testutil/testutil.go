// Package testutil provides shared test helpers: fixed clocks and a scripted
// rasterizer whose per-icon timing and failures are controlled by the test.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/starford/orderlist/internal/apperr"
	"github.com/starford/orderlist/internal/raster"
)

// FixedTime is the instant returned by Clock.
var FixedTime = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

// Clock returns a time source frozen at FixedTime.
func Clock() func() time.Time {
	return func() time.Time { return FixedTime }
}

var (
	pngOnce sync.Once
	pngData []byte
)

// TinyPNG returns a valid opaque 2x2 PNG.
func TinyPNG() []byte {
	pngOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				img.Set(x, y, color.RGBA{R: 0x20, G: 0x30, B: 0x40, A: 0xff})
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			panic(err)
		}
		pngData = buf.Bytes()
	})
	return pngData
}

// StubRasterizer returns TinyPNG for every icon after an optional per-icon
// delay, or fails icons listed in Fail. Completion order is recorded.
type StubRasterizer struct {
	Delays map[string]time.Duration
	Fail   map[string]error

	mu        sync.Mutex
	completed []string
	inFlight  int
	maxFlight int
}

// Rasterize implements export.IconRasterizer.
func (s *StubRasterizer) Rasterize(ctx context.Context, iconID string) (*raster.Bitmap, error) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxFlight {
		s.maxFlight = s.inFlight
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if d := s.Delays[iconID]; d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, &apperr.RenderError{IconID: iconID, Err: ctx.Err()}
		}
	}

	s.mu.Lock()
	s.completed = append(s.completed, iconID)
	s.mu.Unlock()

	if err := s.Fail[iconID]; err != nil {
		return nil, &apperr.RenderError{IconID: iconID, Err: err}
	}
	return &raster.Bitmap{IconID: iconID, Width: 2, Height: 2, PNG: TinyPNG()}, nil
}

// Completed returns icon ids in the order their rasterization finished.
func (s *StubRasterizer) Completed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.completed...)
}

// MaxInFlight returns the highest number of concurrent calls observed.
func (s *StubRasterizer) MaxInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxFlight
}

// Calls returns how many rasterizations finished (successfully or not).
func (s *StubRasterizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed)
}
