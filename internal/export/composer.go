// Package export composes the ledger into a paginated PDF document.
//
// Icons are rasterized concurrently and may finish in any order. Each result
// is stored at its item's ledger index, and the document is only written once
// every rasterization has returned, in a single pass over the ledger order.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"github.com/starford/orderlist/internal/apperr"
	"github.com/starford/orderlist/internal/checksum"
	"github.com/starford/orderlist/internal/models"
	"github.com/starford/orderlist/internal/raster"
)

const (
	// Filename is the download name of every artifact.
	Filename = "items_list.pdf"
	// ContentType is the MIME type of every artifact.
	ContentType = "application/pdf"

	DefaultDateLayout  = "01/02/2006"
	DefaultPageSize    = "A4"
	DefaultConcurrency = 4
)

// Page geometry in millimetres.
const (
	topMargin    = 10.0
	bottomMargin = 10.0
	titleX       = 60.0
	titleGap     = 10.0
	iconX        = 5.0
	iconSize     = 10.0
	textX        = 30.0
	rowHeight    = 20.0

	titleFontSize = 20.0
	rowFontSize   = 16.0
)

// IconRasterizer produces the bitmap for one icon.
type IconRasterizer interface {
	Rasterize(ctx context.Context, iconID string) (*raster.Bitmap, error)
}

// Artifact is a finished document ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Checksum    string
	Rows        []string // row texts in document order, as printed
	Pages       int
	CreatedAt   time.Time
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock sets the time source for the title date.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// WithDateLayout sets the title date layout.
func WithDateLayout(layout string) Option {
	return func(c *Composer) { c.dateLayout = layout }
}

// WithPageSize sets the page size name understood by fpdf (A4, Letter, ...).
func WithPageSize(size string) Option {
	return func(c *Composer) { c.pageSize = size }
}

// WithConcurrency bounds the number of rasterizations in flight.
func WithConcurrency(n int) Option {
	return func(c *Composer) { c.concurrency = n }
}

// WithTimeout bounds the rasterization phase of one export; 0 means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) { c.timeout = d }
}

// WithCompression toggles PDF stream compression (on by default).
func WithCompression(on bool) Option {
	return func(c *Composer) { c.compress = on }
}

// Composer builds Artifacts from ledger snapshots.
type Composer struct {
	raster      IconRasterizer
	now         func() time.Time
	dateLayout  string
	pageSize    string
	concurrency int
	timeout     time.Duration
	compress    bool
}

// NewComposer creates a Composer that draws icons with r.
func NewComposer(r IconRasterizer, opts ...Option) *Composer {
	c := &Composer{
		raster:      r,
		now:         time.Now,
		dateLayout:  DefaultDateLayout,
		pageSize:    DefaultPageSize,
		concurrency: DefaultConcurrency,
		compress:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	return c
}

// RowText is the text written next to an item's icon.
func RowText(it models.Item) string {
	return fmt.Sprintf("%s ---- Quantity: %d", it.Name, it.Quantity)
}

// Title is the heading line for a document created at t.
func (c *Composer) Title(t time.Time) string {
	return "ORDER LISTS - " + t.Format(c.dateLayout)
}

// Compose renders items into a new Artifact. It fails with
// apperr.ErrEmptyLedger before doing any work when items is empty, and with
// *apperr.PartialRenderError when any icon fails; no document is produced in
// either case.
func (c *Composer) Compose(ctx context.Context, items []models.Item) (*Artifact, error) {
	if len(items) == 0 {
		return nil, apperr.ErrEmptyLedger
	}
	bitmaps, err := c.rasterizeAll(ctx, items)
	if err != nil {
		return nil, err
	}
	return c.write(items, bitmaps)
}

// rasterizeAll returns one bitmap per item, indexed like items.
func (c *Composer) rasterizeAll(ctx context.Context, items []models.Item) ([]*raster.Bitmap, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	bitmaps := make([]*raster.Bitmap, len(items))
	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, it := range items {
		g.Go(func() error {
			bitmaps[i], errs[i] = c.raster.Rasterize(ctx, it.IconID)
			return nil
		})
	}
	_ = g.Wait()

	var failures []apperr.ItemFailure
	for i, err := range errs {
		if err == nil && bitmaps[i] == nil {
			err = errors.New("no bitmap returned")
		}
		if err == nil {
			continue
		}
		var re *apperr.RenderError
		if !errors.As(err, &re) {
			re = &apperr.RenderError{IconID: items[i].IconID, Err: err}
		}
		failures = append(failures, apperr.ItemFailure{Index: i, Name: items[i].Name, Err: re})
	}
	if len(failures) > 0 {
		return nil, &apperr.PartialRenderError{Total: len(items), Failures: failures}
	}
	return bitmaps, nil
}

// printed decodes a cp1252 row back to UTF-8 so it matches what the document
// shows. Runes outside cp1252 come back as the translator's placeholder.
func printed(cp1252, fallback string) string {
	s, err := charmap.Windows1252.NewDecoder().String(cp1252)
	if err != nil {
		return fallback
	}
	return s
}

// write lays out the title and one row per item, in index order.
func (c *Composer) write(items []models.Item, bitmaps []*raster.Bitmap) (*Artifact, error) {
	now := c.now()

	pdf := fpdf.New("P", "mm", c.pageSize, "")
	pdf.SetCompression(c.compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(now)
	pdf.SetTitle("Order list", true)
	pdf.SetCreator("orderlist", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", titleFontSize)
	pdf.Text(titleX, topMargin, tr(c.Title(now)))
	pdf.SetFont("Helvetica", "", rowFontSize)

	y := topMargin + titleGap
	rows := make([]string, len(items))
	imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, it := range items {
		if y+iconSize > pageHeight-bottomMargin {
			pdf.AddPage()
			y = topMargin
		}
		bm := bitmaps[i]
		name := "icon-" + bm.IconID
		pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(bm.PNG))
		pdf.ImageOptions(name, iconX, y, iconSize, iconSize, false, imgOpts, 0, "")

		text := tr(RowText(it))
		pdf.Text(textX, y+iconSize/2, text)
		rows[i] = printed(text, RowText(it))
		y += rowHeight
	}
	pages := pdf.PageNo()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: write pdf: %w", err)
	}
	data := buf.Bytes()
	return &Artifact{
		Filename:    Filename,
		ContentType: ContentType,
		Data:        data,
		Checksum:    checksum.Sum(data),
		Rows:        rows,
		Pages:       pages,
		CreatedAt:   now,
	}, nil
}
