// Package batch exports an order list file to a PDF document.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/orderlist/internal/itemservice"
	"github.com/starford/orderlist/internal/ledger"
	"github.com/starford/orderlist/internal/listfile"
	"github.com/starford/orderlist/internal/metrics"
	"github.com/starford/orderlist/internal/models"
	"github.com/starford/orderlist/internal/notify"
	"github.com/starford/orderlist/internal/storage"
)

// Notice is the notification produced by one list entry.
type Notice struct {
	Line int
	Name string
	models.Notification
}

// Report summarises one run.
type Report struct {
	Title     string
	Items     []models.Item
	Accepted  int
	Rejected  int
	Notices   []Notice
	Pages     int
	Checksum  string
	SavedPath string
}

// Runner replays list files through a fresh ledger and saves the result.
type Runner struct {
	icons    ledger.IconSet
	composer itemservice.Composer
	store    storage.Provider
	metrics  *metrics.Metrics
	logger   *slog.Logger
	opts     []ledger.Option
}

// NewRunner creates a runner. m may be nil. opts configure the ledger built
// for every run.
func NewRunner(icons ledger.IconSet, c itemservice.Composer, store storage.Provider, m *metrics.Metrics, logger *slog.Logger, opts ...ledger.Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{icons: icons, composer: c, store: store, metrics: m, logger: logger, opts: opts}
}

// Run parses the list at path, adds every entry in order and writes the
// document. Rejected entries are reported and skipped. The previous document
// is left untouched when the export fails.
func (r *Runner) Run(ctx context.Context, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	list, err := listfile.Parse(data)
	if err != nil {
		return nil, err
	}

	slot := notify.NewSlot(nil)
	svc := itemservice.NewService(ledger.New(r.icons, r.opts...), slot, r.composer,
		itemservice.WithMetrics(r.metrics),
		itemservice.WithLogger(r.logger))

	rep := &Report{Title: list.Title}
	r.logger.Debug("list parsed",
		slog.String("list", path),
		slog.String("title", list.Title),
		slog.Int("entries", len(list.Entries)))
	for _, e := range list.Entries {
		_, addErr := svc.RequestAdd(ctx, e.Candidate)
		n, _ := svc.Notification()
		svc.Acknowledge()
		rep.Notices = append(rep.Notices, Notice{Line: e.Line, Name: e.Name, Notification: n})
		if addErr != nil {
			rep.Rejected++
			r.logger.Warn("list entry rejected",
				slog.String("list", path),
				slog.Int("line", e.Line),
				slog.String("name", e.Name),
				slog.String("message", n.Message))
			continue
		}
		rep.Accepted++
	}
	rep.Items = svc.Items()

	art, err := svc.Export(ctx)
	if err != nil {
		return rep, err
	}
	if err := r.store.Write(art.Filename, art.Data); err != nil {
		return rep, fmt.Errorf("save %s: %w", art.Filename, err)
	}

	rep.Pages = art.Pages
	rep.Checksum = art.Checksum
	rep.SavedPath = art.Filename
	r.logger.Info("list exported",
		slog.String("list", path),
		slog.String("title", rep.Title),
		slog.Int("accepted", rep.Accepted),
		slog.Int("rejected", rep.Rejected),
		slog.Int("pages", rep.Pages),
		slog.String("file", rep.SavedPath))
	return rep, nil
}
