// Package itemservice is the only mutation surface of the ledger. Every
// request is translated into exactly one user notification.
package itemservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/orderlist/internal/apperr"
	"github.com/starford/orderlist/internal/export"
	"github.com/starford/orderlist/internal/ledger"
	"github.com/starford/orderlist/internal/metrics"
	"github.com/starford/orderlist/internal/models"
	"github.com/starford/orderlist/internal/notify"
	"github.com/starford/orderlist/internal/sse"
)

// User-facing notification messages.
const (
	MsgAdded        = "Item added successfully"
	MsgDeleted      = "Item deleted successfully"
	MsgMissingIcon  = "Please select an icon!"
	MsgInvalid      = "Please enter valid item name and amount!"
	MsgNotFound     = "Item not found!"
	MsgEmptyLedger  = "No items to generate PDF!"
	MsgExportFailed = "Failed to generate PDF"
)

// Composer renders a ledger snapshot into a document.
type Composer interface {
	Compose(ctx context.Context, items []models.Item) (*export.Artifact, error)
}

// LedgerEvents receives item change events.
type LedgerEvents interface {
	PublishLedgerEvent(kind, id string)
}

// Option configures a Service.
type Option func(*Service)

// WithEvents publishes item changes to ev.
func WithEvents(ev LedgerEvents) Option {
	return func(s *Service) { s.events = ev }
}

// WithMetrics records outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger (slog.Default otherwise).
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service coordinates the ledger, the notification slot and the composer.
type Service struct {
	ledger   *ledger.Ledger
	slot     *notify.Slot
	composer Composer
	events   LedgerEvents
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService creates a new item service.
func NewService(l *ledger.Ledger, slot *notify.Slot, c Composer, opts ...Option) *Service {
	s := &Service{ledger: l, slot: slot, composer: c}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RequestAdd validates and appends a new item.
func (s *Service) RequestAdd(_ context.Context, c models.Candidate) (models.Item, error) {
	item, err := s.ledger.Add(c)
	if err != nil {
		reason := reasonFor(err)
		s.metrics.LedgerOp("add", reason, s.ledger.Len())
		s.logger.Debug("add rejected", slog.String("reason", reason), slog.String("error", err.Error()))
		s.slot.Error(MessageFor(err))
		return models.Item{}, err
	}

	s.metrics.LedgerOp("add", "", s.ledger.Len())
	s.logger.Info("item added",
		slog.String("id", item.ID),
		slog.String("name", item.Name),
		slog.Int("quantity", item.Quantity),
		slog.String("icon", item.IconID))
	s.slot.Success(MsgAdded)
	s.publish(sse.LedgerAdded, item.ID)
	return item, nil
}

// RequestRemove deletes the item with id.
func (s *Service) RequestRemove(_ context.Context, id string) error {
	if err := s.ledger.Remove(id); err != nil {
		s.metrics.LedgerOp("remove", reasonFor(err), s.ledger.Len())
		s.logger.Debug("remove rejected", slog.String("id", id), slog.String("error", err.Error()))
		s.slot.Error(MessageFor(err))
		return err
	}

	s.metrics.LedgerOp("remove", "", s.ledger.Len())
	s.logger.Info("item removed", slog.String("id", id))
	s.slot.Success(MsgDeleted)
	s.publish(sse.LedgerRemoved, id)
	return nil
}

// Export composes the current ledger. Failures post one error notification;
// success posts none.
func (s *Service) Export(ctx context.Context) (*export.Artifact, error) {
	items := s.ledger.Snapshot()
	start := time.Now()

	art, err := s.composer.Compose(ctx, items)
	if err != nil {
		reason := reasonFor(err)
		s.metrics.Export(reason, 0, time.Since(start))
		switch {
		case errors.Is(err, apperr.ErrRender):
			s.logger.Warn("export aborted", slog.String("error", err.Error()))
		case !errors.Is(err, apperr.ErrEmptyLedger):
			s.logger.Error("export failed", slog.String("error", err.Error()))
		}
		s.slot.Error(MessageFor(err))
		return nil, err
	}

	took := time.Since(start)
	s.metrics.Export("", art.Pages, took)
	s.logger.Info("export finished",
		slog.Int("items", len(items)),
		slog.Int("pages", art.Pages),
		slog.Int("bytes", len(art.Data)),
		slog.Duration("took", took))
	return art, nil
}

// Items returns the ledger in order.
func (s *Service) Items() []models.Item {
	return s.ledger.Snapshot()
}

// Item looks up one item by id. Lookups are reads and post no notification.
func (s *Service) Item(id string) (models.Item, error) {
	return s.ledger.Get(id)
}

// Notification returns the pending notification, if any.
func (s *Service) Notification() (models.Notification, bool) {
	return s.slot.Current()
}

// Acknowledge clears the pending notification.
func (s *Service) Acknowledge() {
	s.slot.Ack()
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events.PublishLedgerEvent(kind, id)
	}
}

// MessageFor returns the user-facing message for a request error.
func MessageFor(err error) string {
	switch {
	case errors.Is(err, apperr.ErrMissingIcon):
		return MsgMissingIcon
	case errors.Is(err, apperr.ErrInvalidFields):
		return MsgInvalid
	case errors.Is(err, apperr.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, apperr.ErrEmptyLedger):
		return MsgEmptyLedger
	case errors.Is(err, apperr.ErrRender):
		return MsgExportFailed + ": " + err.Error()
	default:
		return MsgExportFailed + "!"
	}
}

// reasonFor maps an error to a metrics label.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, apperr.ErrMissingIcon):
		return "missing_icon"
	case errors.Is(err, apperr.ErrInvalidFields):
		return "invalid_fields"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrEmptyLedger):
		return "empty_ledger"
	case errors.Is(err, apperr.ErrRender):
		return "render_failed"
	default:
		return "internal"
	}
}
