// Package ledger owns the ordered, in-memory list of items.
package ledger

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/orderlist/internal/apperr"
	"github.com/starford/orderlist/internal/models"
)

// DefaultTimeLayout formats CreatedAt as a local time of day.
const DefaultTimeLayout = "3:04:05 PM"

// IconSet reports which icon ids may be attached to an item.
type IconSet interface {
	Has(id string) bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDFunc overrides item id generation.
func WithIDFunc(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithTimeLayout sets the CreatedAt layout.
func WithTimeLayout(layout string) Option {
	return func(l *Ledger) { l.timeLayout = layout }
}

// Ledger is an ordered collection of items kept in insertion order.
//
// All methods are safe for concurrent use. None of them block on anything but
// the ledger's own mutex, so every add or remove is atomic to its caller.
type Ledger struct {
	icons IconSet

	newID      func() string
	now        func() time.Time
	timeLayout string

	mu     sync.Mutex
	items  []models.Item
	issued map[string]struct{} // every id ever handed out
}

// New creates an empty ledger validating icons against icons.
func New(icons IconSet, opts ...Option) *Ledger {
	l := &Ledger{
		icons:      icons,
		newID:      uuid.NewString,
		now:        time.Now,
		timeLayout: DefaultTimeLayout,
		issued:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add validates c and appends a new item on success. The ledger is left
// untouched when validation fails.
func (l *Ledger) Add(c models.Candidate) (models.Item, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := l.validate(c); err != nil {
		return models.Item{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := l.freshID()
	if err != nil {
		return models.Item{}, err
	}
	item := models.Item{
		ID:        id,
		Name:      c.Name,
		Quantity:  c.Quantity,
		IconID:    c.IconID,
		CreatedAt: l.now().Format(l.timeLayout),
	}
	l.items = append(l.items, item)
	return item, nil
}

// Remove deletes the item with the given id, keeping the order of the rest.
func (l *Ledger) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.items, func(it models.Item) bool { return it.ID == id })
	if i < 0 {
		return fmt.Errorf("item %q: %w", id, apperr.ErrNotFound)
	}
	l.items = slices.Delete(l.items, i, i+1)
	return nil
}

// Get returns the item with the given id.
func (l *Ledger) Get(id string) (models.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, it := range l.items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.Item{}, fmt.Errorf("item %q: %w", id, apperr.ErrNotFound)
}

// Snapshot returns a copy of the items in ledger order.
func (l *Ledger) Snapshot() []models.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Len returns the number of items.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// validate checks the icon first so that a missing selection wins over bad
// name or quantity input.
func (l *Ledger) validate(c models.Candidate) error {
	if c.IconID == "" {
		return apperr.ErrMissingIcon
	}
	if !l.icons.Has(c.IconID) {
		return fmt.Errorf("unknown icon %q: %w", c.IconID, apperr.ErrMissingIcon)
	}
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Quantity, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidFields, err)
	}
	return nil
}

// freshID must be called with mu held.
func (l *Ledger) freshID() (string, error) {
	for range 8 {
		id := l.newID()
		if id == "" {
			continue
		}
		if _, used := l.issued[id]; used {
			continue
		}
		l.issued[id] = struct{}{}
		return id, nil
	}
	return "", fmt.Errorf("ledger: could not allocate a unique item id")
}
