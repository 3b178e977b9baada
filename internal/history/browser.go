// Package history browses and clears the backend's log of past predictions.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kamilpajak/humanorai/pkg/models"
	"go.uber.org/zap"
)

// DefaultLimit is how many entries a browser requests unless told otherwise.
const DefaultLimit = 50

// User-facing message prefixes.
const (
	LoadFailedMessage  = "History alınamadı"
	ClearFailedMessage = "History temizlenemedi"
)

var (
	// ErrInvalidLimit is returned by Load for a non-positive limit.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrSuperseded is returned by Load when a newer load started before
	// this one completed. Its response was discarded.
	ErrSuperseded = errors.New("history load superseded")

	// ErrClosed is returned by operations on a closed browser.
	ErrClosed = errors.New("history browser closed")
)

// Store is the backend side of the browser.
type Store interface {
	History(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	ClearHistory(ctx context.Context) error
}

// View is what the display layer renders.
type View struct {
	Loading bool
	Items   []models.HistoryEntry
	Err     string
}

// Empty reports the "no records" condition.
func (v View) Empty() bool {
	return !v.Loading && len(v.Items) == 0
}

// Browser holds a point-in-time snapshot of the history list.
type Browser struct {
	store  Store
	logger *zap.Logger

	mu       sync.Mutex
	gen      uint64
	closed   bool
	loading  bool
	snapshot []models.HistoryEntry
	valid    bool
	errMsg   string
	limit    int
}

// Option configures a Browser.
type Option func(*Browser)

// WithLogger sets the browser's logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Browser) { b.logger = l }
}

// WithLimit sets the limit Clear reloads with before any Load.
func WithLimit(n int) Option {
	return func(b *Browser) {
		if n > 0 {
			b.limit = n
		}
	}
}

// NewBrowser creates a browser with nothing loaded.
func NewBrowser(store Store, opts ...Option) *Browser {
	b := &Browser{
		store:  store,
		logger: zap.NewNop(),
		limit:  DefaultLimit,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// View returns the current display state. Items is nil while the last
// load failed.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := View{Loading: b.loading, Err: b.errMsg}
	if b.valid {
		v.Items = b.snapshot
	}
	return v
}

// Load fetches at most limit entries and makes them the current snapshot.
// Only the most recently issued load is applied; earlier ones return
// ErrSuperseded.
func (b *Browser) Load(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	b.gen++
	gen := b.gen
	b.limit = limit
	b.loading = true
	b.errMsg = ""
	b.mu.Unlock()

	items, err := b.store.History(ctx, limit)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	if gen != b.gen {
		b.logger.Debug("discarding superseded history response",
			zap.Uint64("generation", gen), zap.Uint64("current", b.gen))
		return nil, ErrSuperseded
	}

	b.loading = false
	if err != nil {
		b.valid = false
		b.errMsg = fmt.Sprintf("%s: %v", LoadFailedMessage, err)
		b.logger.Warn("history load failed", zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}

	if items == nil {
		items = []models.HistoryEntry{}
	}
	b.snapshot = items
	b.valid = true
	b.logger.Debug("history loaded", zap.Int("limit", limit), zap.Int("count", len(items)))
	return items, nil
}

// Clear deletes every entry on the backend, then reloads with the last
// used limit so the view reflects the backend's state.
func (b *Browser) Clear(ctx context.Context) ([]models.HistoryEntry, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	limit := b.limit
	b.mu.Unlock()

	if err := b.store.ClearHistory(ctx); err != nil {
		b.mu.Lock()
		if !b.closed {
			b.errMsg = fmt.Sprintf("%s: %v", ClearFailedMessage, err)
		}
		b.mu.Unlock()
		b.logger.Warn("history clear failed", zap.Error(err))
		return nil, err
	}

	return b.Load(ctx, limit)
}

// Close detaches the browser; in-flight responses are ignored on arrival.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.loading = false
}
