package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/writeback"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
)

const (
	CartKey     = "@cart_items"
	WishlistKey = "@wishlist_items"
)

var (
	ErrNotInitialized = errors.New("shop: closed before initialization")
	ErrNotReady       = errors.New("shop: not ready")
)

type Status int

const (
	StatusUninitialized Status = iota
	StatusHydrating
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusHydrating:
		return "hydrating"
	case StatusReady:
		return "ready"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type Manager struct {
	store      port.KVStore
	writer     *writeback.Writer
	ownsWriter bool
	log        *logrus.Entry
	unit       currency.Unit

	initOnce sync.Once
	ready    chan struct{}
	initErr  error

	mu       sync.RWMutex
	status   Status
	cart     domain.Cart
	wishlist domain.Wishlist
	recent   domain.RecentlyViewed
	// keys mutated before hydration finished, with the ack handed to callers
	deferred map[string]*writeback.Ack
	closed   bool

	subsMu  sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

type Option func(*Manager)

func WithLogger(log *logrus.Entry) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithWriter shares an existing writer. The manager flushes but never closes it.
func WithWriter(w *writeback.Writer) Option {
	return func(m *Manager) {
		if w != nil {
			m.writer = w
		}
	}
}

func WithRecentLimit(n int) Option {
	return func(m *Manager) {
		m.recent = domain.NewRecentlyViewed(n)
	}
}

func WithCurrency(unit currency.Unit) Option {
	return func(m *Manager) {
		m.unit = unit
	}
}

func New(store port.KVStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		log:      logrus.NewEntry(logrus.StandardLogger()),
		unit:     currency.USD,
		ready:    make(chan struct{}),
		recent:   domain.NewRecentlyViewed(domain.DefaultRecentLimit),
		deferred: make(map[string]*writeback.Ack),
		subs:     make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.writer == nil {
		m.writer = writeback.New(store, writeback.WithLogger(m.log.WithField("component", "writeback")))
		m.ownsWriter = true
	}
	return m
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Ready is closed once hydration has finished, successfully or not.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

func (m *Manager) AddToCart(p domain.Product) *writeback.Ack {
	return m.mutate(CartKey, func() {
		m.cart.Add(p)
	})
}

// RemoveFromCart drops the line for id. An absent id is a no-op that still
// persists the cart.
func (m *Manager) RemoveFromCart(id int) *writeback.Ack {
	return m.mutate(CartKey, func() {
		m.cart.Remove(id)
	})
}

func (m *Manager) IncreaseQuantity(id int) *writeback.Ack {
	return m.mutate(CartKey, func() {
		m.cart.Increase(id)
	})
}

// DecreaseQuantity removes the line once its quantity would drop to zero.
func (m *Manager) DecreaseQuantity(id int) *writeback.Ack {
	return m.mutate(CartKey, func() {
		m.cart.Decrease(id)
	})
}

func (m *Manager) ClearCart() *writeback.Ack {
	return m.mutate(CartKey, func() {
		m.cart = domain.Cart{}
	})
}

// Checkout empties the cart and returns the lines it held.
func (m *Manager) Checkout() ([]domain.CartLine, *writeback.Ack) {
	var lines []domain.CartLine
	ack := m.mutate(CartKey, func() {
		lines = m.cart.Clone().Lines
		m.cart = domain.Cart{}
	})
	return lines, ack
}

func (m *Manager) AddToWishlist(p domain.Product) *writeback.Ack {
	return m.mutate(WishlistKey, func() {
		m.wishlist.Add(p)
	})
}

func (m *Manager) RemoveFromWishlist(id int) *writeback.Ack {
	return m.mutate(WishlistKey, func() {
		m.wishlist.Remove(id)
	})
}

// AddRecentlyViewed records p as the most recent view. Session only.
func (m *Manager) AddRecentlyViewed(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recent.Add(p)
	m.publishLocked()
}

func (m *Manager) Cart() domain.Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cart.Clone()
}

func (m *Manager) Wishlist() domain.Wishlist {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wishlist.Clone()
}

func (m *Manager) InWishlist(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wishlist.Contains(id)
}

func (m *Manager) RecentlyViewed() []domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recent.Clone().Entries
}

// Flush waits for every queued cart and wishlist write.
func (m *Manager) Flush(ctx context.Context) error {
	return m.writer.Flush(ctx)
}

// Close stops notifying subscribers and waits for queued writes. Writes
// still deferred on hydration are resolved with ErrNotInitialized.
// Memory stays authoritative after Close: a hydration still in flight merges
// the deferred collections as usual but no longer persists them.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	for _, ack := range m.deferred {
		ack.Follow(writeback.Resolved(ErrNotInitialized))
	}
	m.mu.Unlock()

	m.subsMu.Lock()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.subsMu.Unlock()

	if m.ownsWriter {
		return m.writer.Close(ctx)
	}
	return m.writer.Flush(ctx)
}

// Reset empties the cart, the wishlist and the recently viewed list and
// removes their stored entries together with extra keys. Stores that
// implement port.KVBatchClearer drop all of them in one step. Queued writes
// are flushed first so none of them lands after the reset.
func (m *Manager) Reset(ctx context.Context, extra ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.closed:
		return writeback.ErrClosed
	case m.status != StatusReady:
		return ErrNotReady
	}

	if err := m.writer.Flush(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		m.log.WithError(err).Warn("queued writes failed before reset")
	}

	keys := append([]string{CartKey, WishlistKey}, extra...)
	if err := port.ClearKeys(ctx, m.store, keys...); err != nil {
		return fmt.Errorf("port.ClearKeys: %w", err)
	}

	m.cart = domain.Cart{}
	m.wishlist = domain.Wishlist{}
	m.recent = domain.NewRecentlyViewed(m.recent.Limit)

	m.log.WithField("keys", keys).Info("shopping state reset")
	m.publishLocked()
	return nil
}

// mutate applies fn under the lock and persists the collection stored under key.
func (m *Manager) mutate(key string, fn func()) *writeback.Ack {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn()
	ack := m.persistLocked(key)
	m.publishLocked()
	return ack
}

func (m *Manager) persistLocked(key string) *writeback.Ack {
	if m.closed {
		if m.status != StatusReady {
			m.deferred[key] = writeback.Resolved(ErrNotInitialized)
			return m.deferred[key]
		}
		return writeback.Resolved(writeback.ErrClosed)
	}
	if m.status != StatusReady {
		ack, ok := m.deferred[key]
		if !ok {
			ack = writeback.Pending()
			m.deferred[key] = ack
		}
		return ack
	}

	raw, err := m.encodeLocked(key)
	if err != nil {
		m.log.WithError(err).WithField("key", key).Error("encode failed")
		return writeback.Resolved(err)
	}
	return m.writer.Enqueue(key, raw)
}

func (m *Manager) encodeLocked(key string) ([]byte, error) {
	var v any
	switch key {
	case CartKey:
		lines := m.cart.Lines
		if lines == nil {
			lines = []domain.CartLine{}
		}
		v = lines
	case WishlistKey:
		entries := m.wishlist.Entries
		if entries == nil {
			entries = []domain.Product{}
		}
		v = entries
	default:
		return nil, fmt.Errorf("unknown key %q", key)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal %s: %w", key, err)
	}
	return raw, nil
}
