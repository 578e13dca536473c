package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Initialize loads the cart and wishlist from storage. Only the first call
// does any work; later calls return its result. A failed or corrupt load
// leaves that collection empty and is reported in the returned error, but
// the manager is ready either way.
func (m *Manager) Initialize(ctx context.Context) error {
	m.initOnce.Do(func() {
		m.mu.Lock()
		m.status = StatusHydrating
		m.mu.Unlock()

		m.initErr = m.hydrate(ctx)
		close(m.ready)
	})
	return m.initErr
}

func (m *Manager) hydrate(ctx context.Context) error {
	var (
		lines   []domain.CartLine
		entries []domain.Product
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		lines, err = load[domain.CartLine](ctx, m.store, CartKey)
		if err != nil {
			m.log.WithError(err).Warn("cart load failed, starting empty")
		}
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = load[domain.Product](ctx, m.store, WishlistKey)
		if err != nil {
			m.log.WithError(err).Warn("wishlist load failed, starting empty")
		}
		return err
	})
	loadErr := g.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()

	cart := domain.NewCart(lines)
	if _, dirty := m.deferred[CartKey]; dirty {
		cart.Merge(m.cart)
	}
	m.cart = cart

	wishlist := domain.NewWishlist(entries)
	if _, dirty := m.deferred[WishlistKey]; dirty {
		wishlist.Merge(m.wishlist)
	}
	m.wishlist = wishlist

	m.status = StatusReady

	for key, ack := range m.deferred {
		if !m.closed {
			ack.Follow(m.persistLocked(key))
		}
		delete(m.deferred, key)
	}

	m.log.WithFields(logrus.Fields{
		"cart_lines":     len(m.cart.Lines),
		"wishlist_items": len(m.wishlist.Entries),
	}).Info("shopping state ready")

	m.publishLocked()
	return loadErr
}

func load[T any](ctx context.Context, store port.KVStore, key string) ([]T, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("store.Get %s: %w", key, err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}
