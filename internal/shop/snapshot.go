package shop

import (
	"github.com/nikolayk812/storefront/internal/domain"
)

// Snapshot is a consistent copy of the shopping state.
type Snapshot struct {
	Status   Status
	Cart     domain.Cart
	Wishlist domain.Wishlist
	Recent   []domain.Product
	Count    int
	Total    domain.Money
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Status:   m.status,
		Cart:     m.cart.Clone(),
		Wishlist: m.wishlist.Clone(),
		Recent:   m.recent.Clone().Entries,
		Count:    m.cart.Count(),
		Total:    m.cart.Total(m.unit),
	}
}

// Subscribe returns a channel that always holds the latest snapshot: a slow
// reader skips intermediate states but never misses the newest one. The
// current snapshot is delivered immediately. Call cancel to unsubscribe.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	m.mu.RLock()
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.snapshotLocked()
	m.subsMu.Unlock()
	m.mu.RUnlock()

	cancel := func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// publishLocked must be called with m.mu held so subscribers observe
// snapshots in mutation order.
func (m *Manager) publishLocked() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	if len(m.subs) == 0 {
		return
	}

	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
