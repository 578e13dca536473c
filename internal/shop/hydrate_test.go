package shop_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/shop"
	"github.com/nikolayk812/storefront/internal/writeback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_InitializeEmptyStorage(t *testing.T) {
	m := newManager(t, newTestStore())
	assert.Equal(t, shop.StatusUninitialized, m.Status())

	require.NoError(t, m.Initialize(t.Context()))

	assert.Equal(t, shop.StatusReady, m.Status())
	assert.Empty(t, m.Cart().Lines)
	assert.Empty(t, m.Wishlist().Entries)

	select {
	case <-m.Ready():
	default:
		t.Fatal("Ready must be closed after Initialize")
	}
}

func TestManager_InitializeOnce(t *testing.T) {
	store := newTestStore()
	m := newManager(t, store)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Initialize(t.Context()))
	}
	assert.Equal(t, int32(2), store.gets.Load(), "cart and wishlist are read exactly once")
}

func TestManager_InitializeDegrades(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(t *testing.T, s *testStore)
		wantCart     int
		wantWishlist int
	}{
		{
			name: "storage read fails",
			setup: func(_ *testing.T, s *testStore) {
				s.getErr = errStorage
			},
		},
		{
			name: "corrupt cart keeps wishlist",
			setup: func(t *testing.T, s *testStore) {
				require.NoError(t, s.MemoryRepository.Set(t.Context(), shop.CartKey, []byte(`{not json`)))
				require.NoError(t, s.MemoryRepository.Set(t.Context(), shop.WishlistKey, []byte(`[{"id":4,"price":1}]`)))
			},
			wantWishlist: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			tt.setup(t, store)
			m := newManager(t, store)

			err := m.Initialize(t.Context())
			require.Error(t, err)

			assert.Equal(t, shop.StatusReady, m.Status())
			assert.Len(t, m.Cart().Lines, tt.wantCart)
			assert.Len(t, m.Wishlist().Entries, tt.wantWishlist)

			// still usable
			m.AddToCart(product(1, "1"))
			assert.Len(t, m.Cart().Lines, 1)
		})
	}
}

func TestManager_InitializeNormalizesStoredData(t *testing.T) {
	store := newTestStore()
	require.NoError(t, store.MemoryRepository.Set(t.Context(), shop.CartKey,
		[]byte(`[{"id":1,"quantity":1},{"id":1,"quantity":2},{"id":2,"quantity":0}]`)))
	require.NoError(t, store.MemoryRepository.Set(t.Context(), shop.WishlistKey,
		[]byte(`[{"id":5},{"id":5},{"id":6}]`)))

	m := newReadyManager(t, store)

	assert.Equal(t, []qty{{1, 3}}, quantities(m.Cart().Lines))
	assert.Len(t, m.Wishlist().Entries, 2)
}

func TestManager_PersistFailureKeepsMemory(t *testing.T) {
	store := newTestStore()
	store.setErr = errStorage
	m := newReadyManager(t, store)

	ack := m.AddToCart(product(1, "1"))
	require.ErrorIs(t, ack.Wait(waitCtx(t)), errStorage)

	assert.Equal(t, []qty{{1, 1}}, quantities(m.Cart().Lines))
	assert.Zero(t, store.Len())
}

func TestManager_MutationsDuringHydrationAreMerged(t *testing.T) {
	store := newTestStore()
	require.NoError(t, store.MemoryRepository.Set(t.Context(), shop.CartKey,
		[]byte(`[{"id":1,"price":"10","quantity":2},{"id":2,"price":"3","quantity":1}]`)))
	require.NoError(t, store.MemoryRepository.Set(t.Context(), shop.WishlistKey,
		[]byte(`[{"id":7}]`)))
	store.getGate = make(chan struct{})

	m := newManager(t, store)

	initDone := make(chan error, 1)
	go func() {
		initDone <- m.Initialize(context.Background())
	}()

	require.Eventually(t, func() bool {
		return m.Status() == shop.StatusHydrating
	}, time.Second, time.Millisecond)

	cartAck := m.AddToCart(product(1, "10"))
	m.AddToCart(product(3, "1"))
	wishAck := m.AddToWishlist(product(8, "1"))

	select {
	case <-cartAck.Done():
		t.Fatal("nothing may be written before the stored cart was read")
	default:
	}

	close(store.getGate)
	require.NoError(t, <-initDone)

	ctx := waitCtx(t)
	require.NoError(t, cartAck.Wait(ctx))
	require.NoError(t, wishAck.Wait(ctx))

	want := []qty{{1, 3}, {2, 1}, {3, 1}}
	assert.Equal(t, want, quantities(m.Cart().Lines))
	assert.Equal(t, want, quantities(storedCart(t, store)))

	var wish []int
	for _, p := range storedWishlist(t, store) {
		wish = append(wish, p.ID)
	}
	assert.Equal(t, []int{7, 8}, wish)
}

func TestManager_CloseBeforeInitialize(t *testing.T) {
	store := newTestStore()
	m := newManager(t, store)

	ack := m.AddToCart(product(1, "1"))
	require.NoError(t, m.Close(waitCtx(t)))

	require.ErrorIs(t, ack.Wait(waitCtx(t)), shop.ErrNotInitialized)
	assert.Zero(t, store.Len())
}

func TestManager_CloseDuringHydrationKeepsMutations(t *testing.T) {
	store := newTestStore()
	require.NoError(t, store.MemoryRepository.Set(t.Context(), shop.CartKey,
		[]byte(`[{"id":2,"price":"3","quantity":1}]`)))
	store.getGate = make(chan struct{})

	m := newManager(t, store)

	initDone := make(chan error, 1)
	go func() {
		initDone <- m.Initialize(context.Background())
	}()

	require.Eventually(t, func() bool {
		return m.Status() == shop.StatusHydrating
	}, time.Second, time.Millisecond)

	ack := m.AddToCart(product(1, "10"))
	require.NoError(t, m.Close(waitCtx(t)))
	require.ErrorIs(t, ack.Wait(waitCtx(t)), shop.ErrNotInitialized)

	late := m.AddToCart(product(1, "10"))
	require.ErrorIs(t, late.Wait(waitCtx(t)), shop.ErrNotInitialized)

	close(store.getGate)
	require.NoError(t, <-initDone)

	assert.Equal(t, shop.StatusReady, m.Status())
	assert.Equal(t, []qty{{2, 1}, {1, 2}}, quantities(m.Cart().Lines))
	assert.Equal(t, []qty{{2, 1}}, quantities(storedCart(t, store)), "nothing is written after Close")
}

func TestManager_MutationAfterClose(t *testing.T) {
	tests := []struct {
		name       string
		initialize bool
		wantErr    error
	}{
		{name: "never initialized", wantErr: shop.ErrNotInitialized},
		{name: "initialized", initialize: true, wantErr: writeback.ErrClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			m := newManager(t, store)
			if tt.initialize {
				require.NoError(t, m.Initialize(t.Context()))
			}
			require.NoError(t, m.Close(waitCtx(t)))

			cartAck := m.AddToCart(product(1, "1"))
			wishAck := m.AddToWishlist(product(2, "1"))

			ctx := waitCtx(t)
			require.ErrorIs(t, cartAck.Wait(ctx), tt.wantErr)
			require.ErrorIs(t, wishAck.Wait(ctx), tt.wantErr)

			assert.Equal(t, []qty{{1, 1}}, quantities(m.Cart().Lines))
			assert.True(t, m.InWishlist(2))
			assert.Zero(t, store.Len())
		})
	}
}

func TestManager_RoundTrip(t *testing.T) {
	stores := []struct {
		name  string
		store func(t *testing.T) port.KVStore
	}{
		{
			name: "memory",
			store: func(*testing.T) port.KVStore {
				return repository.NewMemory()
			},
		},
		{
			name: "file",
			store: func(t *testing.T) port.KVStore {
				repo, err := repository.NewFile(t.TempDir())
				require.NoError(t, err)
				return repo
			},
		},
	}

	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			backing := tt.store(t)

			first := shop.New(backing, shop.WithLogger(quietLogger()))
			require.NoError(t, first.Initialize(t.Context()))

			a, b := randomProduct(), randomProduct()
			b.ID = a.ID + 1
			first.AddToCart(a)
			first.AddToCart(b)
			first.AddToCart(b)
			first.AddToWishlist(b)

			before := first.Snapshot()
			require.NoError(t, first.Close(waitCtx(t)))

			second := shop.New(backing, shop.WithLogger(quietLogger()))
			require.NoError(t, second.Initialize(t.Context()))
			t.Cleanup(func() { _ = second.Close(context.Background()) })

			after := second.Snapshot()
			assert.Equal(t, quantities(before.Cart.Lines), quantities(after.Cart.Lines))
			assert.Empty(t, cmp.Diff(before.Cart, after.Cart))
			assert.Empty(t, cmp.Diff(before.Wishlist, after.Wishlist))
			assert.Empty(t, after.Recent)
		})
	}
}

func TestManager_Subscribe(t *testing.T) {
	m := newReadyManager(t, newTestStore())

	updates, cancel := m.Subscribe()

	initial := <-updates
	assert.Equal(t, shop.StatusReady, initial.Status)
	assert.Zero(t, initial.Count)

	m.AddToCart(product(1, "1"))
	m.AddToCart(product(1, "1"))

	// latest wins: the buffered snapshot reflects the newest state
	latest := <-updates
	assert.Equal(t, 2, latest.Count)

	m.AddRecentlyViewed(product(9, "1"))
	viewed := <-updates
	require.Len(t, viewed.Recent, 1)
	assert.Equal(t, 9, viewed.Recent[0].ID)

	cancel()
	_, open := <-updates
	assert.False(t, open)

	// cancel is idempotent
	cancel()
}

func TestManager_CloseEndsSubscriptions(t *testing.T) {
	store := newTestStore()
	m := newReadyManager(t, store)
	updates, _ := m.Subscribe()
	<-updates

	require.NoError(t, m.Close(waitCtx(t)))

	_, open := <-updates
	assert.False(t, open)
}
