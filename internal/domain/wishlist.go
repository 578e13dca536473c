package domain

// Wishlist is a set of product snapshots keyed by product id, in insertion order.
type Wishlist struct {
	Entries []Product
}

func NewWishlist(entries []Product) Wishlist {
	w := Wishlist{Entries: cloneProducts(entries)}
	w.Normalize()
	return w
}

// Add appends p unless an entry with the same id is already present.
func (w *Wishlist) Add(p Product) bool {
	if w.Contains(p.ID) {
		return false
	}
	w.Entries = append(w.Entries, cloneProduct(p))
	return true
}

func (w *Wishlist) Remove(id int) bool {
	kept := make([]Product, 0, len(w.Entries))
	for _, e := range w.Entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(w.Entries)
	if len(kept) == 0 {
		kept = nil
	}
	w.Entries = kept
	return removed
}

func (w Wishlist) Contains(id int) bool {
	for _, e := range w.Entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Normalize drops repeated ids, keeping the first occurrence.
func (w *Wishlist) Normalize() {
	if len(w.Entries) == 0 {
		w.Entries = nil
		return
	}
	seen := make(map[int]struct{}, len(w.Entries))
	kept := make([]Product, 0, len(w.Entries))
	for _, e := range w.Entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		kept = append(kept, e)
	}
	w.Entries = kept
}

// Merge appends the entries of other that are not already present.
func (w *Wishlist) Merge(other Wishlist) {
	for _, e := range other.Entries {
		w.Add(e)
	}
}

func (w Wishlist) Clone() Wishlist {
	return Wishlist{Entries: cloneProducts(w.Entries)}
}

func cloneProducts(items []Product) []Product {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Product, len(items))
	for i, p := range items {
		dup[i] = cloneProduct(p)
	}
	return dup
}
