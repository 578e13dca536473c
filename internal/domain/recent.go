package domain

const DefaultRecentLimit = 5

// RecentlyViewed is ordered most recent first, holds no repeated ids and is
// capped at Limit entries.
type RecentlyViewed struct {
	Entries []Product
	Limit   int
}

func NewRecentlyViewed(limit int) RecentlyViewed {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return RecentlyViewed{Limit: limit}
}

// Add moves p to the front, dropping any older entry with the same id and
// evicting from the tail past Limit.
func (r *RecentlyViewed) Add(p Product) {
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	next := make([]Product, 0, limit)
	next = append(next, cloneProduct(p))
	for _, e := range r.Entries {
		if len(next) == limit {
			break
		}
		if e.ID == p.ID {
			continue
		}
		next = append(next, e)
	}
	r.Entries = next
}

func (r RecentlyViewed) Clone() RecentlyViewed {
	return RecentlyViewed{Entries: cloneProducts(r.Entries), Limit: r.Limit}
}
