package cart

import (
	"context"
	"slices"
)

// ApplyStock refreshes product snapshots from a catalog fetch issued when
// the store was at generation gen. It returns false without touching
// anything if the store has changed since.
//
// Entries above the new stock are clamped to it; entries whose product ran
// out are removed. Products missing from products are left alone.
func (s *Store) ApplyStock(ctx context.Context, gen uint64, products []Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound || gen != s.gen {
		return false, nil
	}

	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	nextCart, cartChanged := refreshCart(s.cart, func(cur Product) (Product, bool) {
		p, ok := byID[cur.ID]
		return p, ok
	})
	nextWishlist, wishChanged := refreshWishlist(s.wishlist, byID)
	if !cartChanged && !wishChanged {
		return true, nil
	}
	if err := s.commit(ctx, &nextCart, &nextWishlist); err != nil {
		return false, err
	}
	return true, nil
}

// SetStock applies a pushed stock level for one product. Pushed levels are
// always current, so no generation check applies.
func (s *Store) SetStock(ctx context.Context, id string, stock int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return false, nil
	}

	nextCart, changed := refreshCart(s.cart, func(cur Product) (Product, bool) {
		if cur.ID != id {
			return Product{}, false
		}
		cur.AvailableStock = stock
		return cur, true
	})
	if !changed {
		return false, nil
	}
	if err := s.commit(ctx, &nextCart, nil); err != nil {
		return false, err
	}
	return true, nil
}

func refreshCart(cur []CartEntry, lookup func(cur Product) (Product, bool)) ([]CartEntry, bool) {
	next := make([]CartEntry, 0, len(cur))
	changed := false
	for _, e := range cur {
		p, ok := lookup(e.Product)
		if !ok {
			next = append(next, e)
			continue
		}
		if !sameProduct(p, e.Product) {
			changed = true
		}
		if !p.InStock() {
			changed = true
			continue
		}
		e.Product = p
		if e.Quantity > p.AvailableStock {
			e.Quantity = p.AvailableStock
			changed = true
		}
		next = append(next, e)
	}
	return next, changed
}

func refreshWishlist(cur []WishlistEntry, byID map[string]Product) ([]WishlistEntry, bool) {
	next := slices.Clone(cur)
	changed := false
	for i, e := range next {
		if p, ok := byID[e.Product.ID]; ok && !sameProduct(p, e.Product) {
			next[i].Product = p
			changed = true
		}
	}
	return next, changed
}

func sameProduct(a, b Product) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Model == b.Model &&
		a.UnitPrice.Equal(b.UnitPrice) &&
		a.AvailableStock == b.AvailableStock &&
		a.Status == b.Status &&
		a.Category == b.Category
}
