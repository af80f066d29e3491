package cart

import (
	"encoding/json"
	"errors"
)

// Storage keys, relative to the storage prefix.
const (
	KeyCart     = "cart.entries"
	KeyWishlist = "wishlist.entries"
)

var errCorruptEnvelope = errors.New("cart: corrupt envelope")

// envelope is the persisted form of a collection. Owner is the customer id
// the collection belongs to.
type envelope[T any] struct {
	Owner   string `json:"owner"`
	Entries []T    `json:"entries"`
}

func encodeEnvelope[T any](owner string, entries []T) (string, error) {
	if entries == nil {
		entries = []T{}
	}
	b, err := json.Marshal(envelope[T]{Owner: owner, Entries: entries})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeEnvelope[T any](raw string) (envelope[T], error) {
	var env envelope[T]
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return envelope[T]{}, errors.Join(errCorruptEnvelope, err)
	}
	return env, nil
}

// sanitizeCart drops entries that break the cart invariants: blank ids,
// non-positive quantities and repeated ids.
func sanitizeCart(in []CartEntry) []CartEntry {
	seen := make(map[string]struct{}, len(in))
	out := make([]CartEntry, 0, len(in))
	for _, e := range in {
		if e.Product.ID == "" || e.Quantity < 1 {
			continue
		}
		if _, dup := seen[e.Product.ID]; dup {
			continue
		}
		seen[e.Product.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

func sanitizeWishlist(in []WishlistEntry) []WishlistEntry {
	seen := make(map[string]struct{}, len(in))
	out := make([]WishlistEntry, 0, len(in))
	for _, e := range in {
		if e.Product.ID == "" {
			continue
		}
		if _, dup := seen[e.Product.ID]; dup {
			continue
		}
		seen[e.Product.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
