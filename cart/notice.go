package cart

import "fmt"

// NoticeKind classifies the user-visible outcome of a cart operation.
type NoticeKind uint8

const (
	NoticeNone NoticeKind = iota
	NoticeAddedToCart
	NoticeQuantityUpdated
	NoticeRemovedFromCart
	NoticeCartCleared
	NoticeNotInCart
	NoticeOutOfStock
	NoticeStockLimit
	NoticeAddedToWishlist
	NoticeAlreadyInWishlist
	NoticeRemovedFromWishlist
	NoticeNotInWishlist
)

// Notice is the message shown to the user after an operation.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// IsConflict reports whether the operation was refused because of stock.
func (n Notice) IsConflict() bool {
	return n.Kind == NoticeOutOfStock || n.Kind == NoticeStockLimit
}

func (n Notice) String() string { return n.Message }

func notice(kind NoticeKind) Notice {
	switch kind {
	case NoticeAddedToCart:
		return Notice{kind, "Added to cart!"}
	case NoticeQuantityUpdated:
		return Notice{kind, "Item quantity updated in cart!"}
	case NoticeRemovedFromCart:
		return Notice{kind, "Removed from cart"}
	case NoticeCartCleared:
		return Notice{kind, "Cart cleared successfully!"}
	case NoticeNotInCart:
		return Notice{kind, "Item is not in your cart"}
	case NoticeOutOfStock:
		return Notice{kind, "This product is out of stock!"}
	case NoticeAddedToWishlist:
		return Notice{kind, "Added to wishlist!"}
	case NoticeAlreadyInWishlist:
		return Notice{kind, "Already in wishlist"}
	case NoticeRemovedFromWishlist:
		return Notice{kind, "Removed from wishlist"}
	case NoticeNotInWishlist:
		return Notice{kind, "Item is not in your wishlist"}
	default:
		return Notice{}
	}
}

func stockLimit(available int) Notice {
	return Notice{NoticeStockLimit, fmt.Sprintf("Only %d units available in stock!", available)}
}
