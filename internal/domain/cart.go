package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-owner aggregate. TotalAmount is derived from the items
// and recomputed after every mutation, never set directly.
type Cart struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	OwnerID     int64      `bson:"owner_id" json:"owner_id"`
	Items       []CartItem `bson:"items" json:"items"`
	TotalAmount float64    `bson:"total_amount" json:"total_amount"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartItem exists only inside a Cart. UnitPrice is captured when the item
// is first added and never re-fetched from the catalog.
type CartItem struct {
	ID          string  `bson:"id" json:"id"`
	ProductID   int64   `bson:"product_id" json:"product_id"`
	ProductName string  `bson:"product_name" json:"product_name"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
}

// CartSummary is a derived aggregate. It lives only in the cache and is
// recomputed from the store on miss or TTL expiry.
type CartSummary struct {
	OwnerID        int64     `json:"owner_id"`
	ItemCount      int       `json:"item_count"`
	TotalAmount    float64   `json:"total_amount"`
	LastComputedAt time.Time `json:"last_computed_at"`
}

func NewCart(ownerID int64) *Cart {
	return &Cart{
		OwnerID: ownerID,
		Items:   []CartItem{},
	}
}

// NewCartItem assigns the item id; quantity and price validation is the
// caller's concern.
func NewCartItem(productID int64, productName string, quantity int, unitPrice float64) CartItem {
	return CartItem{
		ID:          uuid.NewString(),
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
}

// RecalculateTotal restores the invariant
// TotalAmount == sum(quantity * unitPrice) over all items.
func (c *Cart) RecalculateTotal() {
	total := 0.0
	for _, item := range c.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	c.TotalAmount = total
}

// MergeItem folds an item into the cart: a matching product accumulates
// quantity, anything else is appended. Name and price of an existing item
// are kept as captured on first add.
func (c *Cart) MergeItem(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetItemQuantity overwrites the quantity of an existing item; a quantity
// of zero or less removes the item. Returns false when no item with the
// given product id exists.
func (c *Cart) SetItemQuantity(productID int64, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = quantity
		}
		return true
	}
	return false
}

// RemoveItem deletes the item with the given product id. Removing an
// absent product is a no-op.
func (c *Cart) RemoveItem(productID int64) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalAmount = 0
}

// Summarize projects the cart into its derived aggregate.
func (c *Cart) Summarize(now time.Time) *CartSummary {
	return &CartSummary{
		OwnerID:        c.OwnerID,
		ItemCount:      len(c.Items),
		TotalAmount:    c.TotalAmount,
		LastComputedAt: now,
	}
}

// Clone returns a deep copy, used by in-memory caches so cached state is
// not shared with callers.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
