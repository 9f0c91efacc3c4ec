package cart

import "time"

// CartItem is a catalog listing as shown on the cart page.
type CartItem struct {
	ItemID     string    `json:"id"`
	Name       string    `json:"name"`
	Price      int64     `json:"price"`
	Category   string    `json:"category"`
	SellerID   string    `json:"sellerId"`
	SellerName string    `json:"sellerName"`
	AddedAt    time.Time `json:"addedAt"`
}
