package items

import "time"

// Item is a catalog listing. Seller name and email are joined in for display.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	SellerID    string    `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	SellerEmail string    `json:"sellerEmail"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewItem is the create-listing payload.
type NewItem struct {
	Name        string `json:"name" validate:"required"`
	Price       int64  `json:"price" validate:"required,min=0"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Filter narrows a catalog listing query. Nil price bounds mean unbounded.
type Filter struct {
	Search     string
	Categories []string
	MinPrice   *int64
	MaxPrice   *int64
}
