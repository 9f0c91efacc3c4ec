package kafka

import "time"

const (
	TopicAccountCreated  = `users.account-created`
	TopicSellerDelivered = `orders.seller-delivered`
	TopicOrderCompleted  = `orders.order-completed`
)

// AccountCreatedEvent is published when a new user registers.
type AccountCreatedEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SellerDeliveredEvent is published every time a seller's delivery PIN is
// verified and their share of an order is confirmed.
type SellerDeliveredEvent struct {
	OrderID   string    `json:"order_id"`
	SellerID  string    `json:"seller_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderCompletedEvent is published when the last pending seller verifies and
// the order reaches its terminal status.
type OrderCompletedEvent struct {
	OrderID     string    `json:"order_id"`
	BuyerID     string    `json:"buyer_id"`
	TotalAmount int64     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}
