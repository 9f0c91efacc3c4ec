package orders

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrSellerNotOnOrder     = errors.New("seller has no items on this order")
	ErrSellerOTPNotFound    = errors.New("seller otp not found")
	ErrSellerShareCompleted = errors.New("seller share already completed")
	ErrInvalidOTP           = errors.New("invalid otp")
)

// OrderItem is a line item captured as a snapshot at order-creation time.
// Later changes to the catalog item must not affect the order record.
type OrderItem struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	SellerID string `json:"sellerId"`
}

// SellerOTP tracks one seller's delivery confirmation on an order. The hash
// never leaves the server.
type SellerOTP struct {
	SellerID string `json:"sellerId"`
	OTPHash  string `json:"-"`
	Status   Status `json:"status"`
}

// Order is the aggregate the OTP fulfillment protocol operates on. SellerOTPs
// is keyed by seller id: at most one record per seller, replaced in place on
// regeneration.
type Order struct {
	ID          string               `json:"id"`
	BuyerID     string               `json:"buyerId"`
	Items       []OrderItem          `json:"items"`
	TotalAmount int64                `json:"totalAmount"`
	Status      Status               `json:"status"`
	SellerOTPs  map[string]SellerOTP `json:"sellerOTPs"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewOrder builds a pending order from item snapshots. TotalAmount is the sum
// of the snapshot prices; no delivery PIN exists yet.
func NewOrder(id, buyerID string, items []OrderItem, now time.Time) Order {
	var total int64
	for _, item := range items {
		total += item.Price
	}
	return Order{
		ID:          id,
		BuyerID:     buyerID,
		Items:       items,
		TotalAmount: total,
		Status:      StatusPending,
		SellerOTPs:  make(map[string]SellerOTP),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasSeller reports whether at least one line item belongs to the seller.
func (o *Order) HasSeller(sellerID string) bool {
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}

// ItemsBySeller returns the line items belonging to one seller, in order.
func (o *Order) ItemsBySeller(sellerID string) []OrderItem {
	var items []OrderItem
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			items = append(items, item)
		}
	}
	return items
}

// SellerSubtotal sums the prices of one seller's line items.
func (o *Order) SellerSubtotal(sellerID string) int64 {
	var total int64
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			total += item.Price
		}
	}
	return total
}

// SetSellerOTP stores or replaces the seller's hashed PIN, resetting the
// record to pending. Fails when the seller owns no items on the order, or when
// the seller's share is already confirmed: a fresh PIN must never silently
// re-open a completed delivery.
func (o *Order) SetSellerOTP(sellerID, otpHash string) error {
	if !o.HasSeller(sellerID) {
		return ErrSellerNotOnOrder
	}
	if existing, ok := o.SellerOTPs[sellerID]; ok && existing.Status == StatusCompleted {
		return ErrSellerShareCompleted
	}
	o.SellerOTPs[sellerID] = SellerOTP{
		SellerID: sellerID,
		OTPHash:  otpHash,
		Status:   StatusPending,
	}
	return nil
}

// VerifyResult reports what a successful verification did.
type VerifyResult struct {
	// AlreadyCompleted is set when the seller's share was confirmed before
	// this call; the verification was a no-op.
	AlreadyCompleted bool
	// OrderCompleted is set when this verification confirmed the last
	// pending share and promoted the order.
	OrderCompleted bool
}

// VerifySellerOTP replays the two-stage hash pipeline against the seller's
// stored record and, on a match, marks that seller's share completed. The
// order itself is promoted only when every seller appearing in the items has
// a confirmed record. A wrong PIN changes nothing.
func (o *Order) VerifySellerOTP(sellerID, pin string) (VerifyResult, error) {
	entry, ok := o.SellerOTPs[sellerID]
	if !ok {
		return VerifyResult{}, ErrSellerOTPNotFound
	}

	if entry.Status == StatusCompleted {
		return VerifyResult{AlreadyCompleted: true}, nil
	}

	if !CompareDigest(entry.OTPHash, PrehashPIN(pin)) {
		return VerifyResult{}, ErrInvalidOTP
	}

	entry.Status = StatusCompleted
	o.SellerOTPs[sellerID] = entry

	var result VerifyResult
	if o.allSellersConfirmed() {
		o.Status = StatusCompleted
		result.OrderCompleted = true
	}
	return result, nil
}

// allSellersConfirmed reports whether every seller with items on the order
// has a completed OTP record. An order with no records is never confirmed.
func (o *Order) allSellersConfirmed() bool {
	if len(o.SellerOTPs) == 0 {
		return false
	}
	for _, item := range o.Items {
		entry, ok := o.SellerOTPs[item.SellerID]
		if !ok || entry.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// SellerView derives the per-seller projection of a completed order: only
// that seller's items, with the total recomputed over the subset. The stored
// order is not touched.
func (o *Order) SellerView(sellerID string) Order {
	view := *o
	view.Items = o.ItemsBySeller(sellerID)
	view.TotalAmount = o.SellerSubtotal(sellerID)
	return view
}
