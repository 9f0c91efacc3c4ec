package orders

import (
	"errors"
	"testing"
	"time"
)

const (
	buyerID  = "buyer-1"
	sellerA  = "seller-a"
	sellerB  = "seller-b"
	outsider = "seller-c"
)

// testOrder builds a pending two-seller order: seller A owns two items,
// seller B one.
func testOrder(t *testing.T) Order {
	t.Helper()
	items := []OrderItem{
		{ItemID: "item-1", Name: "Desk Lamp", Price: 60, SellerID: sellerA},
		{ItemID: "item-2", Name: "Textbook", Price: 40, SellerID: sellerA},
		{ItemID: "item-3", Name: "Kettle", Price: 50, SellerID: sellerB},
	}
	return NewOrder("order-1", buyerID, items, time.Now())
}

// generate runs the full two-stage pipeline for a seller, the way the handler
// does: client-side digest, server-side salted hash, then store on the order.
func generate(t *testing.T, o *Order, sellerID, pin string) {
	t.Helper()
	hash, err := HashDigest(PrehashPIN(pin))
	if err != nil {
		t.Fatalf("HashDigest: %v", err)
	}
	if err := o.SetSellerOTP(sellerID, hash); err != nil {
		t.Fatalf("SetSellerOTP(%s): %v", sellerID, err)
	}
}

func TestNewOrder(t *testing.T) {
	order := testOrder(t)

	if order.Status != StatusPending {
		t.Errorf("status = %s, want %s", order.Status, StatusPending)
	}
	if order.TotalAmount != 150 {
		t.Errorf("total = %d, want 150", order.TotalAmount)
	}
	if len(order.SellerOTPs) != 0 {
		t.Errorf("new order has %d otp records, want 0", len(order.SellerOTPs))
	}
	if got := order.SellerSubtotal(sellerA); got != 100 {
		t.Errorf("seller A subtotal = %d, want 100", got)
	}
	if got := order.SellerSubtotal(sellerB); got != 50 {
		t.Errorf("seller B subtotal = %d, want 50", got)
	}
	if order.HasSeller(outsider) {
		t.Error("order claims a seller with no items")
	}
}

func TestTwoSellerLifecycle(t *testing.T) {
	order := testOrder(t)

	generate(t, &order, sellerA, "123456")
	generate(t, &order, sellerB, "654321")

	result, err := order.VerifySellerOTP(sellerA, "123456")
	if err != nil {
		t.Fatalf("verify seller A: %v", err)
	}
	if result.OrderCompleted {
		t.Error("order promoted with seller B still pending")
	}
	if order.Status != StatusPending {
		t.Errorf("order status = %s after first share, want %s", order.Status, StatusPending)
	}
	if order.SellerOTPs[sellerA].Status != StatusCompleted {
		t.Error("seller A share not marked completed")
	}
	if order.SellerOTPs[sellerB].Status != StatusPending {
		t.Error("seller B share mutated by seller A's verification")
	}

	result, err = order.VerifySellerOTP(sellerB, "654321")
	if err != nil {
		t.Fatalf("verify seller B: %v", err)
	}
	if !result.OrderCompleted {
		t.Error("last share confirmed but order not promoted")
	}
	if order.Status != StatusCompleted {
		t.Errorf("order status = %s, want %s", order.Status, StatusCompleted)
	}
}

func TestVerifyWrongPIN(t *testing.T) {
	order := testOrder(t)
	generate(t, &order, sellerA, "123456")

	_, err := order.VerifySellerOTP(sellerA, "111111")
	if !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("err = %v, want ErrInvalidOTP", err)
	}
	if order.SellerOTPs[sellerA].Status != StatusPending {
		t.Error("failed verification mutated the seller share")
	}
	if order.Status != StatusPending {
		t.Error("failed verification mutated the order status")
	}

	// The right pin still works afterwards.
	if _, err := order.VerifySellerOTP(sellerA, "123456"); err != nil {
		t.Fatalf("verify after failed attempt: %v", err)
	}
}

func TestRegenerationInvalidatesOldPIN(t *testing.T) {
	order := testOrder(t)
	generate(t, &order, sellerA, "123456")
	generate(t, &order, sellerA, "999999")

	if len(order.SellerOTPs) != 1 {
		t.Fatalf("regeneration left %d records for one seller, want 1", len(order.SellerOTPs))
	}

	if _, err := order.VerifySellerOTP(sellerA, "123456"); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("stale pin: err = %v, want ErrInvalidOTP", err)
	}
	if _, err := order.VerifySellerOTP(sellerA, "999999"); err != nil {
		t.Errorf("fresh pin rejected: %v", err)
	}
}

func TestSetSellerOTPGuards(t *testing.T) {
	order := testOrder(t)

	if err := order.SetSellerOTP(outsider, "whatever"); !errors.Is(err, ErrSellerNotOnOrder) {
		t.Errorf("foreign seller: err = %v, want ErrSellerNotOnOrder", err)
	}

	generate(t, &order, sellerA, "123456")
	if _, err := order.VerifySellerOTP(sellerA, "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// A confirmed share cannot be re-armed with a fresh pin.
	hash, err := HashDigest(PrehashPIN("222222"))
	if err != nil {
		t.Fatalf("HashDigest: %v", err)
	}
	if err := order.SetSellerOTP(sellerA, hash); !errors.Is(err, ErrSellerShareCompleted) {
		t.Errorf("completed share: err = %v, want ErrSellerShareCompleted", err)
	}
}

func TestVerifyWithoutGeneratedOTP(t *testing.T) {
	order := testOrder(t)

	if _, err := order.VerifySellerOTP(sellerB, "123456"); !errors.Is(err, ErrSellerOTPNotFound) {
		t.Errorf("no record: err = %v, want ErrSellerOTPNotFound", err)
	}
	if _, err := order.VerifySellerOTP(outsider, "123456"); !errors.Is(err, ErrSellerOTPNotFound) {
		t.Errorf("foreign seller: err = %v, want ErrSellerOTPNotFound", err)
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	order := testOrder(t)
	generate(t, &order, sellerA, "123456")

	if _, err := order.VerifySellerOTP(sellerA, "123456"); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	// Replays are a no-op regardless of the pin presented.
	for _, pin := range []string{"123456", "000000"} {
		result, err := order.VerifySellerOTP(sellerA, pin)
		if err != nil {
			t.Fatalf("replay with pin %s: %v", pin, err)
		}
		if !result.AlreadyCompleted {
			t.Errorf("replay with pin %s not reported as already completed", pin)
		}
		if result.OrderCompleted {
			t.Errorf("replay with pin %s claims to have promoted the order", pin)
		}
	}
}

func TestSingleSellerOrderCompletes(t *testing.T) {
	items := []OrderItem{
		{ItemID: "item-1", Name: "Bicycle", Price: 900, SellerID: sellerA},
	}
	order := NewOrder("order-2", buyerID, items, time.Now())
	generate(t, &order, sellerA, "123456")

	result, err := order.VerifySellerOTP(sellerA, "123456")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !result.OrderCompleted {
		t.Error("single-seller order not promoted on its only confirmation")
	}
	if order.Status != StatusCompleted {
		t.Errorf("order status = %s, want %s", order.Status, StatusCompleted)
	}
}

func TestSellerView(t *testing.T) {
	order := testOrder(t)

	view := order.SellerView(sellerA)
	if len(view.Items) != 2 {
		t.Fatalf("seller A view has %d items, want 2", len(view.Items))
	}
	for _, item := range view.Items {
		if item.SellerID != sellerA {
			t.Errorf("view contains another seller's item %s", item.ItemID)
		}
	}
	if view.TotalAmount != 100 {
		t.Errorf("view total = %d, want 100", view.TotalAmount)
	}

	// The projection must not touch the stored order.
	if len(order.Items) != 3 || order.TotalAmount != 150 {
		t.Error("SellerView mutated the underlying order")
	}
}
