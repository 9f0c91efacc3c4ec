package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// BuyerContact is the buyer information a seller needs to hand over goods.
type BuyerContact struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
}

// PendingDelivery is a pending order as a seller sees it on the delivery page.
type PendingDelivery struct {
	Order
	Buyer BuyerContact `json:"buyer"`
}

// History groups a user's completed orders: full orders they bought, and
// per-seller views of orders they sold on.
type History struct {
	Purchases []Order `json:"purchases"`
	Sales     []Order `json:"sales"`
}

// CreateOrder snapshots the given catalog items into a new pending order,
// computes the total, and clears the buyer's cart, all in one transaction.
// No delivery PIN is generated here; PIN issuance is a separate action.
func (c *Conf) CreateOrder(ctx context.Context, orderID string, buyerID string, itemIDs []string) (Order, error) {
	var order Order

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		// Dedupe while keeping the order the buyer sent.
		seen := make(map[string]bool)
		var ids []string
		for _, id := range itemIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}

		queryItems := `
			SELECT id, name, price, seller_id
			FROM items
			WHERE id = ANY($1)
		`
		rows, err := tx.QueryContext(ctx, queryItems, ids)
		if err != nil {
			return fmt.Errorf("failed to query items: %w", err)
		}
		defer rows.Close()

		found := make(map[string]OrderItem)
		for rows.Next() {
			var item OrderItem
			if err := rows.Scan(&item.ItemID, &item.Name, &item.Price, &item.SellerID); err != nil {
				return fmt.Errorf("failed to scan item: %w", err)
			}
			found[item.ItemID] = item
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating items: %w", err)
		}

		var items []OrderItem
		for _, id := range ids {
			item, ok := found[id]
			if !ok {
				return fmt.Errorf("item %s: %w", id, ErrItemNotFound)
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			return ErrItemNotFound
		}

		order = NewOrder(orderID, buyerID, items, time.Now().UTC())

		queryInsertOrder := `
			INSERT INTO orders (id, buyer_id, status, total_amount, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
		`
		_, err = tx.ExecContext(ctx, queryInsertOrder, order.ID, order.BuyerID, order.Status, order.TotalAmount, order.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		queryInsertItem := `
			INSERT INTO order_items (order_id, item_id, name, price, seller_id, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for i, item := range order.Items {
			_, err = tx.ExecContext(ctx, queryInsertItem, order.ID, item.ItemID, item.Name, item.Price, item.SellerID, i)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}

		// Clear the buyer's cart as part of the same transaction.
		queryClearCart := `DELETE FROM cart_items WHERE user_id = $1`
		if _, err = tx.ExecContext(ctx, queryClearCart, buyerID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// GenerateSellerOTP stores, or replaces in place, the salted hash of the
// seller's delivery PIN. The caller supplies the stage-1 digest of the PIN;
// the stage-2 hash happens here. A share that is already confirmed cannot be
// re-opened.
func (c *Conf) GenerateSellerOTP(ctx context.Context, orderID, sellerID, digest string) error {
	otpHash, err := HashDigest(digest)
	if err != nil {
		return err
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		order, err := c.loadOrderTx(ctx, tx, orderID, true)
		if err != nil {
			return err
		}

		if err := order.SetSellerOTP(sellerID, otpHash); err != nil {
			return err
		}

		queryUpsert := `
			INSERT INTO order_seller_otps (order_id, seller_id, otp_hash, status, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (order_id, seller_id)
			DO UPDATE SET otp_hash = EXCLUDED.otp_hash, status = EXCLUDED.status, updated_at = NOW()
		`
		_, err = tx.ExecContext(ctx, queryUpsert, orderID, sellerID, otpHash, StatusPending)
		if err != nil {
			return fmt.Errorf("failed to upsert seller otp: %w", err)
		}
		return nil
	})
}

// VerifySellerOTP runs the core state transition: check the presented PIN
// against the seller's stored hash, confirm that seller's share, promote the
// order when it was the last pending share, and unlist the seller's items
// from the catalog. The order row is locked for the whole transaction, so
// concurrent verifications by different sellers serialize instead of losing
// updates. Re-verifying an already-confirmed share is a no-op.
func (c *Conf) VerifySellerOTP(ctx context.Context, orderID, sellerID, pin string) (Order, VerifyResult, error) {
	var order Order
	var result VerifyResult

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		order, err = c.loadOrderTx(ctx, tx, orderID, true)
		if err != nil {
			return err
		}

		result, err = order.VerifySellerOTP(sellerID, pin)
		if err != nil {
			return err
		}
		if result.AlreadyCompleted {
			return nil
		}

		queryComplete := `
			UPDATE order_seller_otps
			SET status = $1, updated_at = NOW()
			WHERE order_id = $2 AND seller_id = $3
		`
		if _, err = tx.ExecContext(ctx, queryComplete, StatusCompleted, orderID, sellerID); err != nil {
			return fmt.Errorf("failed to complete seller otp: %w", err)
		}

		if result.OrderCompleted {
			queryPromote := `
				UPDATE orders
				SET status = $1, updated_at = NOW()
				WHERE id = $2
			`
			if _, err = tx.ExecContext(ctx, queryPromote, StatusCompleted, orderID); err != nil {
				return fmt.Errorf("failed to complete order: %w", err)
			}
		}

		// Sold items leave the catalog. Only the verifying seller's
		// items: other sellers may still be awaiting their handoff.
		var soldIDs []string
		for _, item := range order.ItemsBySeller(sellerID) {
			soldIDs = append(soldIDs, item.ItemID)
		}
		queryUnlist := `DELETE FROM items WHERE id = ANY($1)`
		if _, err = tx.ExecContext(ctx, queryUnlist, soldIDs); err != nil {
			return fmt.Errorf("failed to unlist sold items: %w", err)
		}

		return nil
	})
	if err != nil {
		return Order{}, VerifyResult{}, err
	}
	return order, result, nil
}

// OrdersByBuyer returns the buyer's orders, newest first.
func (c *Conf) OrdersByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	query := `
		SELECT id, buyer_id, status, total_amount, created_at, updated_at
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
	`
	return c.queryOrders(ctx, query, buyerID)
}

// PendingDeliveries returns the pending orders that contain at least one of
// the seller's items, with the buyer's contact details joined in.
func (c *Conf) PendingDeliveries(ctx context.Context, sellerID string) ([]PendingDelivery, error) {
	query := `
		SELECT DISTINCT o.id, o.buyer_id, o.status, o.total_amount, o.created_at, o.updated_at,
			u.full_name, u.email, u.contact_number
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN users u ON u.id = o.buyer_id
		WHERE oi.seller_id = $1 AND o.status = $2
		ORDER BY o.created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query, sellerID, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []PendingDelivery
	for rows.Next() {
		var d PendingDelivery
		if err := rows.Scan(&d.ID, &d.BuyerID, &d.Status, &d.TotalAmount, &d.CreatedAt, &d.UpdatedAt,
			&d.Buyer.FullName, &d.Buyer.Email, &d.Buyer.ContactNumber); err != nil {
			return nil, fmt.Errorf("failed to scan pending delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending deliveries: %w", err)
	}

	for i := range deliveries {
		if err := c.loadChildren(ctx, &deliveries[i].Order); err != nil {
			return nil, err
		}
	}
	return deliveries, nil
}

// UserHistory returns the user's completed orders: purchases as full orders,
// sales filtered down to the user's own items with the total recomputed over
// the subset. The recomputation is a derived view; stored totals are not
// touched.
func (c *Conf) UserHistory(ctx context.Context, userID string) (History, error) {
	queryPurchases := `
		SELECT id, buyer_id, status, total_amount, created_at, updated_at
		FROM orders
		WHERE buyer_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	purchases, err := c.queryOrders(ctx, queryPurchases, userID, StatusCompleted)
	if err != nil {
		return History{}, err
	}

	querySales := `
		SELECT DISTINCT o.id, o.buyer_id, o.status, o.total_amount, o.created_at, o.updated_at
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.seller_id = $1 AND o.status = $2
		ORDER BY o.created_at DESC
	`
	soldOn, err := c.queryOrders(ctx, querySales, userID, StatusCompleted)
	if err != nil {
		return History{}, err
	}

	sales := make([]Order, 0, len(soldOn))
	for i := range soldOn {
		sales = append(sales, soldOn[i].SellerView(userID))
	}

	if purchases == nil {
		purchases = []Order{}
	}
	return History{Purchases: purchases, Sales: sales}, nil
}

func (c *Conf) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		if err := c.loadChildren(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// loadOrderTx reads the full aggregate inside a transaction. With forUpdate
// set, the order row is locked, making this transaction the order's single
// writer until commit.
func (c *Conf) loadOrderTx(ctx context.Context, tx *sql.Tx, orderID string, forUpdate bool) (Order, error) {
	query := `
		SELECT id, buyer_id, status, total_amount, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var o Order
	err := tx.QueryRowContext(ctx, query, orderID).Scan(&o.ID, &o.BuyerID, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("failed to query order: %w", err)
	}

	queryItems := `
		SELECT item_id, name, price, seller_id
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`
	rows, err := tx.QueryContext(ctx, queryItems, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Price, &item.SellerID); err != nil {
			return Order{}, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("error iterating order items: %w", err)
	}

	queryOTPs := `
		SELECT seller_id, otp_hash, status
		FROM order_seller_otps
		WHERE order_id = $1
	`
	otpRows, err := tx.QueryContext(ctx, queryOTPs, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("failed to query seller otps: %w", err)
	}
	defer otpRows.Close()

	o.SellerOTPs = make(map[string]SellerOTP)
	for otpRows.Next() {
		var so SellerOTP
		if err := otpRows.Scan(&so.SellerID, &so.OTPHash, &so.Status); err != nil {
			return Order{}, fmt.Errorf("failed to scan seller otp: %w", err)
		}
		o.SellerOTPs[so.SellerID] = so
	}
	if err := otpRows.Err(); err != nil {
		return Order{}, fmt.Errorf("error iterating seller otps: %w", err)
	}

	return o, nil
}

// loadChildren fills in the items and OTP records for an order loaded outside
// a transaction.
func (c *Conf) loadChildren(ctx context.Context, o *Order) error {
	queryItems := `
		SELECT item_id, name, price, seller_id
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`
	rows, err := c.db.QueryContext(ctx, queryItems, o.ID)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Price, &item.SellerID); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	queryOTPs := `
		SELECT seller_id, otp_hash, status
		FROM order_seller_otps
		WHERE order_id = $1
	`
	otpRows, err := c.db.QueryContext(ctx, queryOTPs, o.ID)
	if err != nil {
		return fmt.Errorf("failed to query seller otps: %w", err)
	}
	defer otpRows.Close()

	o.SellerOTPs = make(map[string]SellerOTP)
	for otpRows.Next() {
		var so SellerOTP
		if err := otpRows.Scan(&so.SellerID, &so.OTPHash, &so.Status); err != nil {
			return fmt.Errorf("failed to scan seller otp: %w", err)
		}
		o.SellerOTPs[so.SellerID] = so
	}
	if err := otpRows.Err(); err != nil {
		return fmt.Errorf("error iterating seller otps: %w", err)
	}

	return nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
