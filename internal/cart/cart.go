package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrOwnItem       = errors.New("item belongs to the buyer")
	ErrAlreadyInCart = errors.New("item already in cart")
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

// AddToCart puts a listing into the user's cart. The listing must exist, must
// not already be in the cart, and must not be the user's own.
func (c *Conf) AddToCart(ctx context.Context, userID, itemID string) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		queryItem := `SELECT seller_id FROM items WHERE id = $1`

		var sellerID string
		err := tx.QueryRowContext(ctx, queryItem, itemID).Scan(&sellerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to query item: %w", err)
		}

		if sellerID == userID {
			return ErrOwnItem
		}

		queryExisting := `SELECT 1 FROM cart_items WHERE user_id = $1 AND item_id = $2`
		var one int
		err = tx.QueryRowContext(ctx, queryExisting, userID, itemID).Scan(&one)
		if err == nil {
			return ErrAlreadyInCart
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to query cart items: %w", err)
		}

		queryAdd := `
			INSERT INTO cart_items (user_id, item_id, created_at)
			VALUES ($1, $2, NOW())
		`
		if _, err = tx.ExecContext(ctx, queryAdd, userID, itemID); err != nil {
			return fmt.Errorf("failed to add item to cart: %w", err)
		}
		return nil
	})
}

// GetCartItems returns the user's cart with seller names joined in.
func (c *Conf) GetCartItems(ctx context.Context, userID string) ([]CartItem, error) {
	query := `
		SELECT i.id, i.name, i.price, i.category, i.seller_id, u.full_name, ci.created_at
		FROM cart_items ci
		JOIN items i ON i.id = ci.item_id
		JOIN users u ON u.id = i.seller_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at
	`
	rows, err := c.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := []CartItem{}
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Price, &item.Category,
			&item.SellerID, &item.SellerName, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return items, nil
}

// RemoveFromCart drops one listing from the user's cart. Removing an item
// that is not there is not an error.
func (c *Conf) RemoveFromCart(ctx context.Context, userID, itemID string) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND item_id = $2`
	if _, err := c.db.ExecContext(ctx, query, userID, itemID); err != nil {
		return fmt.Errorf("failed to remove item from cart: %w", err)
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
