package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrItemNotFound = errors.New("item not found")

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

const selectItem = `
	SELECT i.id, i.name, i.price, i.description, i.category, i.seller_id, u.full_name, u.email, i.created_at
	FROM items i
	JOIN users u ON u.id = i.seller_id
`

// buildListQuery turns a Filter into the WHERE clause and its arguments.
// Search matches the item name case-insensitively; categories are an OR set;
// price bounds are inclusive.
func buildListQuery(f Filter) (string, []any) {
	var clauses []string
	var args []any

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		clauses = append(clauses, fmt.Sprintf("i.name ILIKE $%d", len(args)))
	}
	if len(f.Categories) > 0 {
		args = append(args, f.Categories)
		clauses = append(clauses, fmt.Sprintf("i.category = ANY($%d)", len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		clauses = append(clauses, fmt.Sprintf("i.price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("i.price <= $%d", len(args)))
	}

	query := selectItem
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY i.created_at DESC"
	return query, args
}

// ListItems returns catalog listings matching the filter.
func (c *Conf) ListItems(ctx context.Context, f Filter) ([]Item, error) {
	query, args := buildListQuery(f)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var i Item
		if err := rows.Scan(&i.ID, &i.Name, &i.Price, &i.Description, &i.Category,
			&i.SellerID, &i.SellerName, &i.SellerEmail, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// GetItemByID fetches one listing with its seller details.
func (c *Conf) GetItemByID(ctx context.Context, itemID string) (Item, error) {
	query := selectItem + ` WHERE i.id = $1`

	var i Item
	err := c.db.QueryRowContext(ctx, query, itemID).Scan(&i.ID, &i.Name, &i.Price, &i.Description,
		&i.Category, &i.SellerID, &i.SellerName, &i.SellerEmail, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, fmt.Errorf("failed to query item: %w", err)
	}
	return i, nil
}

// InsertItem creates a listing owned by the seller.
func (c *Conf) InsertItem(ctx context.Context, sellerID string, newItem NewItem) (Item, error) {
	item := Item{
		ID:          uuid.NewString(),
		Name:        newItem.Name,
		Price:       newItem.Price,
		Description: newItem.Description,
		Category:    newItem.Category,
		SellerID:    sellerID,
		CreatedAt:   time.Now().UTC(),
	}

	query := `
		INSERT INTO items (id, name, price, description, category, seller_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := c.db.ExecContext(ctx, query, item.ID, item.Name, item.Price, item.Description,
		item.Category, item.SellerID, item.CreatedAt)
	if err != nil {
		return Item{}, fmt.Errorf("failed to insert item: %w", err)
	}
	return item, nil
}
