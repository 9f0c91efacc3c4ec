package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrNotOwner       = errors.New("review belongs to another user")
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

// ReviewsByReviewer returns the reviews written by one user, newest first.
func (c *Conf) ReviewsByReviewer(ctx context.Context, reviewerID string) ([]Review, error) {
	query := `
		SELECT r.id, r.reviewer_id, u.full_name, r.target_user_id, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.reviewer_id
		WHERE r.reviewer_id = $1
		ORDER BY r.created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ReviewerID, &r.ReviewerName, &r.TargetUserID,
			&r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

// InsertReview creates a review of targetUserID and refreshes that user's
// average rating in the same transaction.
func (c *Conf) InsertReview(ctx context.Context, reviewerID, targetUserID string, newReview NewReview) (Review, error) {
	review := Review{
		ID:           uuid.NewString(),
		ReviewerID:   reviewerID,
		TargetUserID: targetUserID,
		Rating:       newReview.Rating,
		Comment:      newReview.Comment,
		CreatedAt:    time.Now().UTC(),
	}

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		queryTarget := `SELECT 1 FROM users WHERE id = $1`
		var one int
		if err := tx.QueryRowContext(ctx, queryTarget, targetUserID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to query target user: %w", err)
		}

		queryInsert := `
			INSERT INTO reviews (id, reviewer_id, target_user_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.ExecContext(ctx, queryInsert, review.ID, review.ReviewerID, review.TargetUserID,
			review.Rating, review.Comment, review.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}

		return refreshRating(ctx, tx, targetUserID)
	})
	if err != nil {
		return Review{}, err
	}
	return review, nil
}

// UpdateReview edits a review owned by reviewerID and refreshes the target
// user's average rating.
func (c *Conf) UpdateReview(ctx context.Context, reviewerID, reviewID string, update UpdateReview) (Review, error) {
	var review Review

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getReviewTx(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		if current.ReviewerID != reviewerID {
			return ErrNotOwner
		}

		review = current
		if update.Rating != nil {
			review.Rating = *update.Rating
		}
		if update.Comment != nil {
			review.Comment = *update.Comment
		}

		queryUpdate := `UPDATE reviews SET rating = $1, comment = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, queryUpdate, review.Rating, review.Comment, reviewID); err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}

		return refreshRating(ctx, tx, review.TargetUserID)
	})
	if err != nil {
		return Review{}, err
	}
	return review, nil
}

// DeleteReview removes a review owned by reviewerID and refreshes the target
// user's average rating (back to zero when no reviews remain).
func (c *Conf) DeleteReview(ctx context.Context, reviewerID, reviewID string) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getReviewTx(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		if current.ReviewerID != reviewerID {
			return ErrNotOwner
		}

		queryDelete := `DELETE FROM reviews WHERE id = $1`
		if _, err := tx.ExecContext(ctx, queryDelete, reviewID); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		return refreshRating(ctx, tx, current.TargetUserID)
	})
}

func getReviewTx(ctx context.Context, tx *sql.Tx, reviewID string) (Review, error) {
	query := `
		SELECT id, reviewer_id, target_user_id, rating, comment, created_at
		FROM reviews
		WHERE id = $1
	`
	var r Review
	err := tx.QueryRowContext(ctx, query, reviewID).Scan(&r.ID, &r.ReviewerID, &r.TargetUserID,
		&r.Rating, &r.Comment, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, fmt.Errorf("failed to query review: %w", err)
	}
	return r, nil
}

// refreshRating recomputes the target user's average rating from their
// remaining reviews.
func refreshRating(ctx context.Context, tx *sql.Tx, targetUserID string) error {
	query := `
		UPDATE users
		SET rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE target_user_id = $1), 0),
			updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, targetUserID); err != nil {
		return fmt.Errorf("failed to refresh rating: %w", err)
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
