package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

const passwordBcryptCost = 10

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// InsertUser hashes the password and creates the account.
func (c *Conf) InsertUser(ctx context.Context, newUser NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(newUser.Password), passwordBcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	user := User{
		ID:            uuid.NewString(),
		FullName:      newUser.FullName,
		Email:         newUser.Email,
		Age:           newUser.Age,
		ContactNumber: newUser.ContactNumber,
		PasswordHash:  string(hash),
		CreatedAt:     time.Now().UTC(),
	}
	user.UpdatedAt = user.CreatedAt

	query := `
		INSERT INTO users (id, full_name, email, age, contact_number, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	_, err = c.db.ExecContext(ctx, query, user.ID, user.FullName, user.Email, user.Age,
		user.ContactNumber, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// Authenticate checks the email/password pair and returns the account.
// A missing account and a wrong password are indistinguishable to the caller.
func (c *Conf) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := c.getBy(ctx, "email", email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID fetches one account.
func (c *Conf) GetUserByID(ctx context.Context, userID string) (User, error) {
	return c.getBy(ctx, "id", userID)
}

func (c *Conf) getBy(ctx context.Context, column, value string) (User, error) {
	query := fmt.Sprintf(`
		SELECT id, full_name, email, age, contact_number, password_hash, rating, is_cas, created_at, updated_at
		FROM users
		WHERE %s = $1
	`, column)

	var u User
	err := c.db.QueryRowContext(ctx, query, value).Scan(&u.ID, &u.FullName, &u.Email, &u.Age,
		&u.ContactNumber, &u.PasswordHash, &u.Rating, &u.IsCAS, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// UpdateAge sets a new age on the account.
func (c *Conf) UpdateAge(ctx context.Context, userID string, age int) error {
	return c.updateField(ctx, userID, "age", age)
}

// UpdateContactNumber sets a new contact number on the account.
func (c *Conf) UpdateContactNumber(ctx context.Context, userID string, contactNumber string) error {
	return c.updateField(ctx, userID, "contact_number", contactNumber)
}

func (c *Conf) updateField(ctx context.Context, userID, column string, value any) error {
	query := fmt.Sprintf(`UPDATE users SET %s = $1, updated_at = NOW() WHERE id = $2`, column)
	res, err := c.db.ExecContext(ctx, query, value, userID)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword verifies the current password before storing the hash of
// the new one.
func (c *Conf) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := c.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), passwordBcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return c.updateField(ctx, userID, "password_hash", string(hash))
}
