package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campsite/internal/models"
)

// ErrUserNotFound signals a lookup that matched no user row.
var ErrUserNotFound = errors.New("store: user not found")

// PostgresStore handles user CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username      VARCHAR(50)  UNIQUE NOT NULL,
			email         VARCHAR(255) UNIQUE NOT NULL,
			password      VARCHAR(255) NOT NULL,
			is_admin      BOOLEAN      NOT NULL DEFAULT FALSE,
			bio           TEXT         NOT NULL DEFAULT '',
			avatar_url    TEXT         NOT NULL DEFAULT '',
			avatar_key    TEXT         NOT NULL DEFAULT '',
			reset_token   TEXT         NOT NULL DEFAULT '',
			reset_expires TIMESTAMPTZ,
			created_at    TIMESTAMPTZ  DEFAULT NOW()
		)
	`)
	return err
}

const userColumns = `id, username, email, password, is_admin, bio, avatar_url, avatar_key,
	reset_token, COALESCE(reset_expires, 'epoch'::timestamptz), created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin,
		&u.Bio, &u.AvatarURL, &u.AvatarKey, &u.ResetToken, &u.ResetExpires, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, email, hashedPassword string, isAdmin bool) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		username, email, hashedPassword, isAdmin,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetUserByResetToken only matches tokens that have not yet expired.
func (s *PostgresStore) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE reset_token = $1 AND reset_token <> '' AND reset_expires > NOW()`, token))
}

func (s *PostgresStore) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET reset_token = $2, reset_expires = $3 WHERE id = $1`,
		id, token, expires)
	return err
}

// UpdatePassword stores the new hash and clears any pending reset token.
func (s *PostgresStore) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET password = $2, reset_token = '', reset_expires = NULL WHERE id = $1`,
		id, hashedPassword)
	return err
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id, email, bio, avatarURL, avatarKey string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $2, bio = $3, avatar_url = $4, avatar_key = $5 WHERE id = $1`,
		id, email, bio, avatarURL, avatarKey)
	return err
}
