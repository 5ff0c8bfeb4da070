package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	sessionauth "github.com/interviewly/sessionauth"
)

const uniqueViolation = "23505"

// Store keeps user records in a single users table. It implements
// [sessionauth.UserStore]; rotation is a conditional UPDATE so the
// compare-and-swap happens inside Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store on the given pool. Run [Migrate] first.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = "id, username, email, full_name, role, password_hash, refresh_token, created_at, updated_at"

// CreateUser inserts the record, relying on the unique indexes on username
// and email for duplicate detection.
func (s *Store) CreateUser(ctx context.Context, user sessionauth.UserRecord) (sessionauth.UserRecord, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, full_name, role, password_hash, refresh_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, '', $7, $7)`,
		user.ID, user.Username, user.Email, user.FullName, user.Role, user.PasswordHash, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sessionauth.UserRecord{}, sessionauth.ErrUserExists
		}
		return sessionauth.UserRecord{}, fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}

	user.RefreshToken = ""
	return user, nil
}

// GetUserByIdentifier matches identifier against username or email.
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (sessionauth.UserRecord, error) {
	identifier = strings.ToLower(identifier)
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`,
		identifier,
	)
	return scanUser(row)
}

// GetUserByID loads a record by primary key.
func (s *Store) GetUserByID(ctx context.Context, userID string) (sessionauth.UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	)
	return scanUser(row)
}

// UpdatePasswordHash replaces the stored hash.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return s.updateField(ctx, "password_hash", userID, newHash)
}

// SetRefreshToken unconditionally installs token as the current refresh
// token, superseding any previous one.
func (s *Store) SetRefreshToken(ctx context.Context, userID, token string) error {
	return s.updateField(ctx, "refresh_token", userID, token)
}

// GetRefreshToken returns the stored refresh token; empty means no live
// session.
func (s *Store) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	var token string
	err := s.pool.QueryRow(ctx,
		`SELECT refresh_token FROM users WHERE id = $1`,
		userID,
	).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", sessionauth.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}
	return token, nil
}

// RotateRefreshToken swaps presented for next in one conditional UPDATE.
// The WHERE clause is the compare half of the compare-and-swap: under
// concurrent refreshes with the same presented token, exactly one UPDATE
// matches a row and the rest fall through to [sessionauth.ErrTokenReused].
func (s *Store) RotateRefreshToken(ctx context.Context, userID, presented, next string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $3, updated_at = now()
		 WHERE id = $1 AND refresh_token = $2 AND refresh_token <> ''`,
		userID, presented, next,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Disambiguate: no row updated means either the user is gone or the
	// presented token is no longer current.
	var exists bool
	err = s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}
	if !exists {
		return sessionauth.ErrUserNotFound
	}
	return sessionauth.ErrTokenReused
}

// ClearRefreshToken empties the stored refresh token.
func (s *Store) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.updateField(ctx, "refresh_token", userID, "")
}

func (s *Store) updateField(ctx context.Context, column, userID, value string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET `+column+` = $2, updated_at = now() WHERE id = $1`,
		userID, value,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return sessionauth.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (sessionauth.UserRecord, error) {
	var user sessionauth.UserRecord
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return sessionauth.UserRecord{}, sessionauth.ErrUserNotFound
	}
	if err != nil {
		return sessionauth.UserRecord{}, fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}
	return user, nil
}
