package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

const (
	userTable = "users"

	// userVisible hides deactivated accounts from every read.
	userVisible = "active = TRUE"

	userColumns = `id, name, email, photo, role, hashed_password, password_changed_at,
		password_reset_token, password_reset_expires, active, created_at`

	userInsertSQL = `INSERT INTO users (` + userColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	userUpdateSQL = `UPDATE users SET
		name = $2, email = $3, photo = $4, role = $5, hashed_password = $6,
		password_changed_at = $7, password_reset_token = $8,
		password_reset_expires = $9, active = $10
	WHERE id = $1`
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx returns a store that runs every statement in tx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) *PostgresUserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Find implements store.UserStore.Find
func (s *PostgresUserStore) Find(ctx context.Context, q query.Shaped) ([]store.Record, error) {
	stmt, args, err := renderFind(domain.UserSchema, userTable, userVisible, q)
	if err != nil {
		return nil, err
	}
	return queryRecords(ctx, s.db, stmt, args)
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, userInsertSQL,
		user.ID, user.Name, user.Email, user.Photo, user.Role, user.HashedPassword,
		nullTime(user.PasswordChangedAt), nullString(user.PasswordResetToken),
		nullTime(user.PasswordResetExpires), user.Active, user.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	s.logger.DebugContext(ctx, "user inserted", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "id = $1", id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "email = $1", email)
}

// GetByResetToken implements store.UserStore.GetByResetToken
func (s *PostgresUserStore) GetByResetToken(
	ctx context.Context,
	hashedToken string,
	now time.Time,
) (*domain.User, error) {
	return s.getOne(ctx, "password_reset_token = $1 AND password_reset_expires > $2", hashedToken, now.UTC())
}

// Update implements store.UserStore.Update. Deactivated accounts can still
// be written, which is how they are deactivated.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx, userUpdateSQL,
		user.ID, user.Name, user.Email, user.Photo, user.Role, user.HashedPassword,
		nullTime(user.PasswordChangedAt), nullString(user.PasswordResetToken),
		nullTime(user.PasswordResetExpires), user.Active,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(res, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(res, store.ErrUserNotFound)
}

func (s *PostgresUserStore) getOne(ctx context.Context, where string, args ...any) (*domain.User, error) {
	stmt := "SELECT " + userColumns + " FROM " + userTable + " WHERE " + where + " AND " + userVisible

	var (
		u            domain.User
		changedAt    sql.NullTime
		resetToken   sql.NullString
		resetExpires sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, stmt, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.Photo, &u.Role, &u.HashedPassword,
		&changedAt, &resetToken, &resetExpires, &u.Active, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", MapError(err))
	}

	if changedAt.Valid {
		t := changedAt.Time.UTC()
		u.PasswordChangedAt = &t
	}
	if resetExpires.Valid {
		t := resetExpires.Time.UTC()
		u.PasswordResetExpires = &t
	}
	u.PasswordResetToken = resetToken.String
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
