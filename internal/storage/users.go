package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/Wang-tianhao/vibrant-accounts/internal/common"
	"github.com/Wang-tianhao/vibrant-accounts/internal/models"
)

const pgUniqueViolation = "23505"

const userColumns = `id, email, name, hashed_password, created_at, updated_at`

// UserStore is a users repository over either supported dialect.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user := &models.User{}
	if err := s.db.GetContext(ctx, user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (s *UserStore) Insert(ctx context.Context, nu models.NewUser) (*models.User, error) {
	query :=
		`INSERT INTO users (email, name, hashed_password)
		 VALUES ($1, $2, $3)
		 RETURNING id`

	var id int64
	if err := s.db.QueryRowxContext(ctx, query, nu.Email, nu.Name, nu.HashedPassword).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	// Re-read so that column defaults come back typed for both drivers.
	user := &models.User{}
	if err := s.db.GetContext(ctx, user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (s *UserStore) List(ctx context.Context, after int64, limit int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id > $1 ORDER BY id LIMIT $2`

	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, query, after, limit); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

// Ping reports whether the database is reachable.
func (s *UserStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
