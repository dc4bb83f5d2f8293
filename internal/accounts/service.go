// Package accounts implements registration, password authentication and
// listing of user accounts on top of a Store.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Wang-tianhao/vibrant-accounts/internal/common"
	"github.com/Wang-tianhao/vibrant-accounts/internal/models"
	"github.com/Wang-tianhao/vibrant-accounts/internal/password"
)

// ErrInvalidCredentials is the only failure Authenticate reports.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	DefaultListLimit = 10
	MaxListLimit     = 10
)

// Store is the persistence collaborator for user records.
type Store interface {
	// FindByEmail returns common.ErrNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Insert returns common.ErrAlreadyExists when the email is taken.
	Insert(ctx context.Context, user models.NewUser) (*models.User, error)
	// List returns up to limit users with id > after, ordered by id.
	List(ctx context.Context, after int64, limit int) ([]models.User, error)
}

// Service orchestrates accounts operations.
type Service struct {
	store   Store
	hashing *password.Pool
	log     zerolog.Logger
}

// NewService constructs a Service.
func NewService(store Store, hashing *password.Pool, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		hashing: hashing,
		log:     log.With().Str("component", "accounts").Logger(),
	}
}

// Authenticate returns the user identified by email if plaintext matches the
// stored hash. Every failure is ErrInvalidCredentials; the cause is only logged.
func (s *Service) Authenticate(ctx context.Context, email, plaintext string) (*models.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.log.Debug().Str("email", email).Msg("authentication for unknown email")
		} else {
			s.log.Error().Err(err).Str("email", email).Msg("user lookup failed")
		}
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hashing.Verify(ctx, plaintext, user.HashedPassword)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("password verification failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.log.Debug().Int64("user_id", user.ID).Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Register hashes plaintext and stores a new user.
func (s *Service) Register(ctx context.Context, email, name, plaintext string) (*models.User, error) {
	hashed, err := s.hashing.Hash(ctx, plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Insert(ctx, models.NewUser{
		Email:          email,
		Name:           name,
		HashedPassword: hashed,
	})
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// List returns a page of users with id > after. A limit outside 1..MaxListLimit
// is replaced by DefaultListLimit or clamped to MaxListLimit.
func (s *Service) List(ctx context.Context, after int64, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if after < 0 {
		after = 0
	}

	users, err := s.store.List(ctx, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
