package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

// UserService exposes directory lookups and profile updates.
type UserService struct {
	db    database.Conn
	users UserStore
}

// NewUserService creates a new UserService.
func NewUserService(db database.Conn, users UserStore) *UserService {
	return &UserService{db: db, users: users}
}

// GetByID retrieves a user by id.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.GetByID(ctx, s.db, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByCode retrieves a user by their unique code.
func (s *UserService) GetByCode(ctx context.Context, code string) (*model.User, error) {
	u, err := s.users.GetByCode(ctx, s.db, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateName changes the user's display name.
func (s *UserService) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return s.users.UpdateName(ctx, s.db, id, name)
}
