package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

// UserRepository is the directory: user lookups by id or unique code.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `id, code, name, hashed_password, role, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Code, &u.Name, &u.HashedPassword, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.User, error) {
	return scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByCode retrieves a user by their unique code.
func (r *UserRepository) GetByCode(ctx context.Context, db database.DBTX, code string) (*model.User, error) {
	return scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE code = $1`, code))
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, db database.DBTX, u *model.User) error {
	err := db.QueryRow(ctx,
		`INSERT INTO users (id, code, name, hashed_password, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		u.ID, u.Code, u.Name, u.HashedPassword, u.Role,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapDuplicateKey(err)
}

// UpdateName changes a user's display name.
func (r *UserRepository) UpdateName(ctx context.Context, db database.DBTX, id uuid.UUID, name string) error {
	_, err := db.Exec(ctx,
		`UPDATE users SET name = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		name, id,
	)
	return err
}
