// Package repositories holds the SQL behind users, tasks and events. Each
// repository is bound to a database.DBTX so it can run inside or outside a
// transaction.
package repositories

import (
	"context"
	"database/sql"

	"github.com/isdelr/tasklist-be/internal/apperrors"
	"github.com/isdelr/tasklist-be/internal/database"
	"github.com/isdelr/tasklist-be/internal/models"
	"github.com/pkg/errors"
)

// UserRepository is the credential store.
type UserRepository struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A taken username yields apperrors.ErrUsernameTaken;
// the UNIQUE constraint decides, so concurrent registrations cannot both win.
func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.ErrUsernameTaken.WithCause(err)
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

// FindByUsername looks up a user by exact, case-sensitive username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperrors.ErrUserNotFound
		}
		return models.User{}, errors.Wrap(err, "select user")
	}
	return user, nil
}
