package services

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/isdelr/tasklist-be/internal/apperrors"
	"github.com/isdelr/tasklist-be/internal/auth"
	"github.com/isdelr/tasklist-be/internal/database"
	"github.com/isdelr/tasklist-be/internal/models"
	"github.com/isdelr/tasklist-be/internal/repositories"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	MinPasswordLength = 6
	MaxUsernameLength = 100
	MaxPasswordBytes  = 72 // bcrypt ignores everything past 72 bytes
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (string, models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// TokenIssuer issues session tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserService registers and authenticates users.
type UserService struct {
	db     *database.DB
	hasher auth.PasswordHasher
	tokens TokenIssuer
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB, hasher auth.PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{db: db, hasher: hasher, tokens: tokens, now: time.Now}
}

// Register validates the credentials, hashes the password and stores the
// user. Usernames are taken verbatim: exact, case-sensitive, untrimmed.
func (s *UserService) Register(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, apperrors.Validation("Username and password are required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return models.User{}, apperrors.Validation("Username must be at most 100 characters")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return models.User{}, apperrors.Validation("Password must be at least 6 characters")
	}
	if len(password) > MaxPasswordBytes {
		return models.User{}, apperrors.Validation("Password must be at most 72 bytes")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hash password")
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    timestamp(s.now),
	}

	err = s.db.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		if err := repositories.NewUserRepository(tx).Create(ctx, user); err != nil {
			return err
		}
		return recordEvent(ctx, tx, user.ID, nil, models.EventUserRegister, "Account registered", user.CreatedAt)
	})
	if err != nil {
		return models.User{}, err
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login checks the credentials and issues a session token. Unknown user and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (string, models.User, error) {
	if username == "" || password == "" {
		return "", models.User{}, apperrors.Validation("Username and password are required")
	}

	user, err := repositories.NewUserRepository(s.db).FindByUsername(ctx, username)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			// Burn the same bcrypt work as a real comparison.
			s.hasher.Verify(password, s.fallbackHash())
			return "", models.User{}, apperrors.ErrInvalidCredentials
		}
		return "", models.User{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", models.User{}, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", models.User{}, errors.Wrap(err, "issue token")
	}

	if err := recordEvent(ctx, s.db, user.ID, nil, models.EventUserLogin, "Logged in", timestamp(s.now)); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record login event")
	}
	return token, user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return repositories.NewUserRepository(s.db).FindByID(ctx, id)
}

func (s *UserService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			log.Error().Err(err).Msg("Failed to prepare fallback password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// timestamp is the current time as stored: UTC at microsecond precision,
// which both SQLite and Postgres round-trip exactly.
func timestamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}
