package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/repository"
	"github.com/liftsplit/liftsplit/internal/validation"
	"github.com/liftsplit/liftsplit/pkg/crypto"
	jwtpkg "github.com/liftsplit/liftsplit/pkg/jwt"
)

// TokenType is the scheme clients put in front of access tokens.
const TokenType = "bearer"

var (
	// ErrInvalidCredentials covers unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrUnauthorized covers missing, invalid, expired or unresolvable tokens.
	ErrUnauthorized = errors.New("could not validate credentials")
)

// decoyHash is compared against when the username is unknown so both login
// failure paths pay the bcrypt cost.
var decoyHash = sync.OnceValues(func() ([]byte, error) {
	return crypto.HashPassword("liftsplit-decoy-password")
})

// Service handles registration, login and bearer token resolution.
type Service struct {
	store    repository.Transactor
	signer   *jwtpkg.Signer
	tokenTTL time.Duration
	logger   *slog.Logger
}

// New constructs a Service.
func New(store repository.Transactor, signer *jwtpkg.Signer, tokenTTL time.Duration, logger *slog.Logger) Service {
	return Service{store: store, signer: signer, tokenTTL: tokenTTL, logger: logger}
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Register creates a user with a bcrypt-hashed password.
func (s Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	var fields []validation.FieldError
	if username == "" {
		fields = append(fields, validation.FieldError{Field: "username", Message: "is required"})
	}
	if email == "" {
		fields = append(fields, validation.FieldError{Field: "email", Message: "is required"})
	}
	if input.Password == "" {
		fields = append(fields, validation.FieldError{Field: "password", Message: "is required"})
	} else if len(input.Password) > crypto.MaxPasswordBytes {
		fields = append(fields, validation.FieldError{Field: "password", Message: "must be at most 72 bytes"})
	}
	if len(fields) > 0 {
		return nil, &validation.Error{Fields: fields}
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetUserByUsername(ctx, username); err == nil {
			return repository.ErrUsernameTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if _, err := tx.GetUserByEmail(ctx, email); err == nil {
			return repository.ErrEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks a username/password pair.
func (s Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.lookupUser(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if hash, hashErr := decoyHash(); hashErr == nil {
				_ = crypto.ComparePassword(hash, password)
			}
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates the user and issues an access token bound to the username.
func (s Service) Login(ctx context.Context, username, password string) (*domain.User, Token, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, Token{}, err
	}
	access, expires, err := s.signer.Issue(user.Username, s.tokenTTL)
	if err != nil {
		return nil, Token{}, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, Token{AccessToken: access, TokenType: TokenType, ExpiresAt: expires}, nil
}

// Authorize validates a bearer token and returns the user it names.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.signer.Verify(trimmed)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}
	user, err := s.lookupUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s Service) lookupUser(ctx context.Context, username string) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.GetUserByUsername(ctx, username)
		return err
	})
	return user, err
}
