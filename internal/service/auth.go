package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/perfil-app/perfil-api/internal/crypto"
	"github.com/perfil-app/perfil-api/internal/model"
	"github.com/perfil-app/perfil-api/internal/repository"
)

// MinPasswordLength is the minimum number of characters accepted at registration.
const MinPasswordLength = 6

var (
	ErrMissingRegisterFields = errors.New("name, email and password are required")
	ErrMissingLoginFields    = errors.New("email and password are required")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrEmailTaken            = errors.New("email already taken")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUserNotFound          = errors.New("user not found")
)

// UserStore is the subset of the credential store the auth flows depend on.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthService handles registration, login and profile lookups.
type AuthService struct {
	store  UserStore
	hasher crypto.Hasher
	tokens *crypto.TokenManager

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, hasher crypto.Hasher, tokens *crypto.TokenManager) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register validates the request, hashes the password and stores a new user.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return model.UserResponse{}, ErrMissingRegisterFields
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return model.UserResponse{}, ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}

// Login checks the credentials and issues a session token.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return model.LoginResponse{}, ErrMissingLoginFields
	}

	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same hashing work as a real check.
			_, _ = s.hasher.Verify(req.Password, s.placeholderHash())
			return model.LoginResponse{}, ErrInvalidCredentials
		}
		return model.LoginResponse{}, err
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}
	if !match {
		return model.LoginResponse{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return model.LoginResponse{
		AccessToken: token,
		User:        user.ToResponse(),
		ExpiresAt:   expiresAt,
	}, nil
}

// Profile returns the sanitized record of the user a token was issued to.
func (s *AuthService) Profile(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("placeholder-password")
	})
	return s.dummyHash
}
