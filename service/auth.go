package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/store"
	"github.com/kevinaaaquil/bookstore/backend/utils"
)

// dummyHash is compared against when a login email is unknown, so both
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, err := utils.HashPassword("bookstore-dummy-password")
	if err != nil {
		return ""
	}
	return h
})

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Profile struct {
	User         *models.User      `json:"user"`
	CreatedBooks []models.BookView `json:"createdBooks,omitempty"`
}

// AuthService owns user credentials, profiles and promotion.
type AuthService struct {
	store  store.Store
	tokens *TokenService
	now    func() time.Time
}

func NewAuthService(st store.Store, tokens *TokenService) *AuthService {
	return &AuthService{store: st, tokens: tokens, now: time.Now}
}

// Register creates a regular user and returns its id and a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return "", "", ErrMissingField.withMessage("name, email and password are required")
	}

	_, err := s.store.FindUser(ctx, store.Filter{}.Eq("email", email))
	if err == nil {
		return "", "", ErrDuplicateEmail
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", "", fmt.Errorf("lookup email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	id, err := s.store.InsertUser(ctx, &models.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return "", "", ErrDuplicateEmail
	}
	if err != nil {
		return "", "", fmt.Errorf("insert user: %w", err)
	}

	token, err := s.tokens.Issue(id.Hex())
	if err != nil {
		return "", "", err
	}
	return id.Hex(), token, nil
}

// Login matches the email exactly as given. Unknown email and wrong password
// fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	user, err := s.store.FindUser(ctx, store.Filter{}.Eq("email", email))
	if errors.Is(err, store.ErrNotFound) {
		_, _ = utils.CheckPassword(dummyHash(), password)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup email: %w", err)
	}
	ok, err := utils.CheckPassword(user.Password, password)
	if err != nil {
		return "", fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID.Hex())
}

// Profile returns the caller's account. Admins also get the books they created.
func (s *AuthService) Profile(ctx context.Context, userID string) (*Profile, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.store.FindUser(ctx, store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	p := &Profile{User: user}
	if user.Role.IsAdmin() {
		books, err := s.store.FindBooks(ctx, store.Filter{}.Eq("createdBy", id), store.Page{})
		if err != nil {
			return nil, fmt.Errorf("load created books: %w", err)
		}
		if p.CreatedBooks, err = resolveBooks(ctx, s.store, books); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Promote makes a regular user an admin. There is no way back.
func (s *AuthService) Promote(ctx context.Context, userID string) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	user, err := s.store.FindUser(ctx, store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.Role.IsAdmin() {
		return ErrAlreadyAdmin
	}
	if err := s.store.SetUserRole(ctx, id, models.RoleAdmin); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("promote user: %w", err)
	}
	return nil
}

// EnsureAdmin makes sure an admin with the given email exists, registering
// or promoting it as needed. The password of an existing account is kept.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.FindUser(ctx, store.Filter{}.Eq("email", email))
	switch {
	case err == nil:
		if user.Role.IsAdmin() {
			return nil
		}
		slog.Info("promoting bootstrap admin", "email", email)
		return s.store.SetUserRole(ctx, user.ID, models.RoleAdmin)
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	id, _, err := s.Register(ctx, RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		return err
	}
	slog.Info("created bootstrap admin", "email", email)
	return s.Promote(ctx, id)
}
