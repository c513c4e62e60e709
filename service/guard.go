package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/store"
)

// Guard turns bearer tokens into user ids and enforces the admin role.
type Guard struct {
	tokens *TokenService
	store  store.Store
}

func NewGuard(tokens *TokenService, st store.Store) *Guard {
	return &Guard{tokens: tokens, store: st}
}

// RequireAuthenticated validates an Authorization header value of the form
// "Bearer <token>" and returns the user id it carries.
func (g *Guard) RequireAuthenticated(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	userID, err := g.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		return "", err
	}
	if _, err := parseID(userID); err != nil {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// RequireAdmin loads the user on every call; the role is never cached, so a
// changed role applies to the next request.
func (g *Guard) RequireAdmin(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, ErrAdminOnly
	}
	user, err := g.store.FindUser(ctx, store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAdminOnly
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.Role.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return user, nil
}
