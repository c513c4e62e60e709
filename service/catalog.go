package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/store"
)

// CatalogService manages authors, genres and books.
type CatalogService struct {
	store  store.Store
	covers CoverStore // nil when object storage is not configured
	now    func() time.Time
}

func NewCatalogService(st store.Store, covers CoverStore) *CatalogService {
	return &CatalogService{store: st, covers: covers, now: time.Now}
}

type AuthorInput struct {
	Name    *string `json:"name"`
	Bio     *string `json:"bio"`
	Website *string `json:"website"`
}

func (s *CatalogService) CreateAuthor(ctx context.Context, in AuthorInput) (*models.Author, error) {
	name := trimmed(in.Name)
	if name == "" {
		return nil, ErrMissingField.withMessage("author name is required")
	}
	now := s.now()
	author := &models.Author{
		Name:      name,
		Bio:       deref(in.Bio),
		Website:   deref(in.Website),
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.store.InsertAuthor(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("insert author: %w", err)
	}
	author.ID = id
	return author, nil
}

func (s *CatalogService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return s.store.FindAuthors(ctx, store.Filter{})
}

func (s *CatalogService) GetAuthor(ctx context.Context, authorID string) (*models.Author, error) {
	id, err := parseID(authorID)
	if err != nil {
		return nil, err
	}
	author, err := s.store.FindAuthor(ctx, store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAuthorNotFound
	}
	return author, err
}

func (s *CatalogService) UpdateAuthor(ctx context.Context, authorID string, in AuthorInput) (*models.Author, error) {
	id, err := parseID(authorID)
	if err != nil {
		return nil, err
	}
	patch := models.AuthorPatch{Bio: in.Bio, Website: in.Website}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrMissingField.withMessage("author name cannot be empty")
		}
		patch.Name = &name
	}
	if err := s.store.UpdateAuthor(ctx, id, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("update author: %w", err)
	}
	return s.GetAuthor(ctx, authorID)
}

// DeleteAuthor removes the author only. Books keep their now dangling reference.
func (s *CatalogService) DeleteAuthor(ctx context.Context, authorID string) error {
	id, err := parseID(authorID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAuthor(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAuthorNotFound
		}
		return fmt.Errorf("delete author: %w", err)
	}
	return nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
