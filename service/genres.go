package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/store"
)

type GenreInput struct {
	Name string `json:"name"`
}

func (s *CatalogService) CreateGenre(ctx context.Context, in GenreInput) (*models.Genre, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrMissingField.withMessage("genre name is required")
	}
	_, err := s.store.FindGenre(ctx, store.Filter{}.Eq("name", name))
	if err == nil {
		return nil, ErrDuplicateGenre
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup genre: %w", err)
	}

	now := s.now()
	genre := &models.Genre{Name: name, CreatedAt: now, UpdatedAt: now}
	id, err := s.store.InsertGenre(ctx, genre)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrDuplicateGenre
	}
	if err != nil {
		return nil, fmt.Errorf("insert genre: %w", err)
	}
	genre.ID = id
	return genre, nil
}

func (s *CatalogService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return s.store.FindGenres(ctx, store.Filter{})
}

func (s *CatalogService) GetGenre(ctx context.Context, genreID string) (*models.Genre, error) {
	id, err := parseID(genreID)
	if err != nil {
		return nil, err
	}
	genre, err := s.store.FindGenre(ctx, store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound.withMessage("genre not found")
	}
	return genre, err
}

func (s *CatalogService) UpdateGenre(ctx context.Context, genreID string, in GenreInput) (*models.Genre, error) {
	id, err := parseID(genreID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrMissingField.withMessage("genre name is required")
	}
	switch err := s.store.RenameGenre(ctx, id, name); {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound.withMessage("genre not found")
	case errors.Is(err, store.ErrDuplicate):
		return nil, ErrDuplicateGenre
	case err != nil:
		return nil, fmt.Errorf("update genre: %w", err)
	}
	return s.GetGenre(ctx, genreID)
}

// DeleteGenre removes the genre only. Books keep their now dangling reference.
func (s *CatalogService) DeleteGenre(ctx context.Context, genreID string) error {
	id, err := parseID(genreID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteGenre(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound.withMessage("genre not found")
		}
		return fmt.Errorf("delete genre: %w", err)
	}
	return nil
}
