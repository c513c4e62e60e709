package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kevinaaaquil/bookstore/backend/models"
)

const (
	coverPrefix    = "covers/"
	coverURLExpiry = 15 * time.Minute
)

var coverTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// CoverStore keeps cover image objects. S3Covers implements it.
type CoverStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// UploadCover stores a new cover for the book and replaces the previous one.
func (s *CatalogService) UploadCover(ctx context.Context, bookID, filename, contentType string, body io.Reader) (*models.Book, error) {
	if s.covers == nil {
		return nil, ErrCoversUnavailable
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !coverTypes[contentType] {
		return nil, ErrValidation.withMessage("cover must be a jpeg, png, webp or gif image")
	}
	book, err := s.findBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	key := coverPrefix + book.ID.Hex() + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if err := s.covers.Put(ctx, key, body, contentType); err != nil {
		return nil, fmt.Errorf("upload cover: %w", err)
	}
	if err := s.UpdateBook(ctx, bookID, BookInput{CoverImage: &key}); err != nil {
		_ = s.covers.Delete(ctx, key)
		return nil, err
	}
	if isStoredCover(book.CoverImage) {
		if err := s.covers.Delete(ctx, book.CoverImage); err != nil {
			slog.WarnContext(ctx, "delete previous cover", "key", book.CoverImage, "error", err)
		}
	}
	book.CoverImage = key
	return book, nil
}

// CoverURL returns a short-lived download URL for a stored cover, or the
// cover reference itself when it is an absolute http(s) URL. Anything else
// counts as no cover.
func (s *CatalogService) CoverURL(ctx context.Context, bookID string) (string, error) {
	book, err := s.findBook(ctx, bookID)
	if err != nil {
		return "", err
	}
	switch {
	case book.CoverImage == "":
		return "", ErrNoCover
	case !isStoredCover(book.CoverImage):
		if !isWebURL(book.CoverImage) {
			return "", ErrNoCover
		}
		return book.CoverImage, nil
	case s.covers == nil:
		return "", ErrCoversUnavailable
	}
	signed, err := s.covers.URL(ctx, book.CoverImage, coverURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign cover: %w", err)
	}
	return signed, nil
}

func isStoredCover(ref string) bool {
	return strings.HasPrefix(ref, coverPrefix)
}

func isWebURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
