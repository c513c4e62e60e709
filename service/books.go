package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// BookInput is used for both create and update. On create every field except
// description and coverImage is required; on update nil fields are kept.
type BookInput struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Author        *string  `json:"author"`
	Genres        IDList   `json:"genres"`
	Price         *float64 `json:"price"`
	PublishedYear *int     `json:"publishedYear"`
	CoverImage    *string  `json:"coverImage"`
}

// BookQuery filters ListBooks. Zero-valued fields do not filter.
type BookQuery struct {
	Title         string
	Author        string
	Genres        []string
	PublishedYear *int
	MinPrice      *float64
	MaxPrice      *float64
	Page          int
	Limit         int
}

type BookPage struct {
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Pages int               `json:"pages"`
	Books []models.BookView `json:"books"`
}

// CreateBook checks that the author and every genre exist before inserting.
// The checks and the insert are not atomic.
func (s *CatalogService) CreateBook(ctx context.Context, creatorID string, in BookInput) (*models.Book, error) {
	creator, err := parseID(creatorID)
	if err != nil {
		return nil, err
	}
	title := trimmed(in.Title)
	authorRef := trimmed(in.Author)
	if title == "" || authorRef == "" || !in.Genres.Present() || in.Price == nil || in.PublishedYear == nil {
		return nil, ErrMissingField
	}
	if *in.Price < 0 || math.IsNaN(*in.Price) {
		return nil, ErrValidation.withMessage("price must not be negative")
	}

	authorID, err := primitive.ObjectIDFromHex(authorRef)
	if err != nil {
		return nil, ErrAuthorNotFound
	}
	if _, err := s.store.FindAuthor(ctx, store.ByID(authorID)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("lookup author: %w", err)
	}

	if !in.Genres.Valid() {
		return nil, ErrInvalidGenreList
	}
	genreIDs, err := s.resolveGenres(ctx, in.Genres.Values)
	if err != nil {
		return nil, err
	}

	now := s.now()
	book := &models.Book{
		Title:         title,
		Description:   deref(in.Description),
		Author:        authorID,
		Genres:        genreIDs,
		Price:         *in.Price,
		PublishedYear: *in.PublishedYear,
		CoverImage:    trimmed(in.CoverImage),
		CreatedBy:     creator,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := s.store.InsertBook(ctx, book)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	book.ID = id
	return book, nil
}

// resolveGenres requires every requested id to match a distinct genre, so
// unknown, malformed and repeated ids all fail the count comparison.
func (s *CatalogService) resolveGenres(ctx context.Context, refs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(refs))
	for _, ref := range refs {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(ref))
		if err != nil {
			return nil, ErrGenreNotFound
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	found, err := s.store.FindGenres(ctx, store.Filter{}.In("_id", store.IDs(ids)...))
	if err != nil {
		return nil, fmt.Errorf("lookup genres: %w", err)
	}
	if len(found) != len(ids) {
		return nil, ErrGenreNotFound
	}
	return ids, nil
}

func (s *CatalogService) ListBooks(ctx context.Context, q BookQuery) (*BookPage, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	f := bookFilter(q)
	total, err := s.store.CountBooks(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	result := &BookPage{
		Total: total,
		Page:  page,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
		Books: []models.BookView{},
	}
	// Pages past the end, including ones whose offset would overflow, are empty.
	if int64(page-1) > (total-1)/int64(limit) {
		return result, nil
	}
	books, err := s.store.FindBooks(ctx, f, store.Page{Skip: int64(page-1) * int64(limit), Limit: int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	if result.Books, err = resolveBooks(ctx, s.store, books); err != nil {
		return nil, err
	}
	return result, nil
}

// bookFilter keeps malformed ids as plain strings; they never equal a stored
// ObjectID, so such a filter simply matches nothing.
func bookFilter(q BookQuery) store.Filter {
	f := store.Filter{}
	if t := strings.TrimSpace(q.Title); t != "" {
		f = f.Contains("title", t)
	}
	if a := strings.TrimSpace(q.Author); a != "" {
		f = f.Eq("author", idOrRaw(a))
	}
	if len(q.Genres) > 0 {
		vals := make([]any, 0, len(q.Genres))
		for _, g := range q.Genres {
			vals = append(vals, idOrRaw(strings.TrimSpace(g)))
		}
		f = f.In("genres", vals...)
	}
	if q.PublishedYear != nil {
		f = f.Eq("publishedYear", *q.PublishedYear)
	}
	return f.Range("price", q.MinPrice, q.MaxPrice)
}

func idOrRaw(s string) any {
	if id, err := primitive.ObjectIDFromHex(s); err == nil {
		return id
	}
	return s
}

func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*models.BookView, error) {
	book, err := s.findBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	views, err := resolveBooks(ctx, s.store, []models.Book{*book})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CatalogService) findBook(ctx context.Context, bookID string) (*models.Book, error) {
	id, err := parseID(bookID)
	if err != nil {
		return nil, err
	}
	book, err := s.store.FindBook(ctx, store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}
	return book, nil
}

// UpdateBook applies the given fields. Author and genre ids must be well
// formed but are not checked for existence.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, in BookInput) error {
	id, err := parseID(bookID)
	if err != nil {
		return err
	}
	patch := models.BookPatch{
		Description:   in.Description,
		PublishedYear: in.PublishedYear,
		CoverImage:    in.CoverImage,
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return ErrMissingField.withMessage("title cannot be empty")
		}
		patch.Title = &title
	}
	if in.Author != nil {
		author, err := primitive.ObjectIDFromHex(strings.TrimSpace(*in.Author))
		if err != nil {
			return ErrValidation.withMessage("invalid author id")
		}
		patch.Author = &author
	}
	if in.Genres.Present() {
		if !in.Genres.Valid() {
			return ErrInvalidGenreList
		}
		genres := make([]primitive.ObjectID, 0, len(in.Genres.Values))
		for _, g := range in.Genres.Values {
			gid, err := primitive.ObjectIDFromHex(strings.TrimSpace(g))
			if err != nil {
				return ErrValidation.withMessage("invalid genre id")
			}
			genres = append(genres, gid)
		}
		patch.Genres = &genres
	}
	if in.Price != nil {
		if *in.Price < 0 || math.IsNaN(*in.Price) {
			return ErrValidation.withMessage("price must not be negative")
		}
		patch.Price = in.Price
	}

	if err := s.store.UpdateBook(ctx, id, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

// DeleteBook lets only the book's creator delete it. Being an admin does not
// override ownership.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID, requesterID string) error {
	book, err := s.findBook(ctx, bookID)
	if err != nil {
		return err
	}
	requester, err := parseID(requesterID)
	if err != nil {
		return ErrUserNotFound
	}
	if _, err := s.store.FindUser(ctx, store.ByID(requester)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if book.CreatedBy != requester {
		return ErrNotCreator
	}
	if err := s.store.DeleteBook(ctx, book.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}
	if s.covers != nil && isStoredCover(book.CoverImage) {
		if err := s.covers.Delete(ctx, book.CoverImage); err != nil {
			slog.WarnContext(ctx, "delete cover", "book", book.ID.Hex(), "key", book.CoverImage, "error", err)
		}
	}
	return nil
}

// resolveBooks attaches author and genre names with one query per collection.
func resolveBooks(ctx context.Context, st store.Store, books []models.Book) ([]models.BookView, error) {
	views := make([]models.BookView, 0, len(books))
	if len(books) == 0 {
		return views, nil
	}

	var authorIDs, genreIDs []primitive.ObjectID
	for _, b := range books {
		authorIDs = append(authorIDs, b.Author)
		genreIDs = append(genreIDs, b.Genres...)
	}
	authors, err := st.FindAuthors(ctx, store.Filter{}.In("_id", store.IDs(authorIDs)...))
	if err != nil {
		return nil, fmt.Errorf("resolve authors: %w", err)
	}
	authorNames := make(map[primitive.ObjectID]string, len(authors))
	for _, a := range authors {
		authorNames[a.ID] = a.Name
	}
	genreNames := map[primitive.ObjectID]string{}
	if len(genreIDs) > 0 {
		genres, err := st.FindGenres(ctx, store.Filter{}.In("_id", store.IDs(genreIDs)...))
		if err != nil {
			return nil, fmt.Errorf("resolve genres: %w", err)
		}
		for _, g := range genres {
			genreNames[g.ID] = g.Name
		}
	}

	for _, b := range books {
		v := models.BookView{
			ID:            b.ID,
			Title:         b.Title,
			Description:   b.Description,
			Genres:        []models.Ref{},
			Price:         b.Price,
			PublishedYear: b.PublishedYear,
			CoverImage:    b.CoverImage,
			CreatedBy:     b.CreatedBy,
			CreatedAt:     b.CreatedAt,
			UpdatedAt:     b.UpdatedAt,
		}
		if name, ok := authorNames[b.Author]; ok {
			v.Author = &models.Ref{ID: b.Author, Name: name}
		}
		for _, g := range b.Genres {
			if name, ok := genreNames[g]; ok {
				v.Genres = append(v.Genres, models.Ref{ID: g, Name: name})
			}
		}
		views = append(views, v)
	}
	return views, nil
}
