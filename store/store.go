package store

import (
	"context"
	"errors"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches a lookup, update or delete.
	ErrNotFound = errors.New("store: document not found")
	// ErrDuplicate is returned when an insert or update violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrInvalidPage is returned for a negative skip or limit.
	ErrInvalidPage = errors.New("store: invalid page")
)

// Page bounds a multi-document read. A zero Limit means no limit.
type Page struct {
	Skip  int64
	Limit int64
}

func (p Page) valid() bool { return p.Skip >= 0 && p.Limit >= 0 }

// Store is the document store the services run against. DB talks to MongoDB;
// Memory keeps everything in process.
type Store interface {
	EnsureIndexes(ctx context.Context) error

	InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindUser(ctx context.Context, f Filter) (*models.User, error)
	SetUserRole(ctx context.Context, id primitive.ObjectID, role models.Role) error

	InsertAuthor(ctx context.Context, author *models.Author) (primitive.ObjectID, error)
	FindAuthor(ctx context.Context, f Filter) (*models.Author, error)
	FindAuthors(ctx context.Context, f Filter) ([]models.Author, error)
	UpdateAuthor(ctx context.Context, id primitive.ObjectID, patch models.AuthorPatch) error
	DeleteAuthor(ctx context.Context, id primitive.ObjectID) error

	InsertGenre(ctx context.Context, genre *models.Genre) (primitive.ObjectID, error)
	FindGenre(ctx context.Context, f Filter) (*models.Genre, error)
	FindGenres(ctx context.Context, f Filter) ([]models.Genre, error)
	RenameGenre(ctx context.Context, id primitive.ObjectID, name string) error
	DeleteGenre(ctx context.Context, id primitive.ObjectID) error

	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	FindBook(ctx context.Context, f Filter) (*models.Book, error)
	FindBooks(ctx context.Context, f Filter, page Page) ([]models.Book, error)
	CountBooks(ctx context.Context, f Filter) (int64, error)
	UpdateBook(ctx context.Context, id primitive.ObjectID, patch models.BookPatch) error
	DeleteBook(ctx context.Context, id primitive.ObjectID) error

	InsertOrder(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	// FindOrders returns matching orders newest first.
	FindOrders(ctx context.Context, f Filter) ([]models.Order, error)
}

// IDs converts object ids into predicate values for Filter.In.
func IDs(ids []primitive.ObjectID) []any {
	out := make([]any, len(ids))
	for i := range ids {
		out[i] = ids[i]
	}
	return out
}
