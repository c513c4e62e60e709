package store

import (
	"context"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	return insertOne(ctx, db.Books(), book)
}

func (db *DB) FindBook(ctx context.Context, f Filter) (*models.Book, error) {
	return findOne[models.Book](ctx, db.Books(), f)
}

// FindBooks returns matching books in insertion order so pages are stable.
func (db *DB) FindBooks(ctx context.Context, f Filter, page Page) ([]models.Book, error) {
	if !page.valid() {
		return nil, ErrInvalidPage
	}
	opts := options.Find().SetSort(bson.M{"_id": 1})
	if page.Skip > 0 {
		opts.SetSkip(page.Skip)
	}
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}
	return findMany[models.Book](ctx, db.Books(), f, opts)
}

func (db *DB) CountBooks(ctx context.Context, f Filter) (int64, error) {
	return db.Books().CountDocuments(ctx, f.BSON())
}

func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, patch models.BookPatch) error {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Author != nil {
		set["author"] = *patch.Author
	}
	if patch.Genres != nil {
		set["genres"] = *patch.Genres
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.PublishedYear != nil {
		set["publishedYear"] = *patch.PublishedYear
	}
	if patch.CoverImage != nil {
		set["coverImage"] = *patch.CoverImage
	}
	return updateByID(ctx, db.Books(), id, set)
}

func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, db.Books(), id)
}
