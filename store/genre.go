package store

import (
	"context"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertGenre(ctx context.Context, genre *models.Genre) (primitive.ObjectID, error) {
	return insertOne(ctx, db.Genres(), genre)
}

func (db *DB) FindGenre(ctx context.Context, f Filter) (*models.Genre, error) {
	return findOne[models.Genre](ctx, db.Genres(), f)
}

func (db *DB) FindGenres(ctx context.Context, f Filter) ([]models.Genre, error) {
	return findMany[models.Genre](ctx, db.Genres(), f, options.Find().SetSort(bson.M{"_id": 1}))
}

func (db *DB) RenameGenre(ctx context.Context, id primitive.ObjectID, name string) error {
	return updateByID(ctx, db.Genres(), id, bson.M{"name": name})
}

func (db *DB) DeleteGenre(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, db.Genres(), id)
}
