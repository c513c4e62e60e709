package store

import (
	"context"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertAuthor(ctx context.Context, author *models.Author) (primitive.ObjectID, error) {
	return insertOne(ctx, db.Authors(), author)
}

func (db *DB) FindAuthor(ctx context.Context, f Filter) (*models.Author, error) {
	return findOne[models.Author](ctx, db.Authors(), f)
}

func (db *DB) FindAuthors(ctx context.Context, f Filter) ([]models.Author, error) {
	return findMany[models.Author](ctx, db.Authors(), f, options.Find().SetSort(bson.M{"_id": 1}))
}

func (db *DB) UpdateAuthor(ctx context.Context, id primitive.ObjectID, patch models.AuthorPatch) error {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Bio != nil {
		set["bio"] = *patch.Bio
	}
	if patch.Website != nil {
		set["website"] = *patch.Website
	}
	return updateByID(ctx, db.Authors(), id, set)
}

func (db *DB) DeleteAuthor(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, db.Authors(), id)
}
