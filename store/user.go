package store

import (
	"context"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (db *DB) InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	return insertOne(ctx, db.Users(), user)
}

func (db *DB) FindUser(ctx context.Context, f Filter) (*models.User, error) {
	return findOne[models.User](ctx, db.Users(), f)
}

func (db *DB) SetUserRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	return updateByID(ctx, db.Users(), id, bson.M{"role": role})
}
