package store

import (
	"context"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertOrder(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	return insertOne(ctx, db.Orders(), order)
}

func (db *DB) FindOrders(ctx context.Context, f Filter) ([]models.Order, error) {
	return findMany[models.Order](ctx, db.Orders(), f, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
}
