package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var _ Store = (*DB)(nil)

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	slog.Info("connected to mongodb", "db", dbName)
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Authors() *mongo.Collection {
	return db.Database.Collection("authors")
}

func (db *DB) Genres() *mongo.Collection {
	return db.Database.Collection("genres")
}

func (db *DB) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

func (db *DB) Orders() *mongo.Collection {
	return db.Database.Collection("orders")
}

// EnsureIndexes creates the unique indexes behind email and genre name uniqueness.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := []struct {
		coll  *mongo.Collection
		field string
	}{
		{db.Users(), "email"},
		{db.Genres(), "name"},
	}
	for _, u := range unique {
		idx := mongo.IndexModel{
			Keys:    bson.D{{Key: u.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := u.coll.Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("index %s.%s: %w", u.coll.Name(), u.field, err)
		}
	}
	return nil
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc any) (primitive.ObjectID, error) {
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, mapErr(err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id %T", res.InsertedID)
	}
	return id, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, f Filter) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, f.BSON()).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return &doc, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, f Filter, opts *options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, f.BSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// updateByID applies a $set patch and stamps updatedAt.
func updateByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
