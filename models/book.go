package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description" json:"description"`
	Author        primitive.ObjectID   `bson:"author" json:"author"`
	Genres        []primitive.ObjectID `bson:"genres" json:"genres"`
	Price         float64              `bson:"price" json:"price"`
	PublishedYear int                  `bson:"publishedYear,omitempty" json:"publishedYear,omitempty"`
	CoverImage    string               `bson:"coverImage,omitempty" json:"coverImage,omitempty"` // S3 object key or external URL
	CreatedBy     primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// BookPatch holds the fields of an update; nil fields are left untouched.
type BookPatch struct {
	Title         *string
	Description   *string
	Author        *primitive.ObjectID
	Genres        *[]primitive.ObjectID
	Price         *float64
	PublishedYear *int
	CoverImage    *string
}

// Ref is a referenced document resolved to its display name.
type Ref struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// BookView is a Book with its author and genres resolved. Author is nil when
// the referenced author has been deleted.
type BookView struct {
	ID            primitive.ObjectID `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Author        *Ref               `json:"author"`
	Genres        []Ref              `json:"genres"`
	Price         float64            `json:"price"`
	PublishedYear int                `json:"publishedYear,omitempty"`
	CoverImage    string             `json:"coverImage,omitempty"`
	CreatedBy     primitive.ObjectID `json:"createdBy"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}
