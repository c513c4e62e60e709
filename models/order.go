package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order records the books bought by a user. TotalPrice is fixed when the
// order is placed and does not follow later price changes.
type Order struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID   `bson:"user" json:"user"`
	Books       []primitive.ObjectID `bson:"books" json:"books"`
	TotalPrice  float64              `bson:"totalPrice" json:"totalPrice"`
	PurchasedAt time.Time            `bson:"purchasedAt" json:"purchasedAt"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type OrderBook struct {
	ID         primitive.ObjectID `json:"id"`
	Title      string             `json:"title"`
	Price      float64            `json:"price"`
	CoverImage string             `json:"coverImage,omitempty"`
}

type OrderView struct {
	ID          primitive.ObjectID `json:"id"`
	User        primitive.ObjectID `json:"user"`
	Books       []OrderBook        `json:"books"`
	TotalPrice  float64            `json:"totalPrice"`
	PurchasedAt time.Time          `json:"purchasedAt"`
	CreatedAt   time.Time          `json:"createdAt"`
}
