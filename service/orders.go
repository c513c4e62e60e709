package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderInput struct {
	BookIDs IDList `json:"bookIds"`
}

type OrderService struct {
	store store.Store
	now   func() time.Time
}

func NewOrderService(st store.Store) *OrderService {
	return &OrderService{store: st, now: time.Now}
}

// CreateOrder prices the order from the books' current prices. Every id must
// resolve to a distinct book or nothing is recorded.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in OrderInput) (*models.Order, error) {
	user, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	if !in.BookIDs.Valid() || len(in.BookIDs.Values) == 0 {
		return nil, ErrEmptyOrder
	}
	ids := make([]primitive.ObjectID, 0, len(in.BookIDs.Values))
	for _, ref := range in.BookIDs.Values {
		id, err := primitive.ObjectIDFromHex(ref)
		if err != nil {
			return nil, ErrBooksNotFound
		}
		ids = append(ids, id)
	}

	books, err := s.store.FindBooks(ctx, store.Filter{}.In("_id", store.IDs(ids)...), store.Page{})
	if err != nil {
		return nil, fmt.Errorf("lookup books: %w", err)
	}
	if len(books) != len(ids) {
		return nil, ErrBooksNotFound
	}
	var total float64
	for _, b := range books {
		total += b.Price
	}

	now := s.now()
	order := &models.Order{
		User:        user,
		Books:       ids,
		TotalPrice:  total,
		PurchasedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.store.InsertOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	order.ID = id
	return order, nil
}

// ListMyOrders returns the user's orders newest first. Having no orders is
// reported as ErrNoOrders rather than an empty list.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string) ([]models.OrderView, error) {
	user, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.FindOrders(ctx, store.Filter{}.Eq("user", user))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}

	var bookIDs []primitive.ObjectID
	for _, o := range orders {
		bookIDs = append(bookIDs, o.Books...)
	}
	books, err := s.store.FindBooks(ctx, store.Filter{}.In("_id", store.IDs(bookIDs)...), store.Page{})
	if err != nil {
		return nil, fmt.Errorf("resolve books: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		v := models.OrderView{
			ID:          o.ID,
			User:        o.User,
			Books:       []models.OrderBook{},
			TotalPrice:  o.TotalPrice,
			PurchasedAt: o.PurchasedAt,
			CreatedAt:   o.CreatedAt,
		}
		for _, id := range o.Books {
			if b, ok := byID[id]; ok {
				v.Books = append(v.Books, models.OrderBook{ID: b.ID, Title: b.Title, Price: b.Price, CoverImage: b.CoverImage})
			}
		}
		views = append(views, v)
	}
	return views, nil
}
