package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/kevinaaaquil/bookstore/backend/store"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	store   *store.Memory
	tokens  *TokenService
	guard   *Guard
	auth    *AuthService
	catalog *CatalogService
	orders  *OrderService
	covers  *fakeCovers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	tokens := NewTokenService("test-secret", 7*24*time.Hour)
	covers := newFakeCovers()
	return &fixture{
		store:   st,
		tokens:  tokens,
		guard:   NewGuard(tokens, st),
		auth:    NewAuthService(st, tokens),
		catalog: NewCatalogService(st, covers),
		orders:  NewOrderService(st),
		covers:  covers,
	}
}

func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()
	id, _, err := f.auth.Register(context.Background(), RegisterInput{Name: "Reader", Email: email, Password: "pw"})
	require.NoError(t, err)
	return id
}

func (f *fixture) admin(t *testing.T, email string) string {
	t.Helper()
	id := f.register(t, email)
	require.NoError(t, f.auth.Promote(context.Background(), id))
	return id
}

func (f *fixture) author(t *testing.T, name string) string {
	t.Helper()
	a, err := f.catalog.CreateAuthor(context.Background(), AuthorInput{Name: &name})
	require.NoError(t, err)
	return a.ID.Hex()
}

func (f *fixture) genre(t *testing.T, name string) string {
	t.Helper()
	g, err := f.catalog.CreateGenre(context.Background(), GenreInput{Name: name})
	require.NoError(t, err)
	return g.ID.Hex()
}

func (f *fixture) book(t *testing.T, creator, title, author string, price float64, genres ...string) string {
	t.Helper()
	b, err := f.catalog.CreateBook(context.Background(), creator, bookInput(title, author, price, 2000, genres...))
	require.NoError(t, err)
	return b.ID.Hex()
}

func bookInput(title, author string, price float64, year int, genres ...string) BookInput {
	return BookInput{
		Title:         &title,
		Author:        &author,
		Genres:        NewIDList(genres...),
		Price:         &price,
		PublishedYear: &year,
	}
}

func missingID() string { return primitive.NewObjectID().Hex() }

func ptr[T any](v T) *T { return &v }

func decodeInput[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

type fakeCovers struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failPut    bool
	failDelete bool
}

func newFakeCovers() *fakeCovers {
	return &fakeCovers{objects: map[string][]byte{}}
}

func (c *fakeCovers) Put(_ context.Context, key string, body io.Reader, _ string) error {
	if c.failPut {
		return errors.New("s3 down")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[key] = buf.Bytes()
	return nil
}

func (c *fakeCovers) Delete(_ context.Context, key string) error {
	if c.failDelete {
		return errors.New("s3 down")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
	return nil
}

func (c *fakeCovers) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://covers.example.com/" + key + "?signed", nil
}

func (c *fakeCovers) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.objects[key]
	return ok
}

var _ CoverStore = (*fakeCovers)(nil)

func mustID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}
