package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/kevinaaaquil/bookstore/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store. It mirrors the MongoDB behaviour the
// services rely on: generated ids, unique email and genre name, and
// ErrNotFound on misses.
type Memory struct {
	mu      sync.RWMutex
	users   []models.User
	authors []models.Author
	genres  []models.Genre
	books   []models.Book
	orders  []models.Order
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) EnsureIndexes(context.Context) error { return nil }

func (m *Memory) InsertUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Email == user.Email {
			return primitive.NilObjectID, ErrDuplicate
		}
	}
	u := *user
	u.ID = newID(u.ID)
	m.users = append(m.users, u)
	return u.ID, nil
}

func (m *Memory) FindUser(_ context.Context, f Filter) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return first(m.users, f, userDoc)
}

func (m *Memory) SetUserRole(_ context.Context, id primitive.ObjectID, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := byID(m.users, id, func(u *models.User) primitive.ObjectID { return u.ID })
	if u == nil {
		return ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) InsertAuthor(_ context.Context, author *models.Author) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := *author
	a.ID = newID(a.ID)
	m.authors = append(m.authors, a)
	return a.ID, nil
}

func (m *Memory) FindAuthor(_ context.Context, f Filter) (*models.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return first(m.authors, f, authorDoc)
}

func (m *Memory) FindAuthors(_ context.Context, f Filter) ([]models.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return all(m.authors, f, authorDoc), nil
}

func (m *Memory) UpdateAuthor(_ context.Context, id primitive.ObjectID, patch models.AuthorPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := byID(m.authors, id, func(a *models.Author) primitive.ObjectID { return a.ID })
	if a == nil {
		return ErrNotFound
	}
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Bio != nil {
		a.Bio = *patch.Bio
	}
	if patch.Website != nil {
		a.Website = *patch.Website
	}
	a.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) DeleteAuthor(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ok bool
	m.authors, ok = remove(m.authors, id, func(a *models.Author) primitive.ObjectID { return a.ID })
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) InsertGenre(_ context.Context, genre *models.Genre) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.genreNameTaken(genre.Name, primitive.NilObjectID) {
		return primitive.NilObjectID, ErrDuplicate
	}
	g := *genre
	g.ID = newID(g.ID)
	m.genres = append(m.genres, g)
	return g.ID, nil
}

func (m *Memory) FindGenre(_ context.Context, f Filter) (*models.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return first(m.genres, f, genreDoc)
}

func (m *Memory) FindGenres(_ context.Context, f Filter) ([]models.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return all(m.genres, f, genreDoc), nil
}

func (m *Memory) RenameGenre(_ context.Context, id primitive.ObjectID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := byID(m.genres, id, func(g *models.Genre) primitive.ObjectID { return g.ID })
	if g == nil {
		return ErrNotFound
	}
	if m.genreNameTaken(name, id) {
		return ErrDuplicate
	}
	g.Name = name
	g.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) DeleteGenre(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ok bool
	m.genres, ok = remove(m.genres, id, func(g *models.Genre) primitive.ObjectID { return g.ID })
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) genreNameTaken(name string, except primitive.ObjectID) bool {
	for i := range m.genres {
		if m.genres[i].Name == name && m.genres[i].ID != except {
			return true
		}
	}
	return false
}

func (m *Memory) InsertBook(_ context.Context, book *models.Book) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := cloneBook(*book)
	b.ID = newID(b.ID)
	m.books = append(m.books, b)
	return b.ID, nil
}

func (m *Memory) FindBook(_ context.Context, f Filter) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, err := first(m.books, f, bookDoc)
	if err != nil {
		return nil, err
	}
	c := cloneBook(*b)
	return &c, nil
}

func (m *Memory) FindBooks(_ context.Context, f Filter, page Page) ([]models.Book, error) {
	if !page.valid() {
		return nil, ErrInvalidPage
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := all(m.books, f, bookDoc)
	if page.Skip >= int64(len(matched)) {
		return []models.Book{}, nil
	}
	matched = matched[page.Skip:]
	if page.Limit > 0 && page.Limit < int64(len(matched)) {
		matched = matched[:page.Limit]
	}
	for i := range matched {
		matched[i] = cloneBook(matched[i])
	}
	return matched, nil
}

func (m *Memory) CountBooks(_ context.Context, f Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(all(m.books, f, bookDoc))), nil
}

func (m *Memory) UpdateBook(_ context.Context, id primitive.ObjectID, patch models.BookPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := byID(m.books, id, func(b *models.Book) primitive.ObjectID { return b.ID })
	if b == nil {
		return ErrNotFound
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.Genres != nil {
		b.Genres = slices.Clone(*patch.Genres)
	}
	if patch.Price != nil {
		b.Price = *patch.Price
	}
	if patch.PublishedYear != nil {
		b.PublishedYear = *patch.PublishedYear
	}
	if patch.CoverImage != nil {
		b.CoverImage = *patch.CoverImage
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) DeleteBook(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ok bool
	m.books, ok = remove(m.books, id, func(b *models.Book) primitive.ObjectID { return b.ID })
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) InsertOrder(_ context.Context, order *models.Order) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := *order
	o.Books = slices.Clone(o.Books)
	o.ID = newID(o.ID)
	m.orders = append(m.orders, o)
	return o.ID, nil
}

func (m *Memory) FindOrders(_ context.Context, f Filter) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := all(m.orders, f, orderDoc)
	// Reverse insertion order first so equal timestamps still come out newest first.
	slices.Reverse(matched)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	for i := range matched {
		matched[i].Books = slices.Clone(matched[i].Books)
	}
	return matched, nil
}

func newID(id primitive.ObjectID) primitive.ObjectID {
	if id.IsZero() {
		return primitive.NewObjectID()
	}
	return id
}

func first[T any](rows []T, f Filter, doc func(*T) Getter) (*T, error) {
	for i := range rows {
		if f.Match(doc(&rows[i])) {
			row := rows[i]
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func all[T any](rows []T, f Filter, doc func(*T) Getter) []T {
	out := []T{}
	for i := range rows {
		if f.Match(doc(&rows[i])) {
			out = append(out, rows[i])
		}
	}
	return out
}

func byID[T any](rows []T, id primitive.ObjectID, key func(*T) primitive.ObjectID) *T {
	for i := range rows {
		if key(&rows[i]) == id {
			return &rows[i]
		}
	}
	return nil
}

func remove[T any](rows []T, id primitive.ObjectID, key func(*T) primitive.ObjectID) ([]T, bool) {
	for i := range rows {
		if key(&rows[i]) == id {
			return slices.Delete(rows, i, i+1), true
		}
	}
	return rows, false
}

func cloneBook(b models.Book) models.Book {
	b.Genres = slices.Clone(b.Genres)
	return b
}

func userDoc(u *models.User) Getter {
	return func(field string) any {
		switch field {
		case "_id":
			return u.ID
		case "name":
			return u.Name
		case "email":
			return u.Email
		case "role":
			return u.Role
		}
		return nil
	}
}

func authorDoc(a *models.Author) Getter {
	return func(field string) any {
		switch field {
		case "_id":
			return a.ID
		case "name":
			return a.Name
		case "bio":
			return a.Bio
		case "website":
			return a.Website
		}
		return nil
	}
}

func genreDoc(g *models.Genre) Getter {
	return func(field string) any {
		switch field {
		case "_id":
			return g.ID
		case "name":
			return g.Name
		}
		return nil
	}
}

func bookDoc(b *models.Book) Getter {
	return func(field string) any {
		switch field {
		case "_id":
			return b.ID
		case "title":
			return b.Title
		case "description":
			return b.Description
		case "author":
			return b.Author
		case "genres":
			return b.Genres
		case "price":
			return b.Price
		case "publishedYear":
			return b.PublishedYear
		case "coverImage":
			return b.CoverImage
		case "createdBy":
			return b.CreatedBy
		}
		return nil
	}
}

func orderDoc(o *models.Order) Getter {
	return func(field string) any {
		switch field {
		case "_id":
			return o.ID
		case "user":
			return o.User
		case "books":
			return o.Books
		case "totalPrice":
			return o.TotalPrice
		}
		return nil
	}
}
