package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/service"
	"github.com/kevinaaaquil/bookstore/backend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testServer struct {
	t      *testing.T
	store  *store.Memory
	auth   *service.AuthService
	covers *memCovers
	router http.Handler
}

func newTestServer(t *testing.T, withCovers bool) *testServer {
	t.Helper()
	st := store.NewMemory()
	tokens := service.NewTokenService("test-secret", time.Hour)
	covers := &memCovers{objects: map[string]string{}}
	var cs service.CoverStore
	if withCovers {
		cs = covers
	}
	auth := service.NewAuthService(st, tokens)
	api := &API{
		Guard:          service.NewGuard(tokens, st),
		Auth:           auth,
		Catalog:        service.NewCatalogService(st, cs),
		Orders:         service.NewOrderService(st),
		Metrics:        middleware.NewMetrics(),
		MaxUploadBytes: 1 << 20,
	}
	return &testServer{t: t, store: st, auth: auth, covers: covers, router: api.Router()}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// register creates a user through the API and returns its token and id.
func (s *testServer) register(email string) (string, string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/register", "", map[string]string{"name": "Reader", "email": email, "password": "pw"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp TokenResponse
	decode(s.t, rec, &resp)
	user, err := s.store.FindUser(context.Background(), store.Filter{}.Eq("email", email))
	require.NoError(s.t, err)
	return resp.Token, user.ID.Hex()
}

func (s *testServer) admin(email string) (string, string) {
	s.t.Helper()
	token, id := s.register(email)
	require.NoError(s.t, s.auth.Promote(context.Background(), id))
	return token, id
}

func (s *testServer) createAuthor(token, name string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/authors", token, map[string]string{"name": name})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp AuthorResponse
	decode(s.t, rec, &resp)
	return resp.Author.ID.Hex()
}

func (s *testServer) createGenre(token, name string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/genres", token, map[string]string{"name": name})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp GenreResponse
	decode(s.t, rec, &resp)
	return resp.Genre.ID.Hex()
}

func (s *testServer) createBook(token, title, author string, price float64, genres ...string) string {
	s.t.Helper()
	if genres == nil {
		genres = []string{}
	}
	rec := s.do(http.MethodPost, "/api/books", token, map[string]any{
		"title": title, "author": author, "genres": genres, "price": price, "publishedYear": 1949,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp BookResponse
	decode(s.t, rec, &resp)
	return resp.Book.ID.Hex()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m map[string]any
	decode(t, rec, &m)
	msg, _ := m["message"].(string)
	return msg
}

type memCovers struct {
	mu      sync.Mutex
	objects map[string]string
}

func (c *memCovers) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	c.objects[key] = contentType + ":" + string(b)
	return nil
}

func (c *memCovers) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
	return nil
}

func (c *memCovers) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example.com/" + key, nil
}

func TestBookstoreScenario(t *testing.T) {
	s := newTestServer(t, false)
	_, userID := s.register("reader@example.com")
	adminToken, _ := s.admin("admin@example.com")

	rec := s.do(http.MethodPut, "/api/users/"+userID+"/promote", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	author := s.createAuthor(adminToken, "George Orwell")
	genre := s.createGenre(adminToken, "Dystopian")
	s.createBook(adminToken, "1984", author, 9.99, genre)

	rec = s.do(http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
		Pages int   `json:"pages"`
		Books []struct {
			Title  string       `json:"title"`
			Price  float64      `json:"price"`
			Author *models.Ref  `json:"author"`
			Genres []models.Ref `json:"genres"`
		} `json:"books"`
	}
	decode(t, rec, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Pages)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "1984", page.Books[0].Title)
	assert.Equal(t, 9.99, page.Books[0].Price)
	require.NotNil(t, page.Books[0].Author)
	assert.Equal(t, "George Orwell", page.Books[0].Author.Name)
	require.Len(t, page.Books[0].Genres, 1)
	assert.Equal(t, "Dystopian", page.Books[0].Genres[0].Name)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t, false)
	token, id := s.register("ada@example.com")

	rec := s.do(http.MethodPost, "/api/register", "", map[string]string{"name": "Ada", "email": "ADA@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email already exists", messageOf(t, rec))

	rec = s.do(http.MethodPost, "/api/register", "", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid json", messageOf(t, rec))

	rec = s.do(http.MethodPost, "/api/login", "", LoginRequest{Email: "ada@example.com", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login TokenResponse
	decode(t, rec, &login)
	assert.NotEmpty(t, login.Token)

	unknown := s.do(http.MethodPost, "/api/login", "", LoginRequest{Email: "nobody@example.com", Password: "pw"})
	wrong := s.do(http.MethodPost, "/api/login", "", LoginRequest{Email: "ada@example.com", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())

	rec = s.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		User         map[string]any   `json:"user"`
		CreatedBooks []map[string]any `json:"createdBooks"`
	}
	decode(t, rec, &profile)
	assert.Equal(t, "ada@example.com", profile.User["email"])
	assert.Equal(t, id, profile.User["id"])
	assert.NotContains(t, profile.User, "password")
	assert.Nil(t, profile.CreatedBooks)

	rec = s.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodGet, "/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t, false)
	userToken, _ := s.register("reader@example.com")
	adminToken, adminID := s.admin("admin@example.com")

	rec := s.do(http.MethodPost, "/api/authors", userToken, map[string]string{"name": "Orwell"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodPost, "/api/authors", "", map[string]string{"name": "Orwell"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPut, "/api/users/"+adminID+"/promote", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user is already an admin", messageOf(t, rec))
	rec = s.do(http.MethodPut, "/api/users/"+primitive.NewObjectID().Hex()+"/promote", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorAndGenreRoutes(t *testing.T) {
	s := newTestServer(t, false)
	token, _ := s.admin("admin@example.com")
	author := s.createAuthor(token, "Orwell")
	genre := s.createGenre(token, "Dystopian")

	rec := s.do(http.MethodGet, "/api/authors/"+author, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/authors/nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPut, "/api/authors/"+author, token, map[string]string{"bio": "novelist"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated AuthorResponse
	decode(t, rec, &updated)
	assert.Equal(t, "novelist", updated.Author.Bio)
	rec = s.do(http.MethodDelete, "/api/authors/"+author, token, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = s.do(http.MethodGet, "/api/authors/"+author, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/genres", token, map[string]string{"name": "Dystopian"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(http.MethodGet, "/api/genres", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var genres []models.Genre
	decode(t, rec, &genres)
	assert.Len(t, genres, 1)
	rec = s.do(http.MethodPut, "/api/genres/"+genre, token, map[string]string{"name": "Dystopia"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodDelete, "/api/genres/"+genre, token, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = s.do(http.MethodGet, "/api/genres/"+genre, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookRoutes(t *testing.T) {
	s := newTestServer(t, false)
	token, _ := s.admin("admin@example.com")
	otherAdmin, _ := s.admin("other@example.com")
	author := s.createAuthor(token, "Orwell")
	g1 := s.createGenre(token, "Dystopian")
	g2 := s.createGenre(token, "Classic")

	cases := map[string]struct {
		body string
		code int
	}{
		"invalid json":      {`{"title":`, http.StatusBadRequest},
		"missing fields":    {`{"title":"1984"}`, http.StatusBadRequest},
		"unknown author":    {`{"title":"1984","author":"` + primitive.NewObjectID().Hex() + `","genres":[],"price":1,"publishedYear":1949}`, http.StatusNotFound},
		"genres not a list": {`{"title":"1984","author":"` + author + `","genres":"` + g1 + `","price":1,"publishedYear":1949}`, http.StatusBadRequest},
		"unknown genre":     {`{"title":"1984","author":"` + author + `","genres":["` + g1 + `","` + primitive.NewObjectID().Hex() + `"],"price":1,"publishedYear":1949}`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/books", token, tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}

	a := s.createBook(token, "1984", author, 9.99, g1)
	s.createBook(token, "Animal Farm", author, 14, g2)
	s.createBook(token, "Homage to Catalonia", author, 30)

	list := func(query string) (int64, []string) {
		rec := s.do(http.MethodGet, "/api/books?"+query, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page service.BookPage
		decode(t, rec, &page)
		titles := []string{}
		for _, b := range page.Books {
			titles = append(titles, b.Title)
		}
		return page.Total, titles
	}
	total, titles := list("minPrice=10&maxPrice=20")
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"Animal Farm"}, titles)
	_, titles = list("genres=" + g1 + "," + g2)
	assert.Equal(t, []string{"1984", "Animal Farm"}, titles)
	_, titles = list("genres=" + g2 + "&genres=" + g1)
	assert.Equal(t, []string{"1984", "Animal Farm"}, titles)
	_, titles = list("title=HOMAGE")
	assert.Equal(t, []string{"Homage to Catalonia"}, titles)
	total, titles = list("limit=2&page=2")
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Homage to Catalonia"}, titles)

	rec := s.do(http.MethodGet, "/api/books?minPrice=cheap", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/books/"+a, token, map[string]any{"price": 12.5})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Book updated", messageOf(t, rec))
	rec = s.do(http.MethodGet, "/api/books/"+a, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view models.BookView
	decode(t, rec, &view)
	assert.Equal(t, 12.5, view.Price)

	rec = s.do(http.MethodDelete, "/api/books/"+a, otherAdmin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, "/api/books/"+a, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/books/"+a, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderRoutes(t *testing.T) {
	s := newTestServer(t, false)
	adminToken, _ := s.admin("admin@example.com")
	buyer, _ := s.register("buyer@example.com")
	author := s.createAuthor(adminToken, "Orwell")
	b1 := s.createBook(adminToken, "1984", author, 10)
	b2 := s.createBook(adminToken, "Animal Farm", author, 5.5)

	rec := s.do(http.MethodGet, "/api/orders/my-orders", buyer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no orders yet", messageOf(t, rec))

	rec = s.do(http.MethodPost, "/api/orders", buyer, map[string]any{"bookIds": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPost, "/api/orders", buyer, map[string]any{"bookIds": []string{b1, primitive.NewObjectID().Hex()}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodPost, "/api/orders", "", map[string]any{"bookIds": []string{b1}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/orders", buyer, map[string]any{"bookIds": []string{b1, b2}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created OrderResponse
	decode(t, rec, &created)
	assert.Equal(t, 15.5, created.Order.TotalPrice)

	rec = s.do(http.MethodGet, "/api/orders/my-orders", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.OrderView
	decode(t, rec, &orders)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Books, 2)
}

func multipartCover(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="cover"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCoverRoutes(t *testing.T) {
	s := newTestServer(t, true)
	token, _ := s.admin("admin@example.com")
	author := s.createAuthor(token, "Orwell")
	book := s.createBook(token, "1984", author, 9.99)

	upload := func(filename, contentType string, content []byte) *httptest.ResponseRecorder {
		body, ct := multipartCover(t, filename, contentType, content)
		req := httptest.NewRequest(http.MethodPost, "/api/books/"+book+"/cover", body)
		req.Header.Set("Content-Type", ct)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	rec := s.do(http.MethodGet, "/api/books/"+book+"/cover", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = upload("doc.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32))
	rec = upload("cover.png", "", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp BookResponse
	decode(t, rec, &resp)
	key := resp.Book.CoverImage
	assert.True(t, strings.HasPrefix(key, "covers/"+book+"/"))
	assert.Contains(t, s.covers.objects, key)
	assert.True(t, strings.HasPrefix(s.covers.objects[key], "image/png:"))

	rec = s.do(http.MethodGet, "/api/books/"+book+"/cover", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://bucket.example.com/"+key, rec.Header().Get("Location"))

	rec = upload("big.png", "image/png", bytes.Repeat([]byte("x"), 2<<20))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoverUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t, false)
	token, _ := s.admin("admin@example.com")
	author := s.createAuthor(token, "Orwell")
	book := s.createBook(token, "1984", author, 9.99)

	body, ct := multipartCover(t, "cover.png", "image/png", []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/api/books/"+book+"/cover", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRootRoutes(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", messageOf(t, rec))

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bookstore_http_requests_total")

	rec = s.do(http.MethodGet, "/api/books", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
