package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/service"
)

type BooksHandler struct {
	Catalog  *service.CatalogService
	MaxBytes int64 // cover upload limit
}

type BookResponse struct {
	Message string       `json:"message"`
	Book    *models.Book `json:"book"`
}

// List supports title, author, genres, publishedYear, minPrice, maxPrice,
// page and limit query parameters.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) error {
	q, err := parseBookQuery(r.URL.Query())
	if err != nil {
		return err
	}
	page, err := h.Catalog.ListBooks(r.Context(), q)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, page)
	return nil
}

func parseBookQuery(v url.Values) (service.BookQuery, error) {
	q := service.BookQuery{
		Title:  v.Get("title"),
		Author: v.Get("author"),
		Page:   atoiOrZero(v.Get("page")),
		Limit:  atoiOrZero(v.Get("limit")),
	}
	for _, raw := range v["genres"] {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				q.Genres = append(q.Genres, g)
			}
		}
	}
	if s := strings.TrimSpace(v.Get("publishedYear")); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return q, service.Invalid("publishedYear must be an integer")
		}
		q.PublishedYear = &year
	}
	var err error
	if q.MinPrice, err = parsePrice(v, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parsePrice(v, "maxPrice"); err != nil {
		return q, err
	}
	return q, nil
}

func parsePrice(v url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, service.Invalid(key + " must be a number")
	}
	return &f, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) error {
	book, err := h.Catalog.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, book)
	return nil
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	var req service.BookInput
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	book, err := h.Catalog.CreateBook(r.Context(), userID, req)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusCreated, BookResponse{Message: "Book created", Book: book})
	return nil
}

// Update answers 201 with a message only; existing clients expect it.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) error {
	var req service.BookInput
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.Catalog.UpdateBook(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		return err
	}
	middleware.WriteMessage(w, http.StatusCreated, "Book updated")
	return nil
}

// Delete is open to any authenticated user but only the creator succeeds.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteBook(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		return err
	}
	middleware.WriteMessage(w, http.StatusOK, "Book deleted")
	return nil
}

// UploadCover accepts a multipart form with the image in the "cover" field.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) error {
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Invalid(fmt.Sprintf("cover must be smaller than %d bytes", h.MaxBytes))
		}
		return service.Invalid("failed to parse multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("cover")
	if err != nil {
		return service.Invalid("missing cover file")
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mt
	}
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(file, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind cover: %w", err)
		}
	}

	book, err := h.Catalog.UploadCover(r.Context(), chi.URLParam(r, "id"), header.Filename, contentType, file)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, BookResponse{Message: "Cover uploaded", Book: book})
	return nil
}

// Cover redirects to a short-lived URL for the book's cover image.
func (h *BooksHandler) Cover(w http.ResponseWriter, r *http.Request) error {
	location, err := h.Catalog.CoverURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	http.Redirect(w, r, location, http.StatusFound)
	return nil
}
