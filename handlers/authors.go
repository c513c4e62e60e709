package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/service"
)

type AuthorsHandler struct {
	Catalog *service.CatalogService
}

type AuthorResponse struct {
	Message string         `json:"message"`
	Author  *models.Author `json:"author"`
}

func (h *AuthorsHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var req service.AuthorInput
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	author, err := h.Catalog.CreateAuthor(r.Context(), req)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusCreated, AuthorResponse{Message: "Author created", Author: author})
	return nil
}

func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) error {
	authors, err := h.Catalog.ListAuthors(r.Context())
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, authors)
	return nil
}

func (h *AuthorsHandler) Get(w http.ResponseWriter, r *http.Request) error {
	author, err := h.Catalog.GetAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, author)
	return nil
}

func (h *AuthorsHandler) Update(w http.ResponseWriter, r *http.Request) error {
	var req service.AuthorInput
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	author, err := h.Catalog.UpdateAuthor(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, AuthorResponse{Message: "Author updated", Author: author})
	return nil
}

func (h *AuthorsHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.Catalog.DeleteAuthor(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	middleware.WriteMessage(w, http.StatusAccepted, "Author deleted")
	return nil
}
