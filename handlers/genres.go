package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/service"
)

type GenresHandler struct {
	Catalog *service.CatalogService
}

type GenreResponse struct {
	Message string        `json:"message"`
	Genre   *models.Genre `json:"genre"`
}

// Create answers 200 rather than 201; existing clients expect it.
func (h *GenresHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var req service.GenreInput
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	genre, err := h.Catalog.CreateGenre(r.Context(), req)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, GenreResponse{Message: "Genre created", Genre: genre})
	return nil
}

func (h *GenresHandler) List(w http.ResponseWriter, r *http.Request) error {
	genres, err := h.Catalog.ListGenres(r.Context())
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, genres)
	return nil
}

func (h *GenresHandler) Get(w http.ResponseWriter, r *http.Request) error {
	genre, err := h.Catalog.GetGenre(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, genre)
	return nil
}

func (h *GenresHandler) Update(w http.ResponseWriter, r *http.Request) error {
	var req service.GenreInput
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	genre, err := h.Catalog.UpdateGenre(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, GenreResponse{Message: "Genre updated", Genre: genre})
	return nil
}

func (h *GenresHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.Catalog.DeleteGenre(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	middleware.WriteMessage(w, http.StatusAccepted, "Genre deleted")
	return nil
}
