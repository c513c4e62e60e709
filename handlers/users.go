package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/service"
)

type UsersHandler struct {
	Auth *service.AuthService
}

// Promote makes the user an admin. Only admins can call.
func (h *UsersHandler) Promote(w http.ResponseWriter, r *http.Request) error {
	if err := h.Auth.Promote(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	middleware.WriteMessage(w, http.StatusOK, "User promoted to admin")
	return nil
}
