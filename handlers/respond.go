package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/service"
)

// appHandler returns its failure instead of writing it; handle turns the
// error into a JSON response.
type appHandler func(w http.ResponseWriter, r *http.Request) error

func handle(h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			middleware.WriteError(w, r, err)
		}
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return service.ErrInvalidJSON
	}
	return nil
}

func currentUser(r *http.Request) (string, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return "", service.ErrMissingToken
	}
	return id, nil
}
