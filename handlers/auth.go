package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/service"
)

type AuthHandler struct {
	Auth *service.AuthService
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) error {
	var req service.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	_, token, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusCreated, TokenResponse{Message: "Registered", Token: token})
	return nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	token, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, TokenResponse{Message: "Login success", Token: token})
	return nil
}

// Me returns the caller's profile; admins also get the books they created.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	profile, err := h.Auth.Profile(r.Context(), userID)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, profile)
	return nil
}
