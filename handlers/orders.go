package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/models"
	"github.com/kevinaaaquil/bookstore/backend/service"
)

type OrdersHandler struct {
	Orders *service.OrderService
}

type OrderResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	var req service.OrderInput
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	order, err := h.Orders.CreateOrder(r.Context(), userID, req)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusCreated, OrderResponse{Message: "Order placed successfully", Order: order})
	return nil
}

func (h *OrdersHandler) Mine(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	orders, err := h.Orders.ListMyOrders(r.Context(), userID)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, orders)
	return nil
}
