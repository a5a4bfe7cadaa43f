package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-finance-orders/internal/auth"
	"github.com/ariefcatur/go-finance-orders/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type OrderService interface {
	Create(ctx context.Context, userID string, d orders.Draft) (*orders.Order, error)
	Update(ctx context.Context, userID, id string, p orders.Patch) (*orders.Order, error)
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, userID, id string) (*orders.Order, error)
	List(ctx context.Context, userID string) ([]orders.Order, error)
	PublicLookup(ctx context.Context, tracking string) (orders.TrackingView, bool, error)
}

type ProductStore interface {
	List(ctx context.Context, userID string) ([]orders.Product, error)
	Create(ctx context.Context, p *orders.Product) error
}

type OrdersHandler struct {
	Orders   OrderService
	Products ProductStore
}

// Required fields are checked by the workflow so the error text stays the same
// for every caller.
type CreateOrderReq struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity" validate:"gte=0"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone" validate:"max=32"`
	Address        string `json:"address"`
	Status         string `json:"status" validate:"omitempty,oneof=pending diproses dikirim selesai"`
	TrackingNumber string `json:"tracking_number" validate:"max=64"`
	Note           string `json:"note"`
	NotifyNote     string `json:"notify_note"`
}

type UpdateOrderReq struct {
	ProductID      *string `json:"product_id"`
	Quantity       *int    `json:"quantity" validate:"omitempty,gte=0"`
	CustomerName   *string `json:"customer_name"`
	CustomerPhone  *string `json:"customer_phone" validate:"omitempty,max=32"`
	Address        *string `json:"address"`
	Status         *string `json:"status" validate:"omitempty,oneof=pending diproses dikirim selesai"`
	TrackingNumber *string `json:"tracking_number" validate:"omitempty,max=64"`
	Note           *string `json:"note"`
	NotifyNote     string  `json:"notify_note"`
}

type CreateProductReq struct {
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"max=100"`
	Price    string `json:"price" validate:"required,numeric"`
	Stock    int    `json:"stock" validate:"gte=0"`
}

func (h *OrdersHandler) RegisterPublic(r chi.Router) {
	r.Get("/track/{tracking}", h.track)
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}", h.updateOrder)
	r.Delete("/orders/{id}", h.deleteOrder)
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := decodeValid(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.Orders.Create(r.Context(), auth.UserID(r.Context()), orders.Draft{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Address:        req.Address,
		Status:         orders.Status(req.Status),
		TrackingNumber: strings.TrimSpace(req.TrackingNumber),
		Note:           req.Note,
		NotifyNote:     req.NotifyNote,
	})
	if err != nil {
		writeWorkflowErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderReq
	if err := decodeValid(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	p := orders.Patch{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Address:        req.Address,
		TrackingNumber: req.TrackingNumber,
		Note:           req.Note,
		NotifyNote:     req.NotifyNote,
	}
	if req.Status != nil {
		st := orders.Status(*req.Status)
		p.Status = &st
	}

	o, err := h.Orders.Update(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), p)
	if err != nil {
		writeWorkflowErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Orders.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeWorkflowErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if errors.Is(err, orders.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("httpx: get order")
		writeErr(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Orders.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("httpx: list orders")
		writeErr(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// track: publik, tanpa auth.
func (h *OrdersHandler) track(w http.ResponseWriter, r *http.Request) {
	v, found, err := h.Orders.PublicLookup(r.Context(), chi.URLParam(r, "tracking"))
	if err != nil {
		log.Error().Err(err).Msg("httpx: tracking lookup")
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if !found {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Products.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("httpx: list products")
		writeErr(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductReq
	if err := decodeValid(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeErr(w, http.StatusBadRequest, "invalid field: Price")
		return
	}

	p := &orders.Product{
		UserID:   auth.UserID(r.Context()),
		Name:     strings.TrimSpace(req.Name),
		Category: req.Category,
		Price:    price,
		Stock:    req.Stock,
	}
	if err := h.Products.Create(r.Context(), p); err != nil {
		if errors.Is(err, orders.ErrDuplicateProduct) {
			writeErr(w, http.StatusConflict, err.Error())
			return
		}
		log.Error().Err(err).Msg("httpx: create product")
		writeErr(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
