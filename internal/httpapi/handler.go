package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/webshop/cart-service/internal/service"
)

type CartHandler struct {
	engine    *service.CartService
	projector *service.SummaryProjector
	timeout   time.Duration
}

func NewCartHandler(engine *service.CartService, projector *service.SummaryProjector, timeout time.Duration) *CartHandler {
	return &CartHandler{
		engine:    engine,
		projector: projector,
		timeout:   timeout,
	}
}

// Routes mirrors the public cart surface:
//
//	GET    /cart/user/{ownerID}
//	GET    /cart/summary/{ownerID}
//	POST   /cart/add
//	PUT    /cart/update?ownerId=&productId=&quantity=
//	DELETE /cart/remove?ownerId=&productId=
//	DELETE /cart/clear/{ownerID}
func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/cart/user/{ownerID}", h.GetCart)
	r.Get("/cart/summary/{ownerID}", h.GetSummary)
	r.Post("/cart/add", h.AddItem)
	r.Put("/cart/update", h.UpdateQuantity)
	r.Delete("/cart/remove", h.RemoveItem)
	r.Delete("/cart/clear/{ownerID}", h.ClearCart)
}

type AddItemRequestDTO struct {
	OwnerID     int64   `json:"owner_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	cart, err := h.engine.GetCart(ctx, ownerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	summary, err := h.projector.GetSummary(ctx, ownerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.OwnerID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_owner_id", "owner_id must be positive")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}
	if req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "invalid_unit_price", "unit_price must not be negative")
		return
	}

	cart, err := h.engine.AddItem(ctx, req.OwnerID, req.ProductID, req.ProductName, req.Quantity, req.UnitPrice)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID, ok := queryInt64(w, r, "ownerId")
	if !ok {
		return
	}
	productID, ok := queryInt64(w, r, "productId")
	if !ok {
		return
	}
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer")
		return
	}

	cart, err := h.engine.UpdateItemQuantity(ctx, ownerID, productID, quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID, ok := queryInt64(w, r, "ownerId")
	if !ok {
		return
	}
	productID, ok := queryInt64(w, r, "productId")
	if !ok {
		return
	}

	cart, err := h.engine.RemoveItem(ctx, ownerID, productID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.engine.ClearCart(ctx, ownerID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ownerIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	ownerID, err := strconv.ParseInt(chi.URLParam(r, "ownerID"), 10, 64)
	if err != nil || ownerID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_owner_id", "owner id must be a positive integer")
		return 0, false
	}
	return ownerID, true
}

func queryInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || v <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}
