package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"stockservice/internal/platform/observability"
	"stockservice/internal/stock"
)

const dbErrorStr = "DB error"

// Handler is the synchronous CRUD surface over the stock service. All
// failures map to HTTP 400 with a short fixed body, matching the
// service's external contract.
type Handler struct {
	service *stock.Service
	logger  observability.Logger
}

func NewHandler(service *stock.Service, logger observability.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Router mounts the stock routes on a fresh mux.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /item/create/{price}", h.CreateItem)
	mux.HandleFunc("POST /batch_init/{n}/{starting_stock}/{item_price}", h.BatchInit)
	mux.HandleFunc("POST /add/{item_id}/{amount}", h.AddStock)
	mux.HandleFunc("POST /subtract/{item_id}/{amount}", h.SubtractStock)
	mux.HandleFunc("GET /health", h.HealthCheck)
	return mux
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	price, ok := h.intParam(w, r, "price")
	if !ok {
		return
	}

	itemID, err := h.service.Create(r.Context(), price)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"item_id": itemID})
}

func (h *Handler) BatchInit(w http.ResponseWriter, r *http.Request) {
	n, ok := h.intParam(w, r, "n")
	if !ok {
		return
	}
	startingStock, ok := h.intParam(w, r, "starting_stock")
	if !ok {
		return
	}
	itemPrice, ok := h.intParam(w, r, "item_price")
	if !ok {
		return
	}

	if err := h.service.BatchInit(r.Context(), int(n), startingStock, itemPrice); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Batch init for stock successful"})
}

func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("item_id")
	amount, ok := h.intParam(w, r, "amount")
	if !ok {
		return
	}

	newStock, err := h.service.Add(r.Context(), itemID, amount)
	if err != nil {
		h.writeItemError(w, itemID, err)
		return
	}
	fmt.Fprintf(w, "Item: %s stock updated to: %d", itemID, newStock)
}

func (h *Handler) SubtractStock(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("item_id")
	amount, ok := h.intParam(w, r, "amount")
	if !ok {
		return
	}

	newStock, err := h.service.Subtract(r.Context(), itemID, amount)
	if err != nil {
		h.writeItemError(w, itemID, err)
		return
	}
	fmt.Fprintf(w, "Item: %s stock updated to: %d", itemID, newStock)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) intParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid %s", name), http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

// writeItemError maps mutation failures for a known item id onto the
// fixed per-item messages of the external contract.
func (h *Handler) writeItemError(w http.ResponseWriter, itemID string, err error) {
	switch {
	case errors.Is(err, stock.ErrNotFound):
		http.Error(w, fmt.Sprintf("Item: %s not found!", itemID), http.StatusBadRequest)
	case errors.Is(err, stock.ErrNegativeStock):
		http.Error(w, fmt.Sprintf("Item: %s stock cannot get reduced below zero!", itemID), http.StatusBadRequest)
	default:
		h.writeError(w, err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.logger.Error("❌ Store operation failed", zap.Error(err))
	http.Error(w, dbErrorStr, http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
