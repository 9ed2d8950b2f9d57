package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/offseason/shoe-cleaning-email/internal/orders"
	"github.com/offseason/shoe-cleaning-email/internal/redisx"
)

type StatusReader interface {
	GetOrderStatus(ctx context.Context, orderReference string) (orders.Status, error)
}

type StatusHandler struct {
	Orders StatusReader
	Redis  *redis.Client // optional read-through cache
	Now    func() time.Time
}

type statusData struct {
	OrderReference string `json:"orderReference"`
	Status         string `json:"status"`
	Cached         bool   `json:"cached"`
}

func (h *StatusHandler) Register(r chi.Router) {
	r.Get("/orders/{reference}/status", h.getStatus)
}

func (h *StatusHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) try the cache
	if h.Redis != nil {
		cs, ok, err := redisx.GetStatus(ctx, h.Redis, ref)
		if err != nil {
			slog.Warn("status cache read failed", "order_reference", ref, "error", err)
		}
		if ok {
			writeJSON(w, r, http.StatusOK, ApiResponse{
				Success: true,
				Message: "Order status",
				Data:    statusData{OrderReference: ref, Status: cs.Status, Cached: true},
			})
			return
		}
	}

	// 2) fall back to the store
	status, err := h.Orders.GetOrderStatus(ctx, ref)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeJSON(w, r, http.StatusNotFound, ApiResponse{Message: "Order not found", Error: err.Error()})
		return
	}
	if err != nil {
		slog.Error("order status lookup failed", "order_reference", ref, "error", err)
		writeJSON(w, r, http.StatusInternalServerError, ApiResponse{Message: "Failed to load order status", Error: err.Error()})
		return
	}

	if h.Redis != nil {
		if err := redisx.SetStatus(ctx, h.Redis, ref, string(status), h.now()); err != nil {
			slog.Warn("status cache write failed", "order_reference", ref, "error", err)
		}
	}
	writeJSON(w, r, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Order status",
		Data:    statusData{OrderReference: ref, Status: string(status)},
	})
}

func (h *StatusHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
