package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	ServiceName    string
	ServiceVersion string
	CORSOrigins    []string
	Timeout        time.Duration
}

var endpoints = []string{
	"POST /send-label",
	"POST /shipment-received",
	"POST /ready-to-ship",
	"GET /orders/{reference}/status",
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, recoverJSON)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorBody{Error: "Not Found", Message: "The requested endpoint was not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, errorBody{
			Error:   "Method Not Allowed",
			Message: fmt.Sprintf("Method %s is not allowed on %s", r.Method, r.URL.Path),
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]any{
			"message":   "Shoe Cleaning Email Service",
			"service":   cfg.ServiceName,
			"version":   cfg.ServiceVersion,
			"status":    "healthy",
			"endpoints": endpoints,
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// recoverJSON turns a handler panic into the 500 error body.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			slog.Error("panic in handler",
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"panic", fmt.Sprint(rvr),
				"stack", string(debug.Stack()),
			)
			writeJSON(w, r, http.StatusInternalServerError, errorBody{
				Error:   "Internal Server Error",
				Message: fmt.Sprint(rvr),
			})
		}()
		next.ServeHTTP(w, r)
	})
}
