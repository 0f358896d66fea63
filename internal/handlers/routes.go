package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/logger"
)

// CORS: preflight отвечает сразу, до любых обращений к базе
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Router собирает все эндпоинты под /api
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.RequestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		r.HandleFunc("/admin", h.AdminHandler)
		r.HandleFunc("/catalog", h.CatalogHandler)
		r.HandleFunc("/owner-dashboard", h.wrap(methodOnly(http.MethodGet, h.ownerDashboard)))
		r.HandleFunc("/auth", h.wrap(methodOnly(http.MethodPost, h.ownerLogin)))
		r.HandleFunc("/auth-admin", h.wrap(methodOnly(http.MethodPost, h.adminLogin)))
		r.HandleFunc("/send-brief", h.wrap(methodOnly(http.MethodPost, h.sendBrief)))
		r.HandleFunc("/upload-image", h.wrap(methodOnly(http.MethodPost, h.uploadImage)))
		r.HandleFunc("/check-secrets", h.wrap(methodOnly(http.MethodGet, h.checkSecrets)))
	})
	return r
}
