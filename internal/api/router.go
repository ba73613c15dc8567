package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/truerooha/zakazapp-back/internal/store"
)

// Handler serves the application REST API consumed by the web frontend.
type Handler struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewHandler(st store.Store, log *zap.Logger) *Handler {
	return &Handler{store: st, log: log, now: time.Now}
}

// Router builds the chi router with all API routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.getCategories)
		r.Get("/dishes", h.getDishes)

		r.Get("/allowed-users", h.getAllowedUsers)
		r.Post("/allowed-users", h.addAllowedUser)

		r.Post("/orders", h.createOrder)
		r.Get("/orders/latest", h.getLatestOrder)
		r.Get("/orders/personal-today", h.getPersonalToday)
		r.Get("/orders/summary-today", h.getSummaryToday)
		r.Delete("/orders/{id}", h.deleteOrder)

		r.Get("/order-settings", h.getSettings)
		r.Put("/order-settings", h.putSettings)
	})

	return r
}
