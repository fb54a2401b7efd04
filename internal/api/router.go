package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/orderlist/internal/itemservice"
	"github.com/starford/orderlist/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// store, if non-nil, receives every generated document.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *itemservice.Service, icons *IconHandler, store storage.Provider, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Ledger.
	r.Get("/items", h.ListItems)
	r.Post("/items", h.AddItem)
	r.Get("/items/{id}", h.GetItem)
	r.Delete("/items/{id}", h.RemoveItem)

	// Notification slot.
	r.Get("/notification", h.GetNotification)
	r.Delete("/notification", h.AckNotification)

	// Icon catalog.
	r.Get("/icons", icons.ListIcons)
	r.Get("/icons/{id}.png", icons.Preview)

	// Documents.
	r.Post("/export", h.Export)
	r.Get("/exports", h.ListExports)
	r.Get("/exports/{name}", h.GetExport)
	r.Delete("/exports/{name}", h.DeleteExport)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
