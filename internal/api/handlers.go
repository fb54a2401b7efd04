package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/orderlist/internal/checksum"
	"github.com/starford/orderlist/internal/export"
	"github.com/starford/orderlist/internal/itemservice"
	"github.com/starford/orderlist/internal/models"
	"github.com/starford/orderlist/internal/storage"
)

// Handler holds API route handlers.
type Handler struct {
	svc   *itemservice.Service
	store storage.Provider
}

// NewHandler creates a new Handler. store may be nil, in which case exports
// are only streamed to the client.
func NewHandler(svc *itemservice.Service, store storage.Provider) *Handler {
	return &Handler{svc: svc, store: store}
}

// ListItems handles GET /api/items.
//
//	@Summary		List ledger items in insertion order
//	@Tags			items
//	@Produce		json
//	@Success		200		{object}	ItemListResponse
//	@Security		BearerAuth
//	@Router			/items [get]
func (h *Handler) ListItems(w http.ResponseWriter, _ *http.Request) {
	items := h.svc.Items()
	writeJSON(w, http.StatusOK, ItemListResponse{Items: items, Total: len(items)})
}

// AddItem handles POST /api/items.
//
//	@Summary		Add an item to the ledger
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddItemRequest	true	"Item to add"
//	@Success		201		{object}	Item
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items [post]
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	item, err := h.svc.RequestAdd(r.Context(), models.Candidate{
		Name:     req.Name,
		Quantity: quantityOf(req.Quantity),
		IconID:   req.Icon,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// GetItem handles GET /api/items/{id}.
//
//	@Summary		Get one ledger item
//	@Tags			items
//	@Produce		json
//	@Param			id	path	string	true	"Item id"
//	@Success		200		{object}	Item
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id} [get]
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Item(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// RemoveItem handles DELETE /api/items/{id}.
//
//	@Summary		Remove an item from the ledger
//	@Tags			items
//	@Param			id	path	string	true	"Item id"
//	@Success		204		"Item removed"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id} [delete]
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.RequestRemove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetNotification handles GET /api/notification.
//
//	@Summary		Read the pending notification
//	@Tags			notification
//	@Produce		json
//	@Success		200		{object}	NotificationResponse
//	@Security		BearerAuth
//	@Router			/notification [get]
func (h *Handler) GetNotification(w http.ResponseWriter, _ *http.Request) {
	n, ok := h.svc.Notification()
	writeJSON(w, http.StatusOK, NotificationResponse{Pending: ok, Message: n.Message, Kind: n.Kind})
}

// AckNotification handles DELETE /api/notification.
//
//	@Summary		Acknowledge the pending notification
//	@Tags			notification
//	@Success		204		"Acknowledged"
//	@Security		BearerAuth
//	@Router			/notification [delete]
func (h *Handler) AckNotification(w http.ResponseWriter, _ *http.Request) {
	h.svc.Acknowledge()
	w.WriteHeader(http.StatusNoContent)
}

// Export handles POST /api/export.
//
//	@Summary		Generate the order list PDF
//	@Tags			export
//	@Produce		application/pdf
//	@Success		200		{file}		binary
//	@Failure		409		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [post]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	art, err := h.svc.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if h.store != nil {
		if err := h.store.Write(art.Filename, art.Data); err != nil {
			slog.Error("save export failed", slog.String("file", art.Filename), slog.String("error", err.Error()))
		}
	}
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("ETag", checksum.ETag(art.Data))
	w.Header().Set("X-Page-Count", strconv.Itoa(art.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Data); err != nil {
		slog.Warn("export write failed", slog.String("error", err.Error()))
	}
}

// ListExports handles GET /api/exports.
//
//	@Summary		List saved documents
//	@Tags			export
//	@Produce		json
//	@Success		200		{object}	ExportListResponse
//	@Security		BearerAuth
//	@Router			/exports [get]
func (h *Handler) ListExports(w http.ResponseWriter, _ *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, ExportListResponse{Exports: []ExportFile{}})
		return
	}
	files, err := h.store.List("")
	if err != nil {
		slog.Error("list exports failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if files == nil {
		files = []ExportFile{}
	}
	writeJSON(w, http.StatusOK, ExportListResponse{Exports: files})
}

// GetExport handles GET /api/exports/{name}.
//
//	@Summary		Download a saved document
//	@Tags			export
//	@Produce		application/pdf
//	@Param			name	path	string	true	"File name"
//	@Success		200		{file}		binary
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/exports/{name} [get]
func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.store == nil || !strings.EqualFold(path.Ext(name), ".pdf") {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	data, err := h.store.Read(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	etag := checksum.ETag(data)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(name)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteExport handles DELETE /api/exports/{name}.
//
//	@Summary		Delete a saved document
//	@Tags			export
//	@Param			name	path	string	true	"File name"
//	@Success		204		"Deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/exports/{name} [delete]
func (h *Handler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.store == nil || !strings.EqualFold(path.Ext(name), ".pdf") {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if err := h.store.Delete(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete export failed", slog.String("file", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
