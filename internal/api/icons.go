package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/orderlist/internal/apperr"
	"github.com/starford/orderlist/internal/raster"
)

// IconLister reports the selectable icon ids in presentation order.
type IconLister interface {
	IDs() []string
}

// IconRenderer rasterizes a single icon.
type IconRenderer interface {
	Rasterize(ctx context.Context, iconID string) (*raster.Bitmap, error)
}

// IconHandler serves the icon catalog and rasterized previews.
type IconHandler struct {
	icons    IconLister
	renderer IconRenderer
}

// NewIconHandler creates a handler over the catalog and renderer.
func NewIconHandler(icons IconLister, renderer IconRenderer) *IconHandler {
	return &IconHandler{icons: icons, renderer: renderer}
}

// ListIcons handles GET /api/icons.
//
//	@Summary		List selectable icons in presentation order
//	@Tags			icons
//	@Produce		json
//	@Success		200		{object}	IconListResponse
//	@Security		BearerAuth
//	@Router			/icons [get]
func (h *IconHandler) ListIcons(w http.ResponseWriter, _ *http.Request) {
	ids := h.icons.IDs()
	resp := IconListResponse{Icons: make([]IconInfo, 0, len(ids))}
	for _, id := range ids {
		resp.Icons = append(resp.Icons, IconInfo{ID: id, Preview: "/api/icons/" + id + ".png"})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Preview handles GET /api/icons/{id}.png.
//
//	@Summary		Render an icon preview
//	@Tags			icons
//	@Produce		image/png
//	@Param			id	path	string	true	"Icon id"
//	@Success		200		{file}		binary
//	@Failure		404		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/icons/{id}.png [get]
func (h *IconHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bmp, err := h.renderer.Rasterize(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownGlyph) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown icon"))
			return
		}
		slog.Error("icon preview failed", slog.String("icon", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to render icon"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(bmp.PNG)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bmp.PNG)
}
