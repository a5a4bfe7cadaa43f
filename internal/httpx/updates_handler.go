package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-finance-orders/internal/updates"
	"github.com/go-chi/chi/v5"
)

type UpdateService interface {
	Last() (updates.Info, bool)
	Refresh(ctx context.Context) updates.Info
	Releases(ctx context.Context) ([]updates.Release, error)
	Verify(ctx context.Context, version string) (updates.Manifest, error)
}

type UpdatesHandler struct {
	Updates UpdateService
}

func (h *UpdatesHandler) Register(r chi.Router) {
	r.Get("/updates", h.status)
	r.Get("/updates/releases", h.releases)
	r.Post("/updates/verify", h.verify)
}

func (h *UpdatesHandler) status(w http.ResponseWriter, r *http.Request) {
	info, ok := h.Updates.Last()
	if !ok || r.URL.Query().Get("refresh") == "1" {
		info = h.Updates.Refresh(r.Context())
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *UpdatesHandler) releases(w http.ResponseWriter, r *http.Request) {
	list, err := h.Updates.Releases(r.Context())
	if err != nil {
		writeErr(w, http.StatusBadGateway, "release feed unavailable")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type VerifyReq struct {
	Version string `json:"version"`
}

// verify cuma untuk manifest hasil cek terakhir; body boleh kosong.
func (h *UpdatesHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	m, err := h.Updates.Verify(r.Context(), req.Version)
	switch {
	case errors.Is(err, updates.ErrNoUpdate),
		errors.Is(err, updates.ErrVersionMismatch),
		errors.Is(err, updates.ErrNotNewer):
		writeErr(w, http.StatusConflict, err.Error())
	case err != nil:
		writeErr(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]any{"verified": true, "version": m.Version})
	}
}
