package httpx

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/go-finance-orders/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// NotifyHandler sends an ad-hoc WhatsApp message synchronously.
type NotifyHandler struct {
	Sender notify.Sender
}

type NotifyReq struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (h *NotifyHandler) Register(r chi.Router) {
	r.Post("/notify", h.send)
}

func (h *NotifyHandler) send(w http.ResponseWriter, r *http.Request) {
	var req NotifyReq
	if err := decodeValid(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.Message) == "" {
		writeErr(w, http.StatusBadRequest, "phone and message are required")
		return
	}

	res, err := h.Sender.Send(r.Context(), strings.TrimSpace(req.Phone), req.Message)
	if err != nil || !res.OK {
		log.Warn().Err(err).Str("phone", req.Phone).Str("gateway_error", res.Error).Msg("httpx: notify failed")
		msg := res.Error
		if msg == "" {
			msg = "failed to send"
		}
		writeJSON(w, http.StatusInternalServerError, notify.Result{OK: false, Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
