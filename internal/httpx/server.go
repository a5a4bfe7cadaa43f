package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-finance-orders/internal/auth"
	"github.com/ariefcatur/go-finance-orders/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(Metrics)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// API groups the handlers behind their auth requirements.
type API struct {
	Orders    *OrdersHandler
	Notify    *NotifyHandler
	Updates   *UpdatesHandler
	JWTSecret string
	Admin     auth.AdminChecker
}

func (a *API) Mount(r chi.Router) {
	a.Orders.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(a.JWTSecret))
		a.Orders.Register(r)
		if a.Notify != nil {
			a.Notify.Register(r)
		}
		if a.Updates != nil && a.Admin != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin(a.Admin))
				a.Updates.Register(r)
			})
		}
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeWorkflowErr maps orders errors onto status codes. Internal causes are
// not echoed back.
func writeWorkflowErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrValidation),
		errors.Is(err, orders.ErrInvalidQuantity),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrProductNotFound):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not found")
	case errors.Is(err, orders.ErrDeleteFailed):
		writeErr(w, http.StatusInternalServerError, orders.ErrDeleteFailed.Error())
	default:
		writeErr(w, http.StatusInternalServerError, orders.ErrSaveFailed.Error())
	}
}

func decodeValid(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid json")
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New("invalid field: " + verrs[0].Field())
		}
		return err
	}
	return nil
}
