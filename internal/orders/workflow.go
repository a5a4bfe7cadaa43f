package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrValidation      = errors.New("Product and customer name are required")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrNotFound        = errors.New("order not found")
	ErrSaveFailed      = errors.New("save failed")
	ErrDeleteFailed    = errors.New("delete failed")
)

var tracer = otel.Tracer("finance-orders/orders")

// Store persists orders. Every method except FindByTracking is scoped to the
// owning tenant; Update and Delete return ErrNotFound when no row matched.
type Store interface {
	Insert(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, userID, id string) (*Order, error)
	ListByOwner(ctx context.Context, userID string) ([]Order, error)
	FindByTracking(ctx context.Context, tracking string) (TrackingView, bool, error)
}

type Catalog interface {
	ProductName(ctx context.Context, userID, productID string) (string, error)
}

// Dispatcher hands a notification to a background sender. It must not
// block and has no error to report: delivery is best effort.
type Dispatcher interface {
	Dispatch(n Notification)
}

type Workflow struct {
	Store    Store
	Catalog  Catalog
	Notifier Dispatcher
	Tracking *TrackingGenerator
}

func (w *Workflow) Create(ctx context.Context, userID string, d Draft) (*Order, error) {
	ctx, span := tracer.Start(ctx, "orders.Create")
	defer span.End()

	if strings.TrimSpace(d.ProductID) == "" || strings.TrimSpace(d.CustomerName) == "" {
		return nil, ErrValidation
	}
	qty, err := normalizeQuantity(d.Quantity)
	if err != nil {
		return nil, err
	}
	st, err := ParseStatus(string(d.Status))
	if err != nil {
		return nil, err
	}

	o := &Order{
		UserID:         userID,
		ProductID:      strings.TrimSpace(d.ProductID),
		Quantity:       qty,
		CustomerName:   strings.TrimSpace(d.CustomerName),
		CustomerPhone:  strings.TrimSpace(d.CustomerPhone),
		Address:        d.Address,
		Status:         st,
		TrackingNumber: d.TrackingNumber,
		Note:           d.Note,
	}
	w.ensureTracking(o)

	if err := w.Store.Insert(ctx, o); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		log.Error().Err(err).Str("user_id", userID).Msg("orders: insert failed")
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	span.SetAttributes(attribute.String("order.id", o.ID), attribute.String("order.status", o.Status.String()))
	log.Info().Str("order_id", o.ID).Str("user_id", userID).Stringer("status", o.Status).Msg("orders: created")

	w.notify(ctx, o, createdMessage, d.NotifyNote)
	return o, nil
}

func (w *Workflow) Update(ctx context.Context, userID, id string, p Patch) (*Order, error) {
	ctx, span := tracer.Start(ctx, "orders.Update", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if (p.ProductID != nil && strings.TrimSpace(*p.ProductID) == "") ||
		(p.CustomerName != nil && strings.TrimSpace(*p.CustomerName) == "") {
		return nil, ErrValidation
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(*p.Status))
	}

	cur, err := w.Store.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		log.Error().Err(err).Str("order_id", id).Msg("orders: load for update failed")
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	o := applyPatch(*cur, p)
	if o.ProductID == "" || o.CustomerName == "" {
		return nil, ErrValidation
	}
	if !CanTransition(cur.Status, o.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, cur.Status, o.Status)
	}
	w.ensureTracking(&o)

	if err := w.Store.Update(ctx, &o); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		log.Error().Err(err).Str("order_id", id).Msg("orders: update failed")
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	log.Info().Str("order_id", o.ID).Stringer("old_status", cur.Status).Stringer("new_status", o.Status).Msg("orders: updated")

	w.notify(ctx, &o, updatedMessage, p.NotifyNote)
	return &o, nil
}

func (w *Workflow) Delete(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "orders.Delete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if err := w.Store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		span.RecordError(err)
		log.Error().Err(err).Str("order_id", id).Msg("orders: delete failed")
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	log.Info().Str("order_id", id).Str("user_id", userID).Msg("orders: deleted")
	return nil
}

func (w *Workflow) Get(ctx context.Context, userID, id string) (*Order, error) {
	return w.Store.Get(ctx, userID, id)
}

func (w *Workflow) List(ctx context.Context, userID string) ([]Order, error) {
	return w.Store.ListByOwner(ctx, userID)
}

// PublicLookup searches every tenant for an exact tracking number match.
// A miss is reported as found=false with a nil error.
func (w *Workflow) PublicLookup(ctx context.Context, tracking string) (TrackingView, bool, error) {
	ctx, span := tracer.Start(ctx, "orders.PublicLookup")
	defer span.End()

	if tracking == "" {
		return TrackingView{}, false, nil
	}
	v, found, err := w.Store.FindByTracking(ctx, tracking)
	if err != nil {
		span.RecordError(err)
		return TrackingView{}, false, fmt.Errorf("tracking lookup: %w", err)
	}
	return v, found, nil
}

func (w *Workflow) ensureTracking(o *Order) {
	if o.TrackingNumber != "" || o.Status != StatusDikirim {
		return
	}
	g := w.Tracking
	if g == nil {
		g = NewTrackingGenerator("")
	}
	o.TrackingNumber = g.Generate()
}

func (w *Workflow) notify(ctx context.Context, o *Order, build func(*Order, string, string) string, note string) {
	if o.CustomerPhone == "" || w.Notifier == nil {
		return
	}
	name := "-"
	if w.Catalog != nil {
		n, err := w.Catalog.ProductName(ctx, o.UserID, o.ProductID)
		if err != nil {
			log.Warn().Err(err).Str("product_id", o.ProductID).Msg("orders: product name lookup failed")
		} else if n != "" {
			name = n
		}
	}
	w.Notifier.Dispatch(Notification{
		OrderID:        o.ID,
		Phone:          o.CustomerPhone,
		Message:        build(o, name, note),
		Status:         o.Status,
		TrackingNumber: o.TrackingNumber,
	})
}

func normalizeQuantity(q int) (int, error) {
	switch {
	case q == 0:
		return 1, nil
	case q < 0:
		return 0, ErrInvalidQuantity
	}
	return q, nil
}

func applyPatch(o Order, p Patch) Order {
	if p.ProductID != nil {
		o.ProductID = strings.TrimSpace(*p.ProductID)
	}
	if p.Quantity != nil {
		o.Quantity, _ = normalizeQuantity(*p.Quantity)
	}
	if p.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*p.CustomerName)
	}
	if p.CustomerPhone != nil {
		o.CustomerPhone = strings.TrimSpace(*p.CustomerPhone)
	}
	if p.Address != nil {
		o.Address = *p.Address
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.TrackingNumber != nil {
		o.TrackingNumber = *p.TrackingNumber
	}
	if p.Note != nil {
		o.Note = *p.Note
	}
	return o
}
