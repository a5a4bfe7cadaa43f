package httpx

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-finance-orders/internal/orders"
	"github.com/ariefcatur/go-finance-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CachedOrders puts the public tracking lookup behind Redis. Every write that
// can change what a tracking number resolves to drops the cached entries for
// both the old and the new number.
type CachedOrders struct {
	OrderService
	Redis *redis.Client
}

func (c *CachedOrders) PublicLookup(ctx context.Context, tracking string) (orders.TrackingView, bool, error) {
	if tracking == "" {
		return c.OrderService.PublicLookup(ctx, tracking)
	}
	key := fmt.Sprintf(redisx.KeyTracking, tracking)

	var cached orders.TrackingView
	if ok, _ := redisx.GetJSON(ctx, c.Redis, key, &cached); ok {
		return cached, true, nil
	}

	v, found, err := c.OrderService.PublicLookup(ctx, tracking)
	if err != nil || !found {
		return v, found, err
	}
	if err := redisx.SetJSON(ctx, c.Redis, key, v, redisx.TTLTracking); err != nil {
		log.Debug().Err(err).Msg("httpx: tracking cache write failed")
	}
	return v, true, nil
}

func (c *CachedOrders) Update(ctx context.Context, userID, id string, p orders.Patch) (*orders.Order, error) {
	prev := c.trackingOf(ctx, userID, id)
	o, err := c.OrderService.Update(ctx, userID, id, p)
	if err != nil {
		return nil, err
	}
	c.forget(ctx, prev, o.TrackingNumber)
	return o, nil
}

func (c *CachedOrders) Delete(ctx context.Context, userID, id string) error {
	prev := c.trackingOf(ctx, userID, id)
	if err := c.OrderService.Delete(ctx, userID, id); err != nil {
		return err
	}
	c.forget(ctx, prev)
	return nil
}

// trackingOf returns "" when the order can't be loaded; the write itself then
// reports the error.
func (c *CachedOrders) trackingOf(ctx context.Context, userID, id string) string {
	o, err := c.OrderService.Get(ctx, userID, id)
	if err != nil || o == nil {
		return ""
	}
	return o.TrackingNumber
}

func (c *CachedOrders) forget(ctx context.Context, tracking ...string) {
	keys := make([]string, 0, len(tracking))
	for _, t := range tracking {
		if t != "" {
			keys = append(keys, fmt.Sprintf(redisx.KeyTracking, t))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("httpx: tracking cache invalidation failed")
	}
}
