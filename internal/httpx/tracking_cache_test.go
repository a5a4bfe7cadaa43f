package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-finance-orders/internal/orders"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memOrders is an in-memory OrderService that counts public lookups.
type memOrders struct {
	mu      sync.Mutex
	byID    map[string]*orders.Order
	lookups int
}

func (m *memOrders) Create(_ context.Context, userID string, d orders.Draft) (*orders.Order, error) {
	return nil, orders.ErrSaveFailed
}

func (m *memOrders) Update(_ context.Context, userID, id string, p orders.Patch) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok || o.UserID != userID {
		return nil, orders.ErrNotFound
	}
	if p.TrackingNumber != nil {
		o.TrackingNumber = *p.TrackingNumber
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok || o.UserID != userID {
		return orders.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memOrders) Get(_ context.Context, userID, id string) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok || o.UserID != userID {
		return nil, orders.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) List(context.Context, string) ([]orders.Order, error) { return nil, nil }

func (m *memOrders) PublicLookup(_ context.Context, tracking string) (orders.TrackingView, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	for _, o := range m.byID {
		if tracking != "" && o.TrackingNumber == tracking {
			return orders.TrackingView{TrackingNumber: o.TrackingNumber, CustomerName: o.CustomerName, Status: o.Status}, true, nil
		}
	}
	return orders.TrackingView{}, false, nil
}

func newCachedServer(t *testing.T) (*httptest.Server, *memOrders, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mem := &memOrders{byID: map[string]*orders.Order{
		"o1": {ID: "o1", UserID: "u1", CustomerName: "Budi", Status: orders.StatusDikirim, TrackingNumber: "FM-AAAAAA-000001"},
	}}
	r := NewRouter()
	(&API{
		Orders:    &OrdersHandler{Orders: &CachedOrders{OrderService: mem, Redis: rdb}, Products: &fakeProducts{}},
		JWTSecret: testSecret,
	}).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mem, mr
}

func TestTrackCache_HitSkipsLookup(t *testing.T) {
	srv, mem, mr := newCachedServer(t)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/track/FM-AAAAAA-000001", "", "").StatusCode)
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/track/FM-AAAAAA-000001", "", "").StatusCode)
	assert.Equal(t, 1, mem.lookups)
	assert.True(t, mr.Exists("track:FM-AAAAAA-000001"))

	// miss tidak di-cache
	require.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/track/FM-NOPE", "", "").StatusCode)
	assert.False(t, mr.Exists("track:FM-NOPE"))
}

func TestTrackCache_DeleteDropsEntry(t *testing.T) {
	srv, _, mr := newCachedServer(t)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/track/FM-AAAAAA-000001", "", "").StatusCode)
	require.True(t, mr.Exists("track:FM-AAAAAA-000001"))

	require.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/orders/o1", "", "u1").StatusCode)
	assert.False(t, mr.Exists("track:FM-AAAAAA-000001"))
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/track/FM-AAAAAA-000001", "", "").StatusCode)
}

func TestTrackCache_RenumberDropsOldEntry(t *testing.T) {
	srv, _, mr := newCachedServer(t)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/track/FM-AAAAAA-000001", "", "").StatusCode)

	resp := do(t, srv, http.MethodPut, "/orders/o1", `{"tracking_number":"FM-BBBBBB-000002"}`, "u1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, mr.Exists("track:FM-AAAAAA-000001"))
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/track/FM-AAAAAA-000001", "", "").StatusCode)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/track/FM-BBBBBB-000002", "", "").StatusCode)
}

func TestTrackCache_ClearedTrackingNumber(t *testing.T) {
	srv, _, mr := newCachedServer(t)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/track/FM-AAAAAA-000001", "", "").StatusCode)

	resp := do(t, srv, http.MethodPut, "/orders/o1", `{"tracking_number":"","status":"selesai"}`, "u1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, mr.Exists("track:FM-AAAAAA-000001"))
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/track/FM-AAAAAA-000001", "", "").StatusCode)
}

func TestTrackCache_OtherTenantCannotEvict(t *testing.T) {
	srv, _, mr := newCachedServer(t)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/track/FM-AAAAAA-000001", "", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/orders/o1", "", "u2").StatusCode)
	assert.True(t, mr.Exists("track:FM-AAAAAA-000001"))
}
