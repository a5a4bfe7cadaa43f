package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/go-finance-orders/internal/notify"
	"github.com/ariefcatur/go-finance-orders/internal/orders"
	"github.com/ariefcatur/go-finance-orders/internal/updates"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

type fakeOrders struct {
	createFn func(ctx context.Context, userID string, d orders.Draft) (*orders.Order, error)
	updateFn func(ctx context.Context, userID, id string, p orders.Patch) (*orders.Order, error)
	deleteFn func(ctx context.Context, userID, id string) error
	lookupFn func(ctx context.Context, tracking string) (orders.TrackingView, bool, error)
}

func (f *fakeOrders) Create(ctx context.Context, userID string, d orders.Draft) (*orders.Order, error) {
	return f.createFn(ctx, userID, d)
}
func (f *fakeOrders) Update(ctx context.Context, userID, id string, p orders.Patch) (*orders.Order, error) {
	return f.updateFn(ctx, userID, id, p)
}
func (f *fakeOrders) Delete(ctx context.Context, userID, id string) error {
	return f.deleteFn(ctx, userID, id)
}
func (f *fakeOrders) Get(_ context.Context, userID, id string) (*orders.Order, error) {
	if id == "o1" {
		return &orders.Order{ID: id, UserID: userID}, nil
	}
	return nil, orders.ErrNotFound
}
func (f *fakeOrders) List(_ context.Context, userID string) ([]orders.Order, error) {
	return []orders.Order{{ID: "o1", UserID: userID}}, nil
}
func (f *fakeOrders) PublicLookup(ctx context.Context, tracking string) (orders.TrackingView, bool, error) {
	return f.lookupFn(ctx, tracking)
}

type fakeProducts struct{ created *orders.Product }

func (f *fakeProducts) List(context.Context, string) ([]orders.Product, error) {
	return []orders.Product{{ID: "p1", Name: "Kopi"}}, nil
}
func (f *fakeProducts) Create(_ context.Context, p *orders.Product) error {
	if p.Name == "dup" {
		return orders.ErrDuplicateProduct
	}
	p.ID = "p2"
	f.created = p
	return nil
}

type fakeSender struct{ res notify.Result }

func (f fakeSender) Send(context.Context, string, string) (notify.Result, error) { return f.res, nil }

type fakeAdmin bool

func (a fakeAdmin) IsAdmin(context.Context, string) (bool, error) { return bool(a), nil }

type fakeUpdates struct {
	info     updates.Info
	seen     bool
	verified []string
}

func (f *fakeUpdates) Last() (updates.Info, bool) { return f.info, f.seen }
func (f *fakeUpdates) Refresh(context.Context) updates.Info {
	f.seen = true
	f.info.CheckedAt = time.Now()
	return f.info
}
func (f *fakeUpdates) Releases(context.Context) ([]updates.Release, error) {
	return []updates.Release{{TagName: "v1.1.0"}}, nil
}
func (f *fakeUpdates) Verify(_ context.Context, version string) (updates.Manifest, error) {
	f.verified = append(f.verified, version)
	m := *f.info.Manifest
	if version != "" && version != m.Version {
		return m, updates.ErrVersionMismatch
	}
	return m, nil
}

func token(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newTestServer(o *fakeOrders, admin bool) (*httptest.Server, *fakeProducts, *fakeUpdates) {
	p := &fakeProducts{}
	u := &fakeUpdates{info: updates.Info{CurrentVersion: "1.0.0", LatestVersion: "1.1.0", UpdateAvailable: true,
		Manifest: &updates.Manifest{Version: "1.1.0", DownloadURL: "https://x/a.zip"}}}
	r := NewRouter()
	(&API{
		Orders:    &OrdersHandler{Orders: o, Products: p},
		Notify:    &NotifyHandler{Sender: fakeSender{res: notify.Result{OK: true}}},
		Updates:   &UpdatesHandler{Updates: u},
		JWTSecret: testSecret,
		Admin:     fakeAdmin(admin),
	}).Mount(r)
	return httptest.NewServer(r), p, u
}

func do(t *testing.T, srv *httptest.Server, method, path, body, sub string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if sub != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, sub))
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(&fakeOrders{}, false)
	defer srv.Close()
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "", "").StatusCode)
}

func TestCreateOrder(t *testing.T) {
	var gotUser string
	var gotDraft orders.Draft
	o := &fakeOrders{createFn: func(_ context.Context, userID string, d orders.Draft) (*orders.Order, error) {
		gotUser, gotDraft = userID, d
		if d.ProductID == "" {
			return nil, orders.ErrValidation
		}
		if d.ProductID == "ghost" {
			return nil, orders.ErrProductNotFound
		}
		if d.ProductID == "boom" {
			return nil, fmt.Errorf("%w: %w", orders.ErrSaveFailed, errors.New("pg down"))
		}
		return &orders.Order{ID: "o9", UserID: userID, Status: orders.StatusPending}, nil
	}}
	srv, _, _ := newTestServer(o, false)
	defer srv.Close()

	resp := do(t, srv, http.MethodPost, "/orders", `{"product_id":"p1","customer_name":"Budi","quantity":2,"notify_note":"hi"}`, "u1")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, 2, gotDraft.Quantity)
	assert.Equal(t, "hi", gotDraft.NotifyNote)

	t.Run("unauthenticated", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/orders", `{}`, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
	t.Run("missing fields", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/orders", `{"customer_name":"Budi"}`, "u1")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body map[string]string
		decodeBody(t, resp, &body)
		assert.Equal(t, "Product and customer name are required", body["error"])
	})
	t.Run("bad status", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/orders", `{"product_id":"p1","customer_name":"B","status":"lost"}`, "u1")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	t.Run("negative quantity", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/orders", `{"product_id":"p1","customer_name":"B","quantity":-1}`, "u1")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	t.Run("unknown product", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/orders", `{"product_id":"ghost","customer_name":"B"}`, "u1")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	t.Run("save failed hides cause", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/orders", `{"product_id":"boom","customer_name":"B"}`, "u1")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var body map[string]string
		decodeBody(t, resp, &body)
		assert.Equal(t, "save failed", body["error"])
	})
}

func TestUpdateOrder(t *testing.T) {
	var gotPatch orders.Patch
	o := &fakeOrders{updateFn: func(_ context.Context, userID, id string, p orders.Patch) (*orders.Order, error) {
		if id != "o1" {
			return nil, orders.ErrNotFound
		}
		gotPatch = p
		return &orders.Order{ID: id, Status: *p.Status, TrackingNumber: "FM-AAAAAA-000001"}, nil
	}}
	srv, _, _ := newTestServer(o, false)
	defer srv.Close()

	resp := do(t, srv, http.MethodPut, "/orders/o1", `{"status":"dikirim"}`, "u1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, gotPatch.Status)
	assert.Equal(t, orders.StatusDikirim, *gotPatch.Status)
	assert.Nil(t, gotPatch.CustomerName)

	resp = do(t, srv, http.MethodPut, "/orders/nope", `{"status":"selesai"}`, "u1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteAndGetOrder(t *testing.T) {
	o := &fakeOrders{deleteFn: func(_ context.Context, _, id string) error {
		if id == "o1" {
			return nil
		}
		return orders.ErrNotFound
	}}
	srv, _, _ := newTestServer(o, false)
	defer srv.Close()

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/orders/o1", "", "u1").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/orders/o2", "", "u1").StatusCode)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/orders/o1", "", "u1").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/orders/o2", "", "u1").StatusCode)

	var list []orders.Order
	decodeBody(t, do(t, srv, http.MethodGet, "/orders", "", "u7"), &list)
	require.Len(t, list, 1)
	assert.Equal(t, "u7", list[0].UserID)
}

func TestTrack(t *testing.T) {
	o := &fakeOrders{lookupFn: func(_ context.Context, tracking string) (orders.TrackingView, bool, error) {
		switch tracking {
		case "FM-ABC123-000001":
			return orders.TrackingView{TrackingNumber: tracking, Status: orders.StatusDikirim}, true, nil
		case "ERR":
			return orders.TrackingView{}, false, errors.New("db")
		}
		return orders.TrackingView{}, false, nil
	}}
	srv, _, _ := newTestServer(o, false)
	defer srv.Close()

	resp := do(t, srv, http.MethodGet, "/track/FM-ABC123-000001", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v orders.TrackingView
	decodeBody(t, resp, &v)
	assert.Equal(t, orders.StatusDikirim, v.Status)

	resp = do(t, srv, http.MethodGet, "/track/fm-abc123-000001", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "not found", body["error"])

	assert.Equal(t, http.StatusInternalServerError, do(t, srv, http.MethodGet, "/track/ERR", "", "").StatusCode)
}

func TestProducts(t *testing.T) {
	srv, p, _ := newTestServer(&fakeOrders{}, false)
	defer srv.Close()

	resp := do(t, srv, http.MethodPost, "/products", `{"name":"Teh","price":"12500.50","stock":3}`, "u1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, p.created)
	assert.Equal(t, "u1", p.created.UserID)
	assert.True(t, p.created.Price.Equal(decimal.RequireFromString("12500.5")))

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/products", `{"name":"Teh","price":"abc"}`, "u1").StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/products", `{"name":"Teh","price":"-1"}`, "u1").StatusCode)
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/products", `{"name":"dup","price":"1"}`, "u1").StatusCode)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/products", "", "u1").StatusCode)
}

func TestNotify(t *testing.T) {
	srv, _, _ := newTestServer(&fakeOrders{}, false)
	defer srv.Close()

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/notify", `{"phone":"0811","message":"hi"}`, "u1").StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/notify", `{"phone":"0811"}`, "u1").StatusCode)

	h := &NotifyHandler{Sender: fakeSender{res: notify.Result{OK: false, Error: "invalid target"}}}
	rec := httptest.NewRecorder()
	h.send(rec, httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(`{"phone":"x","message":"y"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid target")
}

func TestAdminUpdates(t *testing.T) {
	srv, _, u := newTestServer(&fakeOrders{}, true)
	defer srv.Close()

	resp := do(t, srv, http.MethodGet, "/admin/updates", "", "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info updates.Info
	decodeBody(t, resp, &info)
	assert.True(t, info.UpdateAvailable)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/admin/updates/releases", "", "admin").StatusCode)

	resp = do(t, srv, http.MethodPost, "/admin/updates/verify", "", "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	decodeBody(t, resp, &out)
	assert.Equal(t, "1.1.0", out["version"])

	resp = do(t, srv, http.MethodPost, "/admin/updates/verify", `{"version":"0.1.0"}`, "admin")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// download_url dari body tidak pernah diteruskan
	resp = do(t, srv, http.MethodPost, "/admin/updates/verify",
		`{"version":"1.1.0","download_url":"http://169.254.169.254/latest/meta-data"}`, "admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"", "0.1.0", "1.1.0"}, u.verified)

	nonAdmin, _, _ := newTestServer(&fakeOrders{}, false)
	defer nonAdmin.Close()
	assert.Equal(t, http.StatusForbidden, do(t, nonAdmin, http.MethodGet, "/admin/updates", "", "u1").StatusCode)
}
