package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/truerooha/zakazapp-back/internal/domain"
	"github.com/truerooha/zakazapp-back/internal/store"
)

type fakeStore struct {
	settings domain.Settings
	totals   []domain.UserTotal
	allowed  []string
	orders   map[string]*domain.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]*domain.Order)}
}

func (f *fakeStore) Categories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "soups", Name: "Супы"}}, nil
}

func (f *fakeStore) Dishes(context.Context) ([]domain.Dish, error) {
	return []domain.Dish{{ID: "soup-1", Name: "Минестроне", Price: 420, CategoryID: "soups"}}, nil
}

func (f *fakeStore) AllowedUsers(context.Context) ([]string, error) { return f.allowed, nil }

func (f *fakeStore) AddAllowedUser(_ context.Context, userID string) (bool, error) {
	for _, u := range f.allowed {
		if u == userID {
			return false, nil
		}
	}
	f.allowed = append(f.allowed, userID)
	return true, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, userID, day string, items []domain.OrderItemInput) (*domain.Order, error) {
	o := &domain.Order{ID: "order-1", UserID: userID, Date: day, Status: domain.OrderStatusPlaced}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeStore) LatestOrder(context.Context) (*domain.Order, error) {
	for _, o := range f.orders {
		return o, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) DeleteOrder(_ context.Context, id string) (bool, error) {
	_, ok := f.orders[id]
	delete(f.orders, id)
	return ok, nil
}

func (f *fakeStore) UserTotals(context.Context, string) ([]domain.UserTotal, error) {
	return f.totals, nil
}

func (f *fakeStore) DishTotals(context.Context, string) ([]domain.DishTotal, error) {
	return nil, nil
}

func (f *fakeStore) Settings(context.Context) (domain.Settings, error) { return f.settings, nil }

func (f *fakeStore) SaveSettings(_ context.Context, s domain.Settings) error {
	f.settings = s
	return nil
}

func (f *fakeStore) Close() error { return nil }

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	h := NewHandler(st, zap.NewNop())
	h.now = func() time.Time { return time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC) }
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestGetPersonalToday(t *testing.T) {
	st := newFakeStore()
	st.settings = domain.Settings{DiscountPercent: 10, DeliveryFee: 90, CloseAt: "14:00"}
	st.totals = []domain.UserTotal{
		{UserID: "@anna", BaseTotal: 300},
		{UserID: "@boris", BaseTotal: 200},
		{UserID: "123", BaseTotal: 500},
	}
	srv := newTestServer(t, st)

	resp, err := http.Get(srv.URL + "/api/orders/personal-today")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got domain.Settlement
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Lines, 3)
	assert.Equal(t, float64(300), got.Lines[0].FinalTotal)
	assert.Equal(t, float64(210), got.Lines[1].FinalTotal)
	assert.Equal(t, float64(480), got.Lines[2].FinalTotal)
	assert.Equal(t, float64(990), got.Summary.FinalTotal)
}

func TestCreateOrder_Validation(t *testing.T) {
	srv := newTestServer(t, newFakeStore())

	for name, body := range map[string]string{
		"no items":   `{"userId":"@anna","items":[]}`,
		"no user":    `{"items":[{"dishId":"soup-1","quantity":1}]}`,
		"bad qty":    `{"userId":"@anna","items":[{"dishId":"soup-1","quantity":0}]}`,
		"not json":   `nope`,
		"empty body": ``,
	} {
		resp, err := http.Post(srv.URL+"/api/orders", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err, name)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}

	resp, err := http.Post(srv.URL+"/api/orders", "application/json",
		bytes.NewBufferString(`{"userId":"@anna","items":[{"dishId":"soup-1","quantity":2}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order domain.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.Equal(t, "@anna", order.UserID)
	assert.Equal(t, "2025-06-10", order.Date)
}

func TestAddAllowedUser(t *testing.T) {
	srv := newTestServer(t, newFakeStore())

	resp, err := http.Post(srv.URL+"/api/allowed-users", "application/json",
		bytes.NewBufferString(`{"userId":"@anna"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got struct {
		UserID  string `json:"userId"`
		Created bool   `json:"created"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Created)
	assert.Equal(t, "@anna", got.UserID)
}

func TestSettings_CloseAtNull(t *testing.T) {
	st := newFakeStore()
	srv := newTestServer(t, st)

	// No cutoff configured: closeAt serializes as null.
	resp, err := http.Get(srv.URL + "/api/order-settings")
	require.NoError(t, err)
	var dto struct {
		CloseAt *string `json:"closeAt"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	resp.Body.Close()
	assert.Nil(t, dto.CloseAt)

	// PUT with a cutoff, then with explicit null to clear it.
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/order-settings",
		bytes.NewBufferString(`{"discountPercent":10,"deliveryFee":90,"closeAt":"14:00"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "14:00", st.settings.CloseAt)

	req, _ = http.NewRequest(http.MethodPut, srv.URL+"/api/order-settings",
		bytes.NewBufferString(`{"discountPercent":10,"deliveryFee":90,"closeAt":null}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, st.settings.CloseAt)
}
