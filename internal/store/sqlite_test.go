package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truerooha/zakazapp-back/internal/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenSQLite_MigratesAndSeeds(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	cats, err := st.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 5)

	dishes, err := st.Dishes(ctx)
	require.NoError(t, err)
	require.Len(t, dishes, 10)
	assert.Equal(t, "soup-1", dishes[0].ID)
	assert.Equal(t, float64(420), dishes[0].Price)

	users, err := st.AllowedUsers(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, "demo_user")

	// Defaults: no discount, no fee, no cutoff.
	settings, err := st.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Settings{}, settings)
}

func TestAddAllowedUser_Idempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	created, err := st.AddAllowedUser(ctx, "@new_user")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = st.AddAllowedUser(ctx, "@new_user")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestOrders_CreateLatestDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.LatestOrder(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	order, err := st.CreateOrder(ctx, "@anna", "2025-06-10", []domain.OrderItemInput{
		{DishID: "soup-1", Quantity: 1},
		{DishID: "pasta-1", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "@anna", order.UserID)
	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Минестроне", order.Items[0].Dish.Name)
	assert.Equal(t, 2, order.Items[1].Quantity)

	latest, err := st.LatestOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, order.ID, latest.ID)

	deleted, err := st.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = st.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = st.LatestOrder(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserTotals_AggregatesPerUserAndDay(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	day := "2025-06-10"

	// soup-1=420, soup-2=390, salad-1=520
	_, err := st.CreateOrder(ctx, "@anna", day, []domain.OrderItemInput{
		{DishID: "soup-1", Quantity: 1},
	})
	require.NoError(t, err)
	_, err = st.CreateOrder(ctx, "@boris", day, []domain.OrderItemInput{
		{DishID: "salad-1", Quantity: 2},
	})
	require.NoError(t, err)
	// Second order by the same user the same day merges into one total.
	_, err = st.CreateOrder(ctx, "@anna", day, []domain.OrderItemInput{
		{DishID: "soup-2", Quantity: 1},
	})
	require.NoError(t, err)
	// Another day must not leak in.
	_, err = st.CreateOrder(ctx, "@anna", "2025-06-11", []domain.OrderItemInput{
		{DishID: "grill-1", Quantity: 1},
	})
	require.NoError(t, err)

	totals, err := st.UserTotals(ctx, day)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, domain.UserTotal{UserID: "@anna", BaseTotal: 810}, totals[0])
	assert.Equal(t, domain.UserTotal{UserID: "@boris", BaseTotal: 1040}, totals[1])

	empty, err := st.UserTotals(ctx, "2025-06-12")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDishTotals(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	day := "2025-06-10"

	_, err := st.CreateOrder(ctx, "@anna", day, []domain.OrderItemInput{
		{DishID: "soup-1", Quantity: 1},
	})
	require.NoError(t, err)
	_, err = st.CreateOrder(ctx, "@boris", day, []domain.OrderItemInput{
		{DishID: "soup-1", Quantity: 2},
	})
	require.NoError(t, err)

	totals, err := st.DishTotals(ctx, day)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, domain.DishTotal{
		DishID: "soup-1", Name: "Минестроне", Quantity: 3, Amount: 1260,
	}, totals[0])
}

func TestSettings_SaveNormalizesAndReads(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	want := domain.Settings{DiscountPercent: 12.5, DeliveryFee: 250, CloseAt: "14:00"}
	require.NoError(t, st.SaveSettings(ctx, want))

	got, err := st.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Out-of-range values are clamped, never stored raw.
	require.NoError(t, st.SaveSettings(ctx, domain.Settings{
		DiscountPercent: 150, DeliveryFee: -10, CloseAt: "14:00",
	}))
	got, err = st.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Settings{DiscountPercent: 100, DeliveryFee: 0, CloseAt: "14:00"}, got)
}
