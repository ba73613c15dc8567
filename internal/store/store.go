package store

import (
	"context"
	"errors"

	"github.com/truerooha/zakazapp-back/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines storage operations for the menu, orders and shared-order
// settings. The scheduler only reads from it; all writes come through
// the HTTP API.
type Store interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Dishes(ctx context.Context) ([]domain.Dish, error)

	AllowedUsers(ctx context.Context) ([]string, error)
	AddAllowedUser(ctx context.Context, userID string) (created bool, err error)

	CreateOrder(ctx context.Context, userID, day string, items []domain.OrderItemInput) (*domain.Order, error)
	LatestOrder(ctx context.Context) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) (deleted bool, err error)

	UserTotals(ctx context.Context, day string) ([]domain.UserTotal, error)
	DishTotals(ctx context.Context, day string) ([]domain.DishTotal, error)

	Settings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error

	Close() error
}
