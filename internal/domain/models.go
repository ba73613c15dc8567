package domain

import "time"

// Category groups dishes on the menu.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dish is a single menu position. Price is in whole currency units.
type Dish struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  string  `json:"categoryId"`
}

// OrderItem is one dish line inside an order.
type OrderItem struct {
	Dish     Dish `json:"dish"`
	Quantity int  `json:"quantity"`
}

// Order is a single user's order for one calendar day.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Date      string      `json:"orderDate"` // ISO YYYY-MM-DD
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	Items     []OrderItem `json:"items"`
}

// OrderStatusPlaced is the only status the backend assigns itself.
const OrderStatusPlaced = "placed"

// OrderItemInput is a dish reference as submitted by the client.
type OrderItemInput struct {
	DishID   string `json:"dishId"`
	Quantity int    `json:"quantity"`
}

// UserTotal is one participant's raw order total for a day,
// before discount and delivery are applied.
type UserTotal struct {
	UserID    string  `json:"userId"`
	BaseTotal float64 `json:"baseTotal"`
}

// DishTotal aggregates one dish across all of a day's orders.
type DishTotal struct {
	DishID   string  `json:"dishId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// Settings is the admin-configured shared-order policy.
// CloseAt is "HH:MM" or empty when no cutoff is set.
type Settings struct {
	DiscountPercent float64 `json:"discountPercent"`
	DeliveryFee     float64 `json:"deliveryFee"`
	CloseAt         string  `json:"closeAt"`
}

// Day formats t as the ISO calendar date used for all day-boundary
// comparisons across the backend.
func Day(t time.Time) string {
	return t.Format("2006-01-02")
}
