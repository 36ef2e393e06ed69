package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
	Features    []string        `json:"features"`
	Colors      ColorOptions    `json:"colors"`
	Sizes       []string        `json:"sizes"`
	Stock       int             `json:"stock"`
	SKU         string          `json:"sku"`
	Slug        string          `json:"slug"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Cart struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []CartItem      `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartItem carries live product fields; they follow the catalog, unlike OrderItem.Price.
type CartItem struct {
	ID           uuid.UUID       `json:"id"`
	CartID       uuid.UUID       `json:"cart_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int             `json:"quantity"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	CreatedAt    time.Time       `json:"created_at"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ProductImage string          `json:"product_image,omitempty"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.NullUUID   `json:"user_id"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	CreatedAt    time.Time       `json:"created_at"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image,omitempty"`
	LineTotal    decimal.Decimal `json:"line_total"`
}
