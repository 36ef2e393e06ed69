package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ColorOption is one entry of the products.colors JSONB column.
type ColorOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

type ColorOptions []ColorOption

func (c ColorOptions) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, opt := range c {
		if strings.TrimSpace(opt.ID) == "" {
			return NewValidationError(fmt.Sprintf("colors[%d].id", i), "is required")
		}
		if strings.TrimSpace(opt.Name) == "" {
			return NewValidationError(fmt.Sprintf("colors[%d].name", i), "is required")
		}
		if _, dup := seen[opt.ID]; dup {
			return NewValidationError(fmt.Sprintf("colors[%d].id", i), "is duplicated")
		}
		seen[opt.ID] = struct{}{}
	}
	return nil
}

func (c ColorOptions) Value() (driver.Value, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]ColorOption(c))
}

func (c *ColorOptions) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan colors: %w", err)
	}
	if data == nil {
		*c = nil
		return nil
	}
	return json.Unmarshal(data, (*[]ColorOption)(c))
}

// ShippingAddress is the orders.shipping_address JSONB column.
type ShippingAddress struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Zip     string `json:"zip" binding:"required"`
	Country string `json:"country" binding:"required"`
}

func (a ShippingAddress) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"shipping_address.name", a.Name},
		{"shipping_address.address", a.Address},
		{"shipping_address.city", a.City},
		{"shipping_address.state", a.State},
		{"shipping_address.zip", a.Zip},
		{"shipping_address.country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return NewValidationError(f.name, "is required")
		}
	}
	return nil
}

func (a ShippingAddress) Value() (driver.Value, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(a)
}

func (a *ShippingAddress) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan shipping address: %w", err)
	}
	if data == nil {
		*a = ShippingAddress{}
		return nil
	}
	return json.Unmarshal(data, a)
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", src)
	}
}
