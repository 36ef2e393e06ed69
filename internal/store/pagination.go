package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/safar/stonecart/internal/models"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// CursorPage is one keyset page of a user's order history, newest first.
type CursorPage struct {
	Items      []models.Order `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// OffsetPage is one numbered page of the admin order listing.
type OffsetPage struct {
	Items      []models.Order `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// OrderCursor is the (created_at, id) position of the last order served.
type OrderCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

func EncodeCursor(cursor OrderCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor treats "" as the start of the listing.
func DecodeCursor(encoded string) (OrderCursor, error) {
	if encoded == "" {
		return OrderCursor{
			CreatedAt: time.Now().Add(time.Hour),
			ID:        uuid.Max,
		}, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return OrderCursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var cursor OrderCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return OrderCursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if cursor.ID == uuid.Nil || cursor.CreatedAt.IsZero() {
		return OrderCursor{}, fmt.Errorf("%w: incomplete position", ErrInvalidCursor)
	}
	return cursor, nil
}

// newCursorPage trims a limit+1 fetch to limit and points the cursor at the
// last order kept.
func newCursorPage(orders []models.Order, limit int) *CursorPage {
	page := &CursorPage{Items: orders}
	if len(orders) <= limit {
		return page
	}

	page.Items = orders[:limit]
	page.HasMore = true
	if limit > 0 {
		last := page.Items[limit-1]
		page.NextCursor = EncodeCursor(OrderCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page
}

func newOffsetPage(orders []models.Order, total int64, page, pageSize int) *OffsetPage {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &OffsetPage{
		Items:      orders,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
