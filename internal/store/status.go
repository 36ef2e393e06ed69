package store

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

var KnownTables = []string{"users", "products", "carts", "cart_items", "orders", "order_items"}

type TableStatus struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

type DatabaseStatus struct {
	Version string        `json:"version"`
	Tables  []TableStatus `json:"tables"`
}

func GetDatabaseStatus(ctx context.Context, db DBTX) (*DatabaseStatus, error) {
	status := &DatabaseStatus{}

	if err := db.QueryRowContext(ctx, `SELECT version()`).Scan(&status.Version); err != nil {
		return nil, fmt.Errorf("get server version: %w", err)
	}

	for _, table := range KnownTables {
		var count int64
		query := `SELECT COUNT(*) FROM ` + pq.QuoteIdentifier(table)
		if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		status.Tables = append(status.Tables, TableStatus{Name: table, RowCount: count})
	}

	return status, nil
}
