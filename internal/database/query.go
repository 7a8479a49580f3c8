package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Row is an opaque result record keyed by column name.
type Row map[string]any

// Client runs raw queries against the shared connection pool.
type Client struct {
	db *gorm.DB
}

// NewClient wraps an open gorm handle.
func NewClient(db *gorm.DB) (*Client, error) {
	if db == nil {
		return nil, errors.New("database client: db is required")
	}
	return &Client{db: db}, nil
}

// Query executes sql and returns every row. Byte slices are converted to
// strings so rows serialise as text rather than base64.
func (c *Client) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	var raw []map[string]any
	if err := c.db.WithContext(ctx).Raw(sql, args...).Scan(&raw).Error; err != nil {
		return nil, fmt.Errorf("database: query: %w", err)
	}

	rows := make([]Row, 0, len(raw))
	for _, record := range raw {
		row := make(Row, len(record))
		for column, value := range record {
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			row[column] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Ping verifies the pool can reach the server.
func (c *Client) Ping(ctx context.Context) error {
	return Ping(ctx, c.db)
}
