package dbclient

import (
	"context"
	"fmt"
	"log/slog"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

// QueryPage is a batch of rows fetched from a query cursor.
// Row values are already reduced to nil, bool, float64 or string.
type QueryPage struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	TotalFetched int      `json:"totalFetched"`
	HasMore      bool     `json:"hasMore"`
}

// Connector reads rows from an external database. Only read queries are
// accepted; the dataset is never written back.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// Execute runs a read query, opens a cursor and returns the first
	// fetchSize rows.
	Execute(ctx context.Context, query string, fetchSize int) (*QueryPage, error)

	// FetchMore continues reading from the open cursor.
	FetchMore(ctx context.Context, fetchSize int) (*QueryPage, error)

	// Close closes the connection and any open cursor.
	Close() error
}

// NewConnector creates a Connector for driver using a driver-specific DSN.
// For MongoDB the DSN is the connection URI and database names the database
// queries run against.
func NewConnector(driver, dsn, database string, logger *slog.Logger) (Connector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required for driver %q", driver)
	}
	switch driver {
	case DriverSQLite:
		return newSQLConnector(DriverSQLite, sqliteDSN(dsn), logger)
	case DriverMySQL:
		return newSQLConnector(DriverMySQL, mysqlDSN(dsn), logger)
	case DriverPostgres:
		return newSQLConnector(DriverPostgres, dsn, logger)
	case DriverMongoDB:
		return newMongoConnector(dsn, database, logger)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// ReadAll executes query and drains the cursor page by page.
func ReadAll(ctx context.Context, c Connector, query string, fetchSize int) ([]string, [][]any, error) {
	page, err := c.Execute(ctx, query, fetchSize)
	if err != nil {
		return nil, nil, fmt.Errorf("execute: %w", err)
	}
	columns := page.Columns
	rows := page.Rows
	for page.HasMore {
		page, err = c.FetchMore(ctx, fetchSize)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch more: %w", err)
		}
		columns = mergeColumns(columns, page.Columns)
		rows = append(rows, alignRow(page, columns)...)
	}
	return columns, rows, nil
}

// mergeColumns appends the columns of next not yet present in cols.
func mergeColumns(cols, next []string) []string {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}
	for _, c := range next {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	return cols
}

// alignRow reorders the page rows to follow columns. Document stores may
// return a different column set per batch.
func alignRow(page *QueryPage, columns []string) [][]any {
	idx := make(map[string]int, len(page.Columns))
	for i, c := range page.Columns {
		idx[c] = i
	}
	out := make([][]any, len(page.Rows))
	for r, row := range page.Rows {
		aligned := make([]any, len(columns))
		for j, c := range columns {
			if i, ok := idx[c]; ok && i < len(row) {
				aligned[j] = row[i]
			}
		}
		out[r] = aligned
	}
	return out
}
