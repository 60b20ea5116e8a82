package sources

import (
	"context"
	"fmt"
	"log/slog"

	"explorer/internal/dataset"
	"explorer/internal/dbclient"
	"explorer/internal/domain"

	"github.com/spf13/cast"
)

// ── Database Source ────────────────────────────────────────
// Reads the dataset from a SQL query against sqlite, mysql or postgres.
// Each fetch opens a connection, drains the cursor and closes it again.

const fetchSize = 500

type databaseSource struct{}

func init() { dataset.RegisterSource(&databaseSource{}) }

func (s *databaseSource) Spec() dataset.SourceSpec {
	return dataset.SourceSpec{
		Type:  "database",
		Label: "Database Query",
		ConfigFields: []dataset.ConfigField{
			{Key: "driver", Label: "Driver", Type: "select", Required: true, Options: []string{dbclient.DriverSQLite, dbclient.DriverMySQL, dbclient.DriverPostgres}},
			{Key: "dsn", Label: "DSN", Type: "password", Required: false, Help: "Driver DSN; for sqlite the database file path"},
			{Key: "host", Label: "Host", Type: "string", Required: false, Help: "Used with port/user/password/database when no DSN is given"},
			{Key: "port", Label: "Port", Type: "string", Required: false},
			{Key: "user", Label: "User", Type: "string", Required: false},
			{Key: "password", Label: "Password", Type: "password", Required: false},
			{Key: "database", Label: "Database", Type: "string", Required: false},
			{Key: "sslmode", Label: "SSL Mode", Type: "string", Required: false, Default: "disable", Help: "Postgres only"},
			{Key: "query", Label: "Query", Type: "textarea", Required: true, Help: "Read query returning the dataset rows"},
		},
	}
}

func (s *databaseSource) Fetch(ctx context.Context, cfg dataset.SourceConfig) ([]domain.RawRow, error) {
	const source = "database"

	driver := cfg.String("driver")
	query := cfg.String("query")
	if query == "" {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", fmt.Errorf("query is required"))
	}
	dsn, err := resolveDSN(driver, cfg)
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", err)
	}

	conn, err := dbclient.NewConnector(driver, dsn, "", slog.Default())
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", err)
	}
	defer conn.Close()

	if err := conn.TestConnection(ctx); err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", fmt.Errorf("connect: %w", err))
	}
	columns, values, err := dbclient.ReadAll(ctx, conn, query, fetchSize)
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", err)
	}
	return dataset.RowsFromColumns(columns, values), nil
}

// resolveDSN prefers an explicit dsn and otherwise assembles one from the
// host/port/user/password/database keys.
func resolveDSN(driver string, cfg dataset.SourceConfig) (string, error) {
	if dsn := cfg.String("dsn"); dsn != "" {
		return dsn, nil
	}
	host := cfg.String("host")
	if host == "" {
		return "", fmt.Errorf("dsn or host is required")
	}
	port := cast.ToInt(cfg["port"])
	user, password, db := cfg.String("user"), cfg.String("password"), cfg.String("database")

	switch driver {
	case dbclient.DriverMySQL:
		return dbclient.MySQLDSN(user, password, host, port, db), nil
	case dbclient.DriverPostgres:
		return dbclient.PostgresDSN(user, password, host, port, db, cfg.String("sslmode")), nil
	case dbclient.DriverSQLite:
		return host, nil
	default:
		return "", fmt.Errorf("unsupported driver: %q", driver)
	}
}
