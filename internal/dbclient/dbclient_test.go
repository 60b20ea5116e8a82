package dbclient_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"explorer/internal/dbclient"

	_ "modernc.org/sqlite"
)

// ─────────────────────────────────────────────────────────────
// SQLite connector
// ─────────────────────────────────────────────────────────────

func seedSQLite(t *testing.T, rows int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE stations (id INTEGER PRIMARY KEY, name TEXT, bikes INTEGER, open BOOLEAN)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 1; i <= rows; i++ {
		if _, err := db.Exec(`INSERT INTO stations (id, name, bikes, open) VALUES (?, ?, ?, ?)`, i, "Station", i*2, i%2 == 0); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

func TestSQLite_ReadAllPages(t *testing.T) {
	path := seedSQLite(t, 7)
	c, err := dbclient.NewConnector(dbclient.DriverSQLite, path, "", nil)
	if err != nil {
		t.Fatalf("NewConnector: %v", err)
	}
	defer c.Close()

	cols, rows, err := dbclient.ReadAll(context.Background(), c, "SELECT id, name, bikes FROM stations ORDER BY id", 3)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if strings.Join(cols, ",") != "id,name,bikes" {
		t.Errorf("columns = %v", cols)
	}
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}
	if rows[6][0] != float64(7) {
		t.Errorf("expected last id 7 as float64, got %#v", rows[6][0])
	}
	if rows[0][1] != "Station" {
		t.Errorf("expected name text, got %#v", rows[0][1])
	}
}

func TestSQLite_FirstPageHasMore(t *testing.T) {
	path := seedSQLite(t, 5)
	c, err := dbclient.NewConnector(dbclient.DriverSQLite, path, "", nil)
	if err != nil {
		t.Fatalf("NewConnector: %v", err)
	}
	defer c.Close()

	page, err := c.Execute(context.Background(), "SELECT * FROM stations", 2)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !page.HasMore || len(page.Rows) != 2 {
		t.Fatalf("expected 2 rows with more, got %d hasMore=%v", len(page.Rows), page.HasMore)
	}
}

func TestSQLite_RejectsWrites(t *testing.T) {
	path := seedSQLite(t, 1)
	c, err := dbclient.NewConnector(dbclient.DriverSQLite, path, "", nil)
	if err != nil {
		t.Fatalf("NewConnector: %v", err)
	}
	defer c.Close()

	if _, err := c.Execute(context.Background(), "DELETE FROM stations", 10); err == nil {
		t.Fatal("expected write query to be rejected")
	}
}

func TestSQLite_FetchMoreWithoutCursor(t *testing.T) {
	path := seedSQLite(t, 1)
	c, err := dbclient.NewConnector(dbclient.DriverSQLite, path, "", nil)
	if err != nil {
		t.Fatalf("NewConnector: %v", err)
	}
	defer c.Close()

	if _, err := c.FetchMore(context.Background(), 10); err == nil {
		t.Fatal("expected error without an open cursor")
	}
}

// ─────────────────────────────────────────────────────────────
// Connector construction
// ─────────────────────────────────────────────────────────────

func TestNewConnector_Errors(t *testing.T) {
	if _, err := dbclient.NewConnector("oracle", "x", "", nil); err == nil {
		t.Error("expected unsupported driver error")
	}
	if _, err := dbclient.NewConnector(dbclient.DriverPostgres, "", "", nil); err == nil {
		t.Error("expected missing dsn error")
	}
	if _, err := dbclient.NewConnector(dbclient.DriverMongoDB, "http://localhost", "db", nil); err == nil {
		t.Error("expected invalid mongo uri error")
	}
}

func TestParseMongoQuery(t *testing.T) {
	mq, err := dbclient.ParseMongoQuery(`{"collection":"stations","filter":{"status":"OPEN"}}`)
	if err != nil {
		t.Fatalf("ParseMongoQuery: %v", err)
	}
	if mq.Operation != "find" {
		t.Errorf("expected default operation find, got %q", mq.Operation)
	}

	if _, err := dbclient.ParseMongoQuery(`{"filter":{}}`); err == nil {
		t.Error("expected missing collection error")
	}
	if _, err := dbclient.ParseMongoQuery(`{"collection":"c","operation":"deleteMany"}`); err == nil {
		t.Error("expected write operation to be rejected")
	}
}

func TestDSNBuilders(t *testing.T) {
	got := dbclient.MySQLDSN("u", "p", "db.local", 0, "bikes")
	if got != "u:p@tcp(db.local:3306)/bikes?parseTime=true&charset=utf8mb4" {
		t.Errorf("MySQLDSN = %q", got)
	}
	got = dbclient.PostgresDSN("u", "p", "db.local", 0, "bikes", "")
	if got != "host=db.local port=5432 user=u password=p dbname=bikes sslmode=disable" {
		t.Errorf("PostgresDSN = %q", got)
	}
}
