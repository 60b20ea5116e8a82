package dbclient

import (
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresDSN builds a key/value connection string for lib/pq.
func PostgresDSN(user, password, host string, port int, database, sslMode string) string {
	if port == 0 {
		port = 5432
	}
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslMode,
	)
}
