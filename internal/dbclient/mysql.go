package dbclient

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// mysqlDSN makes sure DATETIME columns scan as time.Time and text as utf8mb4.
// A DSN the driver cannot parse is passed through so sql.Open reports it.
func mysqlDSN(dsn string) string {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return dsn
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	return cfg.FormatDSN()
}

// MySQLDSN builds a DSN from its parts: user:password@tcp(host:port)/dbname.
func MySQLDSN(user, password, host string, port int, database string) string {
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		user, password, host, port, database,
	)
}
