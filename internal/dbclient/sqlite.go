package dbclient

import (
	"strings"

	_ "modernc.org/sqlite"
)

// sqliteDSN opens the file in WAL mode with a busy timeout so the dataset can
// be read while another process writes to it.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}
