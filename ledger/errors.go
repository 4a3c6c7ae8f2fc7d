package ledger

import (
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/teranos/namedargs/errors"
)

// ErrRunNotFound is returned when a run ID is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

// isUniqueViolation checks if err is a SQLite UNIQUE or PRIMARY KEY violation.
// Falls back to the driver message for errors that lost their type.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
