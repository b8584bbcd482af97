package sqlstore

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect captures the differences between the SQL databases the store
// runs on.
type Dialect struct {
	Name string

	// Placeholder returns the bind parameter for the n-th argument (1-based).
	Placeholder func(n int) string

	// UniqueViolation reports whether err is a unique constraint violation on
	// table and, when it can tell, which column caused it.
	UniqueViolation func(table string, err error) (column string, ok bool)
}

// Postgres is the dialect for github.com/lib/pq.
var Postgres = Dialect{
	Name: "postgres",
	Placeholder: func(n int) string {
		return "$" + strconv.Itoa(n)
	},
	UniqueViolation: func(table string, err error) (string, bool) {
		var pqErr *pq.Error
		if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
			return "", false
		}
		// Constraints follow the default <table>_<column>_key naming.
		column := strings.TrimPrefix(pqErr.Constraint, table+"_")
		column = strings.TrimSuffix(column, "_key")
		return column, true
	},
}

// SQLite is the dialect for github.com/mattn/go-sqlite3.
var SQLite = Dialect{
	Name: "sqlite3",
	Placeholder: func(int) string {
		return "?"
	},
	UniqueViolation: func(table string, err error) (string, bool) {
		var sqliteErr sqlite3.Error
		if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
			return "", false
		}
		// Message format: "UNIQUE constraint failed: users.email"
		msg := sqliteErr.Error()
		if i := strings.LastIndex(msg, table+"."); i >= 0 {
			return strings.TrimSpace(msg[i+len(table)+1:]), true
		}
		return "", true
	},
}
