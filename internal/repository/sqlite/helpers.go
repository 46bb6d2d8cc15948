package sqlite

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// nullableTime converts a scanned sql.NullTime into the *time.Time the
// models use.
func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// timeOrNil unwraps a *time.Time for binding, keeping NULL for nil.
func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// intOrNil unwraps a *int for binding, keeping NULL for nil.
func intOrNil(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
