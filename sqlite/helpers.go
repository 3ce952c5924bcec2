package sqlite

import (
	"fmt"
	"time"
)

// timestamp renders t as the UTC RFC3339 text stored in created_at and
// updated_at columns.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseRFC3339(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s %q: %w", column, value, err)
	}
	return t, nil
}
