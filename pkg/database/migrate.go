package database

import (
	"database/sql"
	"fmt"
	"regexp"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const predictionLogSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	partition_key      TEXT NOT NULL,
	row_key            TEXT NOT NULL,
	timestamp_ms       INTEGER NOT NULL,
	anonymous_id       TEXT NOT NULL,
	outcome            TEXT NOT NULL,
	prediction_count   INTEGER NOT NULL DEFAULT 0,
	top_tag            TEXT,
	top_probability    REAL,
	matched_tag        TEXT,
	animal_name        TEXT,
	predictions        TEXT,
	error_kind         TEXT,
	error_message      TEXT,
	PRIMARY KEY (partition_key, row_key)
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_timestamp ON %[1]s (timestamp_ms);
`

// Migrate creates the prediction log table if it does not exist yet.
func Migrate(db *sql.DB, table string) error {
	if !identRe.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if _, err := db.Exec(fmt.Sprintf(predictionLogSchema, table)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
