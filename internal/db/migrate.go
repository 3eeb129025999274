package db

import (
	"database/sql"
	"os"
)

const defaultSchemaPath = "schema/schema.sql"

// Migrate applies the schema. Every statement uses IF NOT EXISTS, so
// running it on an already-migrated database is a no-op.
func Migrate(db *sql.DB) error {
	return MigrateFrom(db, defaultSchemaPath)
}

func MigrateFrom(db *sql.DB, schemaPath string) error {
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		return err
	}

	_, err = db.Exec(string(schema))
	return err
}
