// Package migrations embeds the schema for the station and measurement tables.
// The DDL is written to run unchanged on SQLite and PostgreSQL.
package migrations

import (
	"embed"
	"fmt"
)

//go:embed *.sql
var files embed.FS

const schemaVersion = "001_create_schema"

// Up returns the statements that create the schema
func Up() (string, error) {
	return read(schemaVersion + ".up.sql")
}

// Down returns the statements that drop the schema
func Down() (string, error) {
	return read(schemaVersion + ".down.sql")
}

// ForDirection returns the script for "up" or "down"
func ForDirection(direction string) (string, error) {
	switch direction {
	case "up":
		return Up()
	case "down":
		return Down()
	default:
		return "", fmt.Errorf("unknown migration direction %q, expected up or down", direction)
	}
}

func read(name string) (string, error) {
	content, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", name, err)
	}
	return string(content), nil
}
