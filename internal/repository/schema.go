package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Column types are chosen so the same DDL is valid on PostgreSQL and SQLite.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		email              TEXT NOT NULL UNIQUE,
		password_hash      TEXT NOT NULL,
		role               TEXT NOT NULL DEFAULT 'user',
		age                DOUBLE PRECISION,
		weight             DOUBLE PRECISION,
		height             DOUBLE PRECISION,
		mobile             TEXT NOT NULL DEFAULT '',
		profile_image      TEXT NOT NULL DEFAULT '',
		blood_type         TEXT NOT NULL DEFAULT '',
		gender             TEXT NOT NULL DEFAULT '',
		medical_conditions TEXT NOT NULL DEFAULT '[]',
		allergies          TEXT NOT NULL DEFAULT '[]',
		medications        TEXT NOT NULL DEFAULT '[]',
		created_at         BIGINT NOT NULL,
		updated_at         BIGINT NOT NULL,
		last_login         BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		title          TEXT NOT NULL DEFAULT '',
		name           TEXT NOT NULL DEFAULT '',
		age            TEXT NOT NULL DEFAULT '',
		last_seen      TEXT NOT NULL DEFAULT '',
		contact_number TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL,
		location       TEXT NOT NULL,
		category       TEXT NOT NULL DEFAULT 'Missing Person',
		status         TEXT NOT NULL DEFAULT 'Active',
		images         TEXT NOT NULL DEFAULT '[]',
		created_at     BIGINT NOT NULL,
		updated_at     BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_user_id ON reports (user_id)`,
	`CREATE TABLE IF NOT EXISTS responses (
		id         TEXT PRIMARY KEY,
		report_id  TEXT NOT NULL,
		user_id    TEXT NOT NULL,
		content    TEXT NOT NULL,
		images     TEXT NOT NULL DEFAULT '[]',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_responses_report_id ON responses (report_id)`,
	`CREATE INDEX IF NOT EXISTS idx_responses_user_id ON responses (user_id)`,
}

// InitSchema creates the document tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
