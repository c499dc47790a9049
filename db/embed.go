// Package db provides the embedded database schema applied on startup.
package db

import _ "embed"

// Schema contains the DDL statements for all canteen tables.
//
//go:embed migrations/001_schema.sql
var Schema string
