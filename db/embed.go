// Package db embeds the schema applied on startup.
package db

import _ "embed"

// Schema holds the DDL for the orders table and its indexes.
//
//go:embed migrations/001_schema.sql
var Schema string
