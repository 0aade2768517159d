// Package db ships the PostgreSQL schema as goose migrations embedded in the
// binary.
package db

import "embed"

// Migrations holds migrations/*.sql in goose's annotated format.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads.
const MigrationsDir = "migrations"
