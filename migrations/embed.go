// Package migrations holds the Postgres schema for the product catalog.
package migrations

import "embed"

// FS contains the numbered up/down SQL files.
//
//go:embed *.sql
var FS embed.FS
