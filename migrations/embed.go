// Package migrations embeds the goose SQL migrations of the directory schema.
package migrations

import "embed"

// FS holds the *.sql migrations.
//
//go:embed *.sql
var FS embed.FS
