// Package migrations embeds the postgres schema of the slot store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
