// Package migrations embeds the gateway's SQL schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
