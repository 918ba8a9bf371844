// Package migrations embeds the local cache schema applied with goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
