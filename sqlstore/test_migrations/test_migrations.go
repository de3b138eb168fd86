// Package test_migrations holds scripts used to exercise the migrator.
package test_migrations

import "embed"

//go:embed *.sql
var All embed.FS
