// Package migrations хранит SQL-миграции схемы, встроенные в бинарник.
package migrations

import "embed"

// Files содержит пары up/down миграций в формате golang-migrate.
//
//go:embed *.sql
var Files embed.FS
