// Package migrations embebe los scripts SQL versionados (golang-migrate).
package migrations

import "embed"

// FS scripts NNNNNN_nombre.{up,down}.sql.
//
//go:embed *.sql
var FS embed.FS
