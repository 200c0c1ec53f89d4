// Package migrations содержит схему хранилища сессии.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
