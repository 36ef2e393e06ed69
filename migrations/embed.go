// Package migrations holds the versioned SQL schema, embedded so binaries and
// tests apply the same files without depending on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
