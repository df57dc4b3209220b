package migrations

import "embed"

// FS holds the budget schema migrations compiled into the binary, so the
// service can apply them at startup through golang-migrate's iofs source
// without shipping the .sql files separately.
//
//go:embed *.sql
var FS embed.FS

// Version is the newest migration in this directory.
const Version = 1
