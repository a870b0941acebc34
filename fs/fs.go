// Package appfs embeds the files shipped inside the binaries.
package appfs

import "embed"

// FS holds the goose migrations, one directory per database engine.
//
//go:embed migrations
var FS embed.FS
