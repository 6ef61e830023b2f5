package modules

import "embed"

// stdlibFS embeds every std.* module's FORMA source, grounded on the
// embedding pattern the broader retrieved corpus uses for bundling fixed
// text assets into the binary (go:embed over a source tree) rather than the
// teacher's own Go-native virtual package registry, since FORMA's stdlib is
// written in FORMA itself. go:embed patterns cannot climb out of this
// package's directory, so the sources live at internal/modules/stdlib/std
// instead of a repo-root stdlib/ tree.
//
//go:embed stdlib/std
var stdlibFS embed.FS
