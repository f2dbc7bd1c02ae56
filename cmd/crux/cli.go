package main

import (
	"context"
	"io"

	"github.com/fwojciec/crux/sqlite"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Extract ExtractCmd `cmd:"" help:"Extract pages and print them as JSON lines"`
	Cache   CacheCmd   `cmd:"" help:"Inspect or prune the page cache"`
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Pages is nil when caching is disabled.
	Pages *sqlite.PageCache
}
