package main

import (
	"fmt"
	"time"
)

// CacheCmd groups the page cache commands.
type CacheCmd struct {
	Stats  CacheStatsCmd  `cmd:"" help:"Show the number of cached pages"`
	Prune  CachePruneCmd  `cmd:"" help:"Remove pages fetched before a cutoff"`
	Forget CacheForgetCmd `cmd:"" help:"Remove one page from the cache"`
}

// CacheStatsCmd prints cache statistics.
type CacheStatsCmd struct{}

// Run executes the stats command.
func (c *CacheStatsCmd) Run(deps *Dependencies) error {
	n, err := deps.Pages.CountPages(deps.Ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "%d pages cached\n", n)
	return nil
}

// CachePruneCmd removes stale pages.
type CachePruneCmd struct {
	OlderThan time.Duration `name:"older-than" default:"24h" help:"Remove pages older than this"`
}

// Run executes the prune command.
func (c *CachePruneCmd) Run(deps *Dependencies) error {
	n, err := deps.Pages.PrunePages(deps.Ctx, time.Now().Add(-c.OlderThan))
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Removed %d pages\n", n)
	return nil
}

// CacheForgetCmd removes a single page.
type CacheForgetCmd struct {
	URL string `arg:"" help:"URL of the page to remove"`
}

// Run executes the forget command.
func (c *CacheForgetCmd) Run(deps *Dependencies) error {
	if err := deps.Pages.DeletePage(deps.Ctx, c.URL); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Removed %s\n", c.URL)
	return nil
}
