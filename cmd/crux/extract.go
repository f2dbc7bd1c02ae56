package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/crux"
	"github.com/fwojciec/crux/article"
	"github.com/fwojciec/crux/batch"
	"github.com/fwojciec/crux/fs"
	"github.com/fwojciec/crux/goquery"
	"github.com/fwojciec/crux/htmltomarkdown"
	cruxhttp "github.com/fwojciec/crux/http"
	"github.com/fwojciec/crux/pipeline"
	"github.com/fwojciec/crux/readability"
	cruxslog "github.com/fwojciec/crux/slog"
	"github.com/fwojciec/crux/sqlite"
	"github.com/fwojciec/crux/trafilatura"
)

// ExtractCmd extracts one or more pages.
type ExtractCmd struct {
	URLs  []string `arg:"" optional:"" help:"Page URLs to extract"`
	Stdin bool     `help:"Read URLs from standard input, one per line"`

	Article  string `enum:"builtin,readability,trafilatura,none" default:"builtin" help:"Article extractor (builtin, readability, trafilatura, none)"`
	Markdown bool   `short:"m" help:"Convert the article to Markdown"`
	Feed     bool   `help:"Fetch the advertised feed and record its title"`
	NoAMP    bool   `name:"no-amp" help:"Do not follow canonical links away from AMP pages"`

	Timeout     time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent extraction limit"`
	RPS         float64       `name:"rps" default:"2" help:"Requests per second per domain (0 disables limiting)"`
	Retries     uint64        `default:"3" help:"Retries for transient fetch failures"`

	NoCache bool          `name:"no-cache" help:"Do not read or write the page cache"`
	TTL     time.Duration `default:"24h" help:"Maximum age of cached pages"`

	Out     string `short:"o" help:"Write Markdown files to this directory instead of JSON to stdout"`
	Verbose bool   `short:"v" help:"Log fetches and plugin runs to stderr"`
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	if len(c.URLs) == 0 && !c.Stdin {
		return fmt.Errorf("no urls given: pass URLs as arguments or use --stdin")
	}

	logger := newLogger(deps.Stderr, c.Verbose)

	httpFetcher := cruxhttp.NewFetcher(cruxhttp.WithTimeout(c.Timeout))
	defer httpFetcher.Close()

	var fetcher crux.Fetcher = httpFetcher
	if c.RPS > 0 {
		fetcher = batch.NewLimitedFetcher(fetcher, batch.NewDomainLimiter(c.RPS))
	}
	fetcher = batch.NewRetryFetcher(fetcher,
		batch.WithRetries(c.Retries),
		batch.WithOnRetry(func(url string, err error, wait time.Duration) {
			logger.Warn("retry", "url", url, "err", err, "wait", wait)
		}),
	)
	if deps.Pages != nil {
		fetcher = sqlite.NewCachingFetcher(fetcher, deps.Pages, sqlite.WithTTL(c.TTL), sqlite.WithLogger(logger))
	}
	fetcher = cruxslog.NewLoggingFetcher(fetcher, logger)

	plugins, err := c.plugins(fetcher, httpFetcher, logger)
	if err != nil {
		return err
	}
	extractor := pipeline.NewExtractor(fetcher,
		pipeline.WithPlugins(cruxslog.WrapPlugins(plugins, logger)...),
		pipeline.WithLogger(logger),
	)
	runner := batch.NewRunner(extractor,
		batch.WithConcurrency(c.Concurrency),
		batch.WithLogger(logger),
		batch.WithProgress(func(e batch.ProgressEvent) {
			if e.Type == batch.ProgressFailed {
				fmt.Fprintf(deps.Stderr, "[%d/%d] %s: %v\n", e.Completed, e.Total, e.URL, e.Error)
			}
		}),
	)

	sink, err := c.sink(deps.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(deps.Ctx)
	defer cancel()

	var total, failed int
	emit := func(item batch.Item) error {
		if item.Duplicate {
			return nil
		}
		total++
		if item.Err != nil {
			failed++
		}
		return sink.Write(ctx, item)
	}

	if c.Stdin {
		for item := range runner.Stream(ctx, readURLs(ctx, deps.Stdin, c.URLs)) {
			if err := emit(item); err != nil {
				_ = sink.Abort()
				return err
			}
		}
	} else {
		for _, item := range runner.Run(ctx, c.URLs) {
			if err := emit(item); err != nil {
				_ = sink.Abort()
				return err
			}
		}
	}

	if failed == total && total > 0 {
		_ = sink.Abort()
		return fmt.Errorf("all %d urls failed", total)
	}
	if err := sink.Commit(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d urls failed", failed, total)
	}
	return nil
}

// plugins builds the plugin chain from the command flags. Order matters:
// canonical resolution runs first, then metadata, then the article and
// the plugins that consume it.
func (c *ExtractCmd) plugins(fetcher crux.Fetcher, httpFetcher *cruxhttp.Fetcher, logger *slog.Logger) ([]crux.Plugin, error) {
	var plugins []crux.Plugin
	if !c.NoAMP {
		plugins = append(plugins, goquery.NewAmpPlugin(fetcher, goquery.WithLogger(logger)))
	}
	plugins = append(plugins, goquery.NewMetadataPlugin())

	switch c.Article {
	case "builtin":
		plugins = append(plugins, article.NewExtractor())
	case "readability":
		plugins = append(plugins, readability.NewPlugin())
	case "trafilatura":
		plugins = append(plugins, trafilatura.NewPlugin())
	case "none":
	default:
		return nil, fmt.Errorf("unknown article extractor %q", c.Article)
	}

	if c.markdown() {
		if c.Article == "none" {
			return nil, fmt.Errorf("markdown output needs an article extractor")
		}
		plugins = append(plugins, pipeline.NewMarkdownPlugin(htmltomarkdown.NewConverter()))
	}
	if c.Feed {
		plugins = append(plugins, cruxhttp.NewFeedPlugin(httpFetcher.Client()))
	}
	return plugins, nil
}

func (c *ExtractCmd) markdown() bool {
	return c.Markdown || c.Out != ""
}

func (c *ExtractCmd) sink(stdout io.Writer) (sink, error) {
	if c.Out == "" {
		return &jsonSink{enc: json.NewEncoder(stdout)}, nil
	}
	out, err := filepath.Abs(c.Out)
	if err != nil {
		return nil, fmt.Errorf("invalid output directory %q: %w", c.Out, err)
	}
	return &fileSink{
		store:  fs.NewFileStore(filepath.Dir(out), filepath.Base(out)),
		stdout: stdout,
	}, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readURLs sends the extra URLs followed by the non-blank lines of r.
func readURLs(ctx context.Context, r io.Reader, extra []string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		send := func(u string) bool {
			select {
			case out <- u:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, u := range extra {
			if !send(u) {
				return
			}
		}
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if !send(line) {
				return
			}
		}
	}()
	return out
}
