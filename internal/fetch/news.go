// Package fetch implements the best-effort source fetchers that assemble the
// per-run market snapshot and asset price set. Every fetcher degrades rather
// than fails: a missing source produces a sentinel digest or an omitted
// entry, never an aborted run.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cryptosift/cryptosift/internal/platform/bocha"
)

// NoNewsSentinel is returned when every query came back empty.
const NoNewsSentinel = "no recent market news available"

// Searcher is the slice of the search client the news fetcher needs.
type Searcher interface {
	Search(ctx context.Context, query string, count int, freshness string) ([]bocha.WebPage, error)
}

// NewsFetcher reduces a fixed set of topical queries into one deduplicated
// news digest.
type NewsFetcher struct {
	search        Searcher
	queries       []string
	perQuery      int
	freshness     string
	snippetMaxLen int
	maxItems      int
	logger        *slog.Logger
}

// NewNewsFetcher creates a news fetcher over the given search client.
func NewNewsFetcher(search Searcher, queries []string, perQuery int, freshness string, snippetMaxLen, maxItems int, logger *slog.Logger) *NewsFetcher {
	return &NewsFetcher{
		search:        search,
		queries:       queries,
		perQuery:      perQuery,
		freshness:     freshness,
		snippetMaxLen: snippetMaxLen,
		maxItems:      maxItems,
		logger:        logger.With(slog.String("component", "news_fetcher")),
	}
}

// FetchNews runs every configured query in order, formats each hit as
// "title: snippet...", deduplicates exact lines preserving first-seen order,
// caps the list, and joins it with "; ". A failed query is logged and
// skipped; an empty final list yields the no-news sentinel.
func (f *NewsFetcher) FetchNews(ctx context.Context) string {
	var lines []string

	for _, query := range f.queries {
		pages, err := f.search.Search(ctx, query, f.perQuery, f.freshness)
		if err != nil {
			f.logger.WarnContext(ctx, "news query failed",
				slog.String("query", query),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, p := range pages {
			lines = append(lines, f.formatLine(p))
		}

		f.logger.DebugContext(ctx, "news query succeeded",
			slog.String("query", query),
			slog.Int("results", len(pages)),
		)
	}

	unique := dedupe(lines)
	if len(unique) == 0 {
		f.logger.WarnContext(ctx, "no news from any query")
		return NoNewsSentinel
	}
	if len(unique) > f.maxItems {
		unique = unique[:f.maxItems]
	}

	return strings.Join(unique, "; ")
}

// formatLine renders one hit as "title: snippet...", truncating the snippet
// by runes so multi-byte text is never split mid-character.
func (f *NewsFetcher) formatLine(p bocha.WebPage) string {
	title := p.Name
	if title == "" {
		title = "untitled"
	}
	snippet := p.Snippet
	if snippet == "" {
		snippet = "no summary"
	}
	if r := []rune(snippet); len(r) > f.snippetMaxLen {
		snippet = string(r[:f.snippetMaxLen])
	}
	return fmt.Sprintf("%s: %s...", title, snippet)
}

// dedupe removes exact duplicates preserving first-seen order.
func dedupe(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
