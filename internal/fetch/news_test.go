package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cryptosift/cryptosift/internal/platform/bocha"
)

type stubSearcher struct {
	byQuery map[string][]bocha.WebPage
	errs    map[string]error
}

func (s *stubSearcher) Search(_ context.Context, query string, _ int, _ string) ([]bocha.WebPage, error) {
	if err := s.errs[query]; err != nil {
		return nil, err
	}
	return s.byQuery[query], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNewsFetcher(s Searcher, queries []string, maxItems int) *NewsFetcher {
	return NewNewsFetcher(s, queries, 5, "oneDay", 150, maxItems, testLogger())
}

func TestFetchNewsDedupePreservesOrder(t *testing.T) {
	page := bocha.WebPage{Name: "BTC rallies", Snippet: "spot ETF inflows"}
	s := &stubSearcher{byQuery: map[string][]bocha.WebPage{
		"q1": {page, {Name: "ETH steady", Snippet: "low volatility"}},
		"q2": {page}, // exact duplicate of q1's first hit
	}}

	got := newTestNewsFetcher(s, []string{"q1", "q2"}, 20).FetchNews(context.Background())

	assert.Equal(t, "BTC rallies: spot ETF inflows...; ETH steady: low volatility...", got)
}

func TestFetchNewsCapTruncatesNotRotates(t *testing.T) {
	var pages []bocha.WebPage
	for i := 0; i < 30; i++ {
		pages = append(pages, bocha.WebPage{Name: fmt.Sprintf("item %02d", i), Snippet: "s"})
	}
	s := &stubSearcher{byQuery: map[string][]bocha.WebPage{"q": pages}}

	got := newTestNewsFetcher(s, []string{"q"}, 20).FetchNews(context.Background())

	lines := strings.Split(got, "; ")
	assert.Len(t, lines, 20)
	assert.Equal(t, "item 00: s...", lines[0])
	assert.Equal(t, "item 19: s...", lines[19])
}

func TestFetchNewsFailedQuerySkipped(t *testing.T) {
	s := &stubSearcher{
		byQuery: map[string][]bocha.WebPage{
			"good": {{Name: "DOGE news", Snippet: "meme season"}},
		},
		errs: map[string]error{"bad": errors.New("upstream 500")},
	}

	got := newTestNewsFetcher(s, []string{"bad", "good"}, 20).FetchNews(context.Background())

	assert.Equal(t, "DOGE news: meme season...", got)
}

func TestFetchNewsSentinelWhenEmpty(t *testing.T) {
	s := &stubSearcher{errs: map[string]error{"q": errors.New("boom")}}

	got := newTestNewsFetcher(s, []string{"q"}, 20).FetchNews(context.Background())

	assert.Equal(t, NoNewsSentinel, got)
}

func TestFetchNewsSnippetTruncatedByRunes(t *testing.T) {
	long := strings.Repeat("加密货币市场分析", 40) // far beyond the cap, multi-byte
	s := &stubSearcher{byQuery: map[string][]bocha.WebPage{
		"q": {{Name: "long", Snippet: long}},
	}}

	got := newTestNewsFetcher(s, []string{"q"}, 20).FetchNews(context.Background())

	line := strings.TrimSuffix(strings.TrimPrefix(got, "long: "), "...")
	assert.Equal(t, 150, len([]rune(line)))
}
