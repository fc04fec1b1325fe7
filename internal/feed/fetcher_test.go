package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example News</title>
  <link>https://example.com</link>
  <item>
    <title>Markets Rally After Rate  Decision</title>
    <link>https://example.com/markets-rally</link>
    <guid>example-guid-1</guid>
    <pubDate>Fri, 01 Mar 2024 12:00:00 GMT</pubDate>
    <description>Stocks climbed sharply on Friday after the central bank held interest rates steady, with technology shares leading the advance.</description>
  </item>
  <item>
    <title></title>
    <link>https://example.com/no-title</link>
    <description>This entry has no title so it should be skipped entirely by the fetcher.</description>
  </item>
  <item>
    <title>Too Short</title>
    <link>https://example.com/too-short</link>
    <description>tiny</description>
  </item>
  <item>
    <title>No Guid Entry With A Usable Body</title>
    <link>https://example.com/no-guid</link>
    <description>This entry carries no guid element, so its link should be used as the identifier instead.</description>
  </item>
</channel>
</rss>`

func newFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchParsesAndFilters(t *testing.T) {
	srv := newFeedServer(t, testRSS)

	articles, err := NewFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, articles, 2, "untitled and too-short entries are skipped")

	first := articles[0]
	assert.Equal(t, "Markets Rally After Rate Decision", first.Title, "whitespace runs are collapsed")
	assert.Equal(t, "https://example.com/markets-rally", first.URL)
	assert.Equal(t, "example-guid-1", first.GUID)
	assert.Equal(t, "Example News", first.Source)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), first.Date.UTC())
	assert.Equal(t, first.Title+". "+first.Content, first.FullText)

	second := articles[1]
	assert.Equal(t, second.URL, second.GUID, "link stands in for a missing guid")
	assert.False(t, second.Date.IsZero(), "missing pubDate falls back to now")
}

func TestFetchUnreachableFeed(t *testing.T) {
	_, err := NewFetcher().Fetch(context.Background(), "http://127.0.0.1:1/rss")
	assert.Error(t, err)
}

func TestFetchCapsEntriesPerFeed(t *testing.T) {
	var items string
	for i := 0; i < 60; i++ {
		items += fmt.Sprintf(`<item>
  <title>Headline Number %d In A Long Feed</title>
  <link>https://example.com/%d</link>
  <description>A body long enough to survive the minimum content length filter applied per entry.</description>
</item>`, i, i)
	}
	body := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Big Feed</title>` + items + `</channel></rss>`
	srv := newFeedServer(t, body)

	articles, err := NewFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, articles, 50)
}
