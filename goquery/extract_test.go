package goquery_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinksWithConfigs(t *testing.T) {
	t.Parallel()

	t.Run("extracts links using provided selector configs", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<nav>
	<a href="/docs/intro">Introduction</a>
	<a href="/docs/guide">Guide</a>
</nav>
<section>
	<a href="/docs/section1">Section 1</a>
</section>
</body></html>`

		configs := []goquery.SelectorConfig{
			{Selector: "nav a[href]", Priority: cratedocs.PriorityNavigation, Source: "nav"},
			{Selector: "section a[href]", Priority: cratedocs.PriorityContent, Source: "content"},
		}

		links, err := goquery.ExtractLinksWithConfigs(html, "https://example.com", configs, nil)

		require.NoError(t, err)
		require.Len(t, links, 3)
		assert.Equal(t, "https://example.com/docs/intro", links[0].URL)
		assert.Equal(t, cratedocs.PriorityNavigation, links[0].Priority)
		assert.Equal(t, "nav", links[0].Source)
		assert.Equal(t, "Introduction", links[0].Text)
		assert.Equal(t, "https://example.com/docs/section1", links[2].URL)
		assert.Equal(t, cratedocs.PriorityContent, links[2].Priority)
	})

	t.Run("deduplicates links keeping highest priority", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<section><a href="/docs/guide">Guide in content</a></section>
<nav><a href="/docs/guide#top">Guide in nav</a></nav>
</body></html>`

		configs := []goquery.SelectorConfig{
			{Selector: "section a[href]", Priority: cratedocs.PriorityContent, Source: "content"},
			{Selector: "nav a[href]", Priority: cratedocs.PriorityNavigation, Source: "nav"},
		}

		links, err := goquery.ExtractLinksWithConfigs(html, "https://example.com/docs/", configs, nil)

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://example.com/docs/guide", links[0].URL)
		assert.Equal(t, cratedocs.PriorityNavigation, links[0].Priority)
		assert.Equal(t, "nav", links[0].Source)
	})

	t.Run("filters external, self and non-HTTP links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><nav>
<a href="https://other.com/page">External</a>
<a href="#section">Anchor</a>
<a href="javascript:void(0)">JS</a>
<a href="mailto:a@b.c">Mail</a>
<a href="">Empty</a>
<a href="/docs/ok">Ok</a>
</nav></body></html>`

		configs := []goquery.SelectorConfig{{Selector: "nav a[href]", Priority: cratedocs.PriorityNavigation, Source: "nav"}}

		links, err := goquery.ExtractLinksWithConfigs(html, "https://example.com/docs/page", configs, nil)

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://example.com/docs/ok", links[0].URL)
	})

	t.Run("applies the keep filter", func(t *testing.T) {
		t.Parallel()

		html := `<nav><a href="/a.html">A</a><a href="/b.txt">B</a></nav>`
		configs := []goquery.SelectorConfig{{Selector: "nav a[href]", Priority: cratedocs.PriorityNavigation}}
		keep := func(u *url.URL) bool { return strings.HasSuffix(u.Path, ".html") }

		links, err := goquery.ExtractLinksWithConfigs(html, "https://example.com/", configs, keep)

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://example.com/a.html", links[0].URL)
	})

	t.Run("rejects an invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.ExtractLinksWithConfigs("<a href='/x'>x</a>", "://bad", nil, nil)

		require.Error(t, err)
		assert.Equal(t, cratedocs.EINVALID, cratedocs.ErrorCode(err))
	})
}
