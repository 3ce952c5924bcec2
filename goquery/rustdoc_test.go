package goquery_test

import (
	"testing"

	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// moduleHTML is a trimmed rustdoc module page.
const moduleHTML = `<!DOCTYPE html>
<html lang="en"><head><title>serde_json - Rust</title></head>
<body class="rustdoc mod crate">
<nav class="sidebar">
	<div class="sidebar-crate"><h2><a href="../serde_json/index.html">serde_json</a></h2><span class="version">1.0.128</span></div>
	<section id="rustdoc-toc"><ul class="block">
		<li><a href="all.html">All Items</a></li>
		<li><a href="#modules">Modules</a></li>
		<li><a href="value/index.html">value</a></li>
	</ul></section>
</nav>
<main><div class="width-limiter"><section id="main-content" class="content">
	<div class="main-heading"><h1>Crate <span>serde_json</span><button id="copy-path" title="Copy item path to clipboard">Copy item path</button></h1>
	<span class="out-of-band"><a class="src" href="../src/serde_json/lib.rs.html#1-420">source</a></span></div>
	<details class="toggle top-doc" open><summary class="hideme"><span>Expand description</span></summary>
	<div class="docblock"><h2 id="serde-json"><a class="doc-anchor" href="#serde-json">§</a>Serde JSON</h2>
	<p>JSON is a ubiquitous open-standard format. See <a href="fn.from_str.html">from_str</a> and <a href="https://serde.rs/">serde.rs</a>.</p></div></details>
	<h2 id="modules" class="section-header">Modules<a href="#modules" class="anchor">§</a></h2>
	<ul class="item-table">
		<li><div class="item-name"><a class="mod" href="de/index.html" title="mod serde_json::de">de</a></div></li>
		<li><div class="item-name"><a class="mod" href="value/index.html" title="mod serde_json::value">value</a></div></li>
	</ul>
	<h2 id="functions" class="section-header">Functions</h2>
	<ul class="item-table">
		<li><div class="item-name"><a class="fn" href="fn.from_str.html" title="fn serde_json::from_str">from_str</a></div></li>
		<li><div class="item-name"><a class="fn" href="fn.to_string.html?search=x" title="fn serde_json::to_string">to_string</a></div></li>
	</ul>
</section></div></main>
</body></html>`

const base = "https://docs.rs/serde_json/1.0.128/serde_json/index.html"

func TestRustdocSelector_ExtractLinks(t *testing.T) {
	t.Parallel()

	s := goquery.NewRustdocSelector()
	assert.Equal(t, "rustdoc", s.Name())

	links, err := s.ExtractLinks(moduleHTML, base)
	require.NoError(t, err)

	byURL := make(map[string]cratedocs.DiscoveredLink)
	var order []string
	for _, l := range links {
		byURL[l.URL] = l
		order = append(order, l.URL)
	}

	t.Run("item tables come first at index priority", func(t *testing.T) {
		assert.Equal(t, []string{
			"https://docs.rs/serde_json/1.0.128/serde_json/de/index.html",
			"https://docs.rs/serde_json/1.0.128/serde_json/value/index.html",
			"https://docs.rs/serde_json/1.0.128/serde_json/fn.from_str.html",
		}, order[:3])
		assert.Equal(t, cratedocs.PriorityIndex, byURL["https://docs.rs/serde_json/1.0.128/serde_json/value/index.html"].Priority)
		assert.Equal(t, "items", byURL["https://docs.rs/serde_json/1.0.128/serde_json/fn.from_str.html"].Source)
	})

	t.Run("skips all items, source views, anchors and queries", func(t *testing.T) {
		assert.NotContains(t, byURL, "https://docs.rs/serde_json/1.0.128/serde_json/all.html")
		assert.NotContains(t, byURL, "https://docs.rs/serde_json/1.0.128/src/serde_json/lib.rs.html")
		assert.NotContains(t, byURL, base)
		assert.NotContains(t, byURL, "https://docs.rs/serde_json/1.0.128/serde_json/fn.to_string.html?search=x")
	})

	t.Run("skips external links", func(t *testing.T) {
		assert.NotContains(t, byURL, "https://serde.rs/")
	})
}

func TestRustdocExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("returns the docs body without chrome", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewRustdocExtractor().Extract(moduleHTML)

		require.NoError(t, err)
		assert.Equal(t, "Crate serde_json", result.Title)
		assert.Contains(t, result.ContentHTML, "JSON is a ubiquitous open-standard format.")
		assert.Contains(t, result.ContentHTML, "from_str")
		assert.NotContains(t, result.ContentHTML, "Copy item path")
		assert.NotContains(t, result.ContentHTML, "lib.rs.html")
		assert.NotContains(t, result.ContentHTML, "All Items")
	})

	t.Run("returns empty content for non-rustdoc pages", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewRustdocExtractor().Extract(`<html><head><title>Crate page</title></head><body><p>hi</p></body></html>`)

		require.NoError(t, err)
		assert.Empty(t, result.ContentHTML)
		assert.Equal(t, "Crate page", result.Title)
	})
}

func TestRustdocExtractor_DetectVersion(t *testing.T) {
	t.Parallel()

	e := goquery.NewRustdocExtractor()

	assert.Equal(t, "1.0.128", e.DetectVersion(moduleHTML))
	assert.Equal(t, "0.3.1", e.DetectVersion(`<div class="block version"><p>Version 0.3.1</p></div>`))
	assert.Empty(t, e.DetectVersion(`<html><body>no version here</body></html>`))
	assert.Empty(t, e.DetectVersion(`<span class="version">nightly</span>`))
}
