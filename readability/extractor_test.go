package readability_test

import (
	"testing"

	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readmePage = `<!DOCTYPE html>
<html>
<head><title>serde_json - Rust</title></head>
<body>
<nav class="pure-menu"><a href="/about">About docs.rs</a><a href="/releases">Releases</a></nav>
<aside class="sidebar"><p>Sidebar crate navigation</p></aside>
<article>
<h1>Serde JSON</h1>
<p>Serde is a framework for serializing and deserializing Rust data structures efficiently and generically.</p>
<h2>Operating on untyped JSON values</h2>
<p>Any valid JSON data can be manipulated in the following recursive enum representation.</p>
<ul>
<li>Value::Null</li>
<li>Value::Bool</li>
</ul>
<table>
<tr><th>Feature</th><th>Default</th></tr>
<tr><td>std</td><td>yes</td></tr>
</table>
</article>
<footer><p>Hosted on docs.rs footer text</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("rejects blank input", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewExtractor().Extract(" \n ")

		require.Error(t, err)
		assert.Equal(t, cratedocs.EINVALID, cratedocs.ErrorCode(err))
	})

	t.Run("keeps the article", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(readmePage)

		require.NoError(t, err)
		assert.Equal(t, "serde_json - Rust", result.Title)
		assert.Contains(t, result.ContentHTML, "serializing and deserializing Rust data structures")
		assert.Contains(t, result.ContentHTML, "Operating on untyped JSON values")
		assert.Contains(t, result.ContentHTML, "<li")
		assert.Contains(t, result.ContentHTML, "<table")
	})

	t.Run("drops page chrome", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(readmePage)

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "About docs.rs")
		assert.NotContains(t, result.ContentHTML, "Sidebar crate navigation")
		assert.NotContains(t, result.ContentHTML, "Hosted on docs.rs footer text")
	})
}
