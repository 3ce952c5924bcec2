package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/fs"
	"github.com/fwojciec/cratedocs/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDocumentPath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"index.html":           "index.md",
		"struct.Value.html":    "struct.Value.md",
		"sync/mpsc/index.html": "sync/mpsc/index.md",
		"":                     "index.md",
		"../../etc/passwd":     "etc/passwd.md",
		"macro.json.htm":       "macro.json.md",
		"/leading/slash.html":  "leading/slash.md",
	}
	for in, want := range cases {
		assert.Equal(t, filepath.FromSlash(want), fs.DocumentPath(in), in)
	}
}

func TestFormatDocument(t *testing.T) {
	t.Parallel()

	t.Run("includes version when known", func(t *testing.T) {
		t.Parallel()

		got, err := fs.FormatDocument("serde", "1.0.210", cratedocs.Document{Path: "index.html", Content: "# serde"})

		require.NoError(t, err)
		assert.Equal(t, "---\ncrate: serde\nversion: 1.0.210\npath: index.html\n---\n\n# serde\n", got)
	})

	t.Run("omits unknown version", func(t *testing.T) {
		t.Parallel()

		got, err := fs.FormatDocument("serde", "", cratedocs.Document{Path: "index.html", Content: "# serde"})

		require.NoError(t, err)
		assert.Equal(t, "---\ncrate: serde\npath: index.html\n---\n\n# serde\n", got)
	})

	t.Run("quotes values that are not plain YAML", func(t *testing.T) {
		t.Parallel()

		doc := cratedocs.Document{Path: "trait.Fn: Sized #impl.html", Content: "body"}

		got, err := fs.FormatDocument("demo", "1.0", doc)

		require.NoError(t, err)
		parts := strings.SplitN(got, "---\n", 3)
		require.Len(t, parts, 3)
		var meta map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &meta))
		assert.Equal(t, map[string]any{
			"crate":   "demo",
			"version": "1.0",
			"path":    "trait.Fn: Sized #impl.html",
		}, meta)
		assert.Equal(t, "\nbody\n", parts[2])
	})
}

func TestExport(t *testing.T) {
	t.Parallel()

	t.Run("writes documents under the crate directory", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		result := &cratedocs.LoadResult{
			Version: "1.0.0",
			Documents: []cratedocs.Document{
				{Path: "index.html", Content: "# tokio"},
				{Path: "sync/mpsc/index.html", Content: "# mpsc"},
			},
		}

		require.NoError(t, fs.Export(base, "tokio", result))

		data, err := os.ReadFile(filepath.Join(base, "tokio", "sync", "mpsc", "index.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "# mpsc")
		assert.Contains(t, string(data), "version: 1.0.0")
		_, err = os.Stat(filepath.Join(base, "tokio.tmp"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("replaces a previous export", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		first := &cratedocs.LoadResult{Documents: []cratedocs.Document{{Path: "old.html", Content: "old"}}}
		second := &cratedocs.LoadResult{Documents: []cratedocs.Document{{Path: "new.html", Content: "new"}}}

		require.NoError(t, fs.Export(base, "rand", first))
		require.NoError(t, fs.Export(base, "rand", second))

		_, err := os.Stat(filepath.Join(base, "rand", "old.md"))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(base, "rand", "new.md"))
		assert.NoError(t, err)
	})

	t.Run("clears a stale backup from an interrupted export", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		require.NoError(t, fs.Export(base, "rand", &cratedocs.LoadResult{
			Documents: []cratedocs.Document{{Path: "current.html", Content: "current"}},
		}))
		stale := filepath.Join(base, "rand.old")
		require.NoError(t, os.MkdirAll(stale, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(stale, "stale.md"), []byte("stale"), 0644))

		require.NoError(t, fs.Export(base, "rand", &cratedocs.LoadResult{
			Documents: []cratedocs.Document{{Path: "next.html", Content: "next"}},
		}))

		_, err := os.Stat(filepath.Join(base, "rand", "next.md"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(base, "rand", "current.md"))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(stale)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("creates an empty directory for no documents", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()

		require.NoError(t, fs.Export(base, "empty", &cratedocs.LoadResult{}))

		info, err := os.Stat(filepath.Join(base, "empty"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects crate names that are paths", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"", "..", "a/b"} {
			err := fs.Export(t.TempDir(), name, &cratedocs.LoadResult{})
			assert.Equal(t, cratedocs.EINVALID, cratedocs.ErrorCode(err), name)
		}
	})
}

func TestExportingLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("exports and returns the result", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		inner := &mock.DocumentLoader{
			LoadFn: func(_ context.Context, _ cratedocs.LoadRequest) (*cratedocs.LoadResult, error) {
				return &cratedocs.LoadResult{Documents: []cratedocs.Document{{Path: "index.html", Content: "# anyhow"}}}, nil
			},
		}

		result, err := fs.NewExportingLoader(inner, base).Load(context.Background(), cratedocs.LoadRequest{CrateName: "anyhow"})

		require.NoError(t, err)
		assert.Len(t, result.Documents, 1)
		_, err = os.Stat(filepath.Join(base, "anyhow", "index.md"))
		assert.NoError(t, err)
	})

	t.Run("does not export on load failure", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		inner := &mock.DocumentLoader{
			LoadFn: func(_ context.Context, _ cratedocs.LoadRequest) (*cratedocs.LoadResult, error) {
				return nil, errors.New("network down")
			},
		}

		_, err := fs.NewExportingLoader(inner, base).Load(context.Background(), cratedocs.LoadRequest{CrateName: "anyhow"})

		require.Error(t, err)
		entries, err := os.ReadDir(base)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
