// Package fs exports loaded crate documentation to the local filesystem.
package fs

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/cratedocs"
	"gopkg.in/yaml.v3"
)

var _ cratedocs.DocumentLoader = (*ExportingLoader)(nil)

// ExportingLoader writes every successful load to a directory per crate
// before returning it.
type ExportingLoader struct {
	next    cratedocs.DocumentLoader
	baseDir string
}

// NewExportingLoader wraps next so its documents are exported under baseDir.
func NewExportingLoader(next cratedocs.DocumentLoader, baseDir string) *ExportingLoader {
	return &ExportingLoader{next: next, baseDir: baseDir}
}

// Load delegates to the wrapped loader and exports the result.
// An export failure fails the load.
func (l *ExportingLoader) Load(ctx context.Context, req cratedocs.LoadRequest) (*cratedocs.LoadResult, error) {
	result, err := l.next.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := Export(l.baseDir, req.CrateName, result); err != nil {
		return nil, fmt.Errorf("export %s: %w", req.CrateName, err)
	}
	return result, nil
}

// Export writes the documents as markdown files to baseDir/crate. Files are
// written to crate.tmp first. A previous export is moved to crate.old before
// crate.tmp is renamed into place, so an interrupted run leaves either the
// old or the new export on disk.
func Export(baseDir, crate string, result *cratedocs.LoadResult) error {
	if crate == "" || crate != filepath.Base(crate) || crate == "." || crate == ".." {
		return cratedocs.Errorf(cratedocs.EINVALID, "invalid crate name for export: %q", crate)
	}

	finalDir := filepath.Join(baseDir, crate)
	tempDir := finalDir + ".tmp"
	if err := os.RemoveAll(tempDir); err != nil {
		return err
	}

	for _, doc := range result.Documents {
		full := filepath.Join(tempDir, DocumentPath(doc.Path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			_ = os.RemoveAll(tempDir)
			return err
		}
		content, err := FormatDocument(crate, result.Version, doc)
		if err != nil {
			_ = os.RemoveAll(tempDir)
			return err
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			_ = os.RemoveAll(tempDir)
			return err
		}
	}
	if len(result.Documents) == 0 {
		if err := os.MkdirAll(tempDir, 0755); err != nil {
			return err
		}
	}

	oldDir := finalDir + ".old"
	if err := os.RemoveAll(oldDir); err != nil {
		return err
	}
	if err := os.Rename(finalDir, oldDir); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Rename(tempDir, finalDir); err != nil {
		_ = os.Rename(oldDir, finalDir)
		return err
	}
	return os.RemoveAll(oldDir)
}

// DocumentPath converts a document path to a relative markdown file path.
// The result never escapes the export directory.
// Example: sync/mpsc/index.html -> sync/mpsc/index.md
func DocumentPath(docPath string) string {
	p := strings.TrimPrefix(path.Clean("/"+docPath), "/")
	if p == "" {
		return "index.md"
	}
	if ext := path.Ext(p); ext == ".html" || ext == ".htm" {
		p = strings.TrimSuffix(p, ext)
	}
	return filepath.FromSlash(p + ".md")
}

type frontmatter struct {
	Crate   string `yaml:"crate"`
	Version string `yaml:"version,omitempty"`
	Path    string `yaml:"path"`
}

// FormatDocument formats a document with YAML frontmatter.
func FormatDocument(crate, version string, doc cratedocs.Document) (string, error) {
	meta, err := yaml.Marshal(frontmatter{Crate: crate, Version: version, Path: doc.Path})
	if err != nil {
		return "", fmt.Errorf("frontmatter for %s: %w", doc.Path, err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(doc.Content)
	b.WriteString("\n")
	return b.String(), nil
}
