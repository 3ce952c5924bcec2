// Package crawl loads crate documentation by crawling the rustdoc output
// hosted on docs.rs.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/cratedocs"
)

// Loader defaults.
const (
	DefaultBaseURL     = "https://docs.rs"
	DefaultConcurrency = 10

	// frontierFalsePositiveRate bounds how often a new page is mistaken
	// for one already queued.
	frontierFalsePositiveRate = 0.0001
	// frontierLinksPerPage sizes the Bloom filter relative to MaxPages.
	frontierLinksPerPage = 4
)

// VersionDetector reads the crate version out of a rendered rustdoc page.
type VersionDetector interface {
	DetectVersion(html string) string
}

var _ cratedocs.DocumentLoader = (*Loader)(nil)

// Loader implements cratedocs.DocumentLoader against docs.rs.
//
// It resolves the crate's documentation root, then crawls every page under
// that root breadth first by link priority, converting each page to
// Markdown.
type Loader struct {
	Fetcher      cratedocs.Fetcher
	Resolver     cratedocs.URLResolver
	Extractor    cratedocs.Extractor
	Fallbacks    []cratedocs.Extractor // Tried in order while no content has been found
	Converter    cratedocs.Converter
	LinkSelector cratedocs.LinkSelector
	RateLimiter  cratedocs.DomainLimiter
	Versions     VersionDetector // Optional, used when the URL carries no version
	Logger       *slog.Logger

	BaseURL     string
	Concurrency int
	RetryDelays []time.Duration
}

// Load crawls the documentation of req.CrateName and returns at most
// req.MaxPages documents in dispatch order.
func (l *Loader) Load(ctx context.Context, req cratedocs.LoadRequest) (*cratedocs.LoadResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	maxPages := req.MaxPages
	if maxPages == 0 {
		maxPages = cratedocs.DefaultMaxPages
	}
	logger := l.logger()

	if len(req.Features) > 0 {
		logger.Info("features recorded; docs.rs renders the crate's published feature set",
			"crate", req.CrateName, "features", req.Features)
	}

	entry := EntryURL(l.baseURL(), req.CrateName, req.Version)
	resolved, err := l.Resolver.ResolveURL(ctx, entry)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if cratedocs.ErrorCode(err) == cratedocs.ENOTFOUND {
			return nil, cratedocs.Errorf(cratedocs.ENOTFOUND, "crate not found: %s", req.CrateName)
		}
		return nil, cratedocs.Errorf(cratedocs.ENETWORK, "failed to reach %s: %v", entry, err)
	}

	root, err := url.Parse(Canonicalize(resolved))
	if err != nil {
		return nil, cratedocs.Errorf(cratedocs.EINVALID, "invalid documentation URL %q: %v", resolved, err)
	}
	prefix := root.Path[:strings.LastIndex(root.Path, "/")+1]
	version := VersionFromPath(prefix)
	logger.Debug("resolved documentation root", "crate", req.CrateName, "url", root.String(), "version", version)

	c := &crawlState{
		loader:   l,
		root:     root,
		prefix:   prefix,
		versions: version == "" && l.Versions != nil,
		hashes:   make(map[uint64]struct{}),
	}
	frontier := NewFrontier(uint(maxPages*frontierLinksPerPage), frontierFalsePositiveRate)
	frontier.Push(cratedocs.DiscoveredLink{URL: root.String(), Priority: cratedocs.PriorityIndex})

	concurrency := l.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if err := walk(ctx, frontier, concurrency, maxPages, c.process, c.handle); err != nil {
		return nil, err
	}

	if len(c.docs) == 0 && c.failed > 0 {
		if cratedocs.ErrorCode(c.firstErr) == cratedocs.ENOTFOUND {
			return nil, c.firstErr
		}
		return nil, cratedocs.Errorf(cratedocs.ENETWORK, "failed to load documentation for %s: %v", req.CrateName, c.firstErr)
	}

	slices.SortFunc(c.docs, func(a, b positioned) int { return a.position - b.position })
	docs := make([]cratedocs.Document, 0, len(c.docs))
	for _, d := range c.docs {
		docs = append(docs, d.doc)
	}
	if version == "" {
		version = c.version
	}

	logger.Info("loaded documentation",
		"crate", req.CrateName,
		"version", version,
		"documents", len(docs),
		"failed", c.failed,
		"duplicates", c.duplicates,
	)
	return &cratedocs.LoadResult{Documents: docs, Version: version}, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}

func (l *Loader) baseURL() string {
	if l.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(l.BaseURL, "/")
}

type positioned struct {
	position int
	doc      cratedocs.Document
}

// crawlState accumulates results for a single Load. Only the walk
// coordinator goroutine touches it.
type crawlState struct {
	loader   *Loader
	root     *url.URL
	prefix   string
	versions bool

	docs       []positioned
	hashes     map[uint64]struct{}
	version    string
	failed     int
	duplicates int
	firstErr   error
}

// process fetches, extracts and converts one page.
func (c *crawlState) process(ctx context.Context, link cratedocs.DiscoveredLink) fetched {
	l := c.loader
	res := fetched{url: link.URL}

	u, err := url.Parse(link.URL)
	if err != nil {
		res.err = err
		return res
	}
	if l.RateLimiter != nil {
		if err := l.RateLimiter.Wait(ctx, u.Host); err != nil {
			res.err = err
			return res
		}
	}

	delays := l.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, link.URL, l.Fetcher.Fetch, delays, l.logger())
	if err != nil {
		res.err = err
		return res
	}

	if links, err := l.LinkSelector.ExtractLinks(html, link.URL); err == nil {
		res.discovered = links
	}

	extracted, err := l.Extractor.Extract(html)
	for _, fallback := range l.Fallbacks {
		if err == nil && strings.TrimSpace(extracted.ContentHTML) != "" {
			break
		}
		extracted, err = fallback.Extract(html)
	}
	if err != nil {
		res.err = fmt.Errorf("extract %s: %w", link.URL, err)
		return res
	}

	markdown, err := l.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		res.err = fmt.Errorf("convert %s: %w", link.URL, err)
		return res
	}

	res.doc = cratedocs.Document{
		Path:    strings.TrimPrefix(u.Path, c.prefix),
		Content: strings.TrimSpace(markdown),
	}
	if c.versions && link.URL == c.root.String() {
		res.version = l.Versions.DetectVersion(html)
	}
	return res
}

// handle records a page result and queues its in-scope links.
func (c *crawlState) handle(res fetched, frontier cratedocs.URLFrontier) {
	for _, link := range res.discovered {
		if c.inScope(link.URL) {
			frontier.Push(link)
		}
	}

	if res.err != nil {
		c.failed++
		if c.firstErr == nil {
			c.firstErr = res.err
		}
		c.loader.logger().Warn("page failed", "url", res.url, "error", res.err)
		return
	}
	if c.version == "" && res.version != "" {
		c.version = res.version
	}
	if res.doc.Content == "" {
		return
	}

	h := xxhash.Sum64String(res.doc.Content)
	if _, ok := c.hashes[h]; ok {
		c.duplicates++
		return
	}
	c.hashes[h] = struct{}{}
	c.docs = append(c.docs, positioned{position: res.position, doc: res.doc})
}

// inScope reports whether rawURL is an HTML page under the crate root.
func (c *crawlState) inScope(rawURL string) bool {
	u, err := url.Parse(Canonicalize(rawURL))
	if err != nil {
		return false
	}
	if u.Host != c.root.Host || u.Scheme != c.root.Scheme {
		return false
	}
	return strings.HasPrefix(u.Path, c.prefix) && strings.HasSuffix(u.Path, ".html")
}

// EntryURL returns the docs.rs URL of a crate's documentation root.
// An empty version or "*" selects the latest release.
func EntryURL(baseURL, crateName, version string) string {
	if version == "" || version == cratedocs.VersionWildcard {
		version = "latest"
	}
	return fmt.Sprintf("%s/%s/%s/%s/",
		strings.TrimRight(baseURL, "/"),
		url.PathEscape(crateName),
		url.PathEscape(version),
		url.PathEscape(strings.ReplaceAll(crateName, "-", "_")),
	)
}

// VersionFromPath extracts the version segment from a docs.rs path of the
// form /{crate}/{version}/{module}/. It returns "" for "latest" and for
// paths of any other shape.
func VersionFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	v := parts[1]
	if v == "latest" || v == cratedocs.VersionWildcard || v == "" {
		return ""
	}
	if v[0] < '0' || v[0] > '9' {
		return ""
	}
	return v
}
