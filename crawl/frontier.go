package crawl

import (
	"container/heap"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/bloom"
)

var _ cratedocs.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory priority queue of pages to crawl with Bloom
// filter deduplication. It is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue *linkHeap
	seq   int
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &linkHeap{}
	heap.Init(h)
	return &Frontier{
		seen:  bloom.NewFilter(n, fpRate),
		queue: h,
	}
}

// Push adds a link to the frontier. Returns false if the page was already
// queued. Links are canonicalized first, so fragments, query strings and
// a directory versus its index.html all count as the same page.
func (f *Frontier) Push(link cratedocs.DiscoveredLink) bool {
	link.URL = Canonicalize(link.URL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.seen.Visit(link.URL) {
		return false
	}
	heap.Push(f.queue, queued{link: link, seq: f.seq})
	f.seq++
	return true
}

// Pop returns the highest priority link. Links of equal priority come out
// in the order they were pushed.
func (f *Frontier) Pop() (cratedocs.DiscoveredLink, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return cratedocs.DiscoveredLink{}, false
	}
	q, _ := heap.Pop(f.queue).(queued)
	return q.link, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Seen returns true if the page has been queued.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(Canonicalize(rawURL))
}

// Canonicalize strips the fragment and query from rawURL and maps a
// directory URL to its index.html. Unparseable URLs are returned unchanged.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		u.Path += "index.html"
		u.RawPath = ""
	}
	if u.Path[0] != '/' && u.Host != "" {
		u.Path = "/" + u.Path
	}
	return u.String()
}

type queued struct {
	link cratedocs.DiscoveredLink
	seq  int
}

// linkHeap is a max-heap on priority, FIFO within a priority.
type linkHeap []queued

func (h linkHeap) Len() int { return len(h) }

func (h linkHeap) Less(i, j int) bool {
	if h[i].link.Priority != h[j].link.Priority {
		return h[i].link.Priority > h[j].link.Priority
	}
	return h[i].seq < h[j].seq
}

func (h linkHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *linkHeap) Push(x any) {
	q, _ := x.(queued)
	*h = append(*h, q)
}

func (h *linkHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
