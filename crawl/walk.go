package crawl

import (
	"context"

	"github.com/fwojciec/cratedocs"
	"golang.org/x/sync/errgroup"
)

// fetched is the outcome of processing one dispatched link.
type fetched struct {
	position   int
	url        string
	doc        cratedocs.Document
	discovered []cratedocs.DiscoveredLink
	version    string
	err        error
}

// walkProcessor fetches and converts one page.
type walkProcessor func(ctx context.Context, link cratedocs.DiscoveredLink) fetched

// walkHandler consumes a result on the coordinator goroutine. It may push
// discovered links onto the frontier.
type walkHandler func(res fetched, frontier cratedocs.URLFrontier)

// walk drains frontier with concurrency workers, dispatching at most limit
// links. Results are handed to handle one at a time so it needs no locking.
// Positions are assigned in dispatch order.
func walk(ctx context.Context, frontier cratedocs.URLFrontier, concurrency, limit int, process walkProcessor, handle walkHandler) error {
	g, gctx := errgroup.WithContext(ctx)

	type job struct {
		position int
		link     cratedocs.DiscoveredLink
	}
	workCh := make(chan job, concurrency)
	resultCh := make(chan fetched)

	for range concurrency {
		g.Go(func() error {
			for j := range workCh {
				res := process(gctx, j.link)
				res.position = j.position
				select {
				case resultCh <- res:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	dispatched := 0
	pending := 0
	var next *cratedocs.DiscoveredLink
	pop := func() {
		if next == nil && dispatched < limit {
			if link, ok := frontier.Pop(); ok {
				next = &link
			}
		}
	}
	pop()

loop:
	for next != nil || pending > 0 {
		if next != nil {
			select {
			case <-ctx.Done():
				break loop
			case workCh <- job{position: dispatched, link: *next}:
				dispatched++
				pending++
				next = nil
			case res := <-resultCh:
				pending--
				handle(res, frontier)
			}
		} else {
			select {
			case <-ctx.Done():
				break loop
			case res := <-resultCh:
				pending--
				handle(res, frontier)
			}
		}
		pop()
	}

	close(workCh)
	go func() {
		for range resultCh {
		}
	}()
	_ = g.Wait()
	close(resultCh)

	return ctx.Err()
}
