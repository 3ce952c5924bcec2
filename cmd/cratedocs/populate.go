package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/ingest"
)

func (c *CLI) runIngest(deps *Dependencies) error {
	if deps.Ingester == nil {
		return cratedocs.Errorf(cratedocs.EINTERNAL, "ingester not configured")
	}

	var started time.Time
	deps.Ingester.Progress = func(e ingest.Event) {
		if e.Type == ingest.EventLoadStarted {
			started = deps.now()
		}
		c.printProgress(deps, e)
	}

	summary, err := deps.Ingester.Ingest(deps.Ctx, ingest.Request{
		CrateName: c.CrateName,
		Version:   c.Version,
		Features:  c.Features,
		MaxPages:  c.MaxPages,
		Force:     c.Force,
		DryRun:    c.Test,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ingestErrorMessage(err))
		return err
	}

	out := deps.Stdout
	switch summary.Outcome {
	case ingest.OutcomeSkipped:
		fmt.Fprintf(out, "Embeddings already exist for %s. Use --force to regenerate.\n", c.CrateName)

	case ingest.OutcomeNoDocuments:
		fmt.Fprintf(out, "No documents found for crate: %s\n", c.CrateName)

	case ingest.OutcomePreview:
		fmt.Fprintln(out, "\nTest mode - showing loaded documents:")
		for i, d := range summary.Preview.Documents {
			fmt.Fprintf(out, "  %d: %s (%s)\n", i+1, d.Path, FormatKB(d.Bytes))
			if d.Snippet != "" {
				fmt.Fprintf(out, "     Preview: %s...\n", d.Snippet)
			}
		}
		fmt.Fprintf(out, "\nSummary: %d documents, %s total content\n", summary.Documents, FormatKB(summary.TotalBytes))

	case ingest.OutcomeCompleted:
		fmt.Fprintf(out, "\nComplete! Total time: %s\n", FormatSeconds(deps.now().Sub(started)))
		fmt.Fprintln(out, "Final Summary:")
		fmt.Fprintf(out, "  Document loading: %s\n", FormatSeconds(summary.LoadDuration))
		fmt.Fprintf(out, "  Embedding generation: %s\n", FormatSeconds(summary.EmbedDuration))
		fmt.Fprintf(out, "  Database storage: %s\n", FormatSeconds(summary.StoreDuration))
		fmt.Fprintf(out, "  Estimated cost: %s\n", FormatCost(summary.Cost))
	}
	return nil
}

func (c *CLI) printProgress(deps *Dependencies, e ingest.Event) {
	out := deps.Stdout
	s := e.Summary
	switch e.Type {
	case ingest.EventLoadStarted:
		fmt.Fprintf(out, "Loading documentation for crate: %s (max %d pages)\n", c.CrateName, c.MaxPages)
	case ingest.EventLoadFinished:
		fmt.Fprintf(out, "Loaded %d documents in %s (%s total)\n",
			s.Documents, FormatSeconds(s.LoadDuration), FormatKB(s.TotalBytes))
		if s.Version != "" {
			fmt.Fprintf(out, "Detected version: %s\n", s.Version)
		}
	case ingest.EventEmbedStarted:
		fmt.Fprintln(out, "\nGenerating embeddings...")
	case ingest.EventEmbedFinished:
		fmt.Fprintf(out, "Generated %d embeddings using %d tokens in %s (Est. Cost: %s)\n",
			s.Embeddings, s.TotalTokens, FormatSeconds(s.EmbedDuration), FormatCost(s.Cost))
	case ingest.EventStoreStarted:
		fmt.Fprintln(out, "\nStoring in database...")
	case ingest.EventStoreFinished:
		fmt.Fprintf(out, "Successfully stored %d embeddings for %s in %s\n",
			s.Embeddings, c.CrateName, FormatSeconds(s.StoreDuration))
	}
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// ingestErrorMessage prefixes the failing phase and crate. Internal errors
// are shown verbatim.
func ingestErrorMessage(err error) string {
	var pe *ingest.PhaseError
	if !errors.As(err, &pe) {
		return cratedocs.ErrorMessage(err)
	}
	msg := cratedocs.ErrorMessage(pe.Err)
	if cratedocs.ErrorCode(pe.Err) == cratedocs.EINTERNAL {
		msg = pe.Err.Error()
	}
	return fmt.Sprintf("%s %s: %s", pe.Phase, pe.Crate, msg)
}
