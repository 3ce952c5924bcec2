// Package ingest runs the crate documentation ingestion pipeline: it loads a
// crate's documentation, embeds it, and commits the result to the crate store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/cratedocs"
)

// Phase names a step of the pipeline.
type Phase string

// Pipeline phases, in execution order.
const (
	PhaseCheck    Phase = "check"
	PhaseProvider Phase = "provider"
	PhaseLoad     Phase = "load"
	PhaseEmbed    Phase = "embed"
	PhaseCount    Phase = "count"
	PhaseStore    Phase = "store"
)

// PhaseError reports which phase of an ingestion failed.
type PhaseError struct {
	Phase Phase
	Crate string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Crate, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Outcome describes how an ingestion ended.
type Outcome string

// Ingestion outcomes.
const (
	OutcomeSkipped     Outcome = "skipped"
	OutcomeNoDocuments Outcome = "no_documents"
	OutcomePreview     Outcome = "preview"
	OutcomeCompleted   Outcome = "completed"
)

const (
	previewDocuments = 3
	previewChars     = 100
)

// Request describes a single ingestion.
type Request struct {
	CrateName string
	Version   string
	Features  []string
	MaxPages  int
	Force     bool // Regenerate even if embeddings already exist
	DryRun    bool // Load and preview only; no provider or store calls
}

// DocumentPreview describes a loaded document.
type DocumentPreview struct {
	Path    string
	Bytes   int
	Snippet string // Single-line excerpt, set for the first few documents only
}

// Preview is the dry-run view of what would be embedded.
type Preview struct {
	Documents []DocumentPreview // Every loaded document, in load order
}

// EventType identifies a progress event.
type EventType int

// Progress event types, in emission order.
const (
	EventLoadStarted EventType = iota
	EventLoadFinished
	EventEmbedStarted
	EventEmbedFinished
	EventStoreStarted
	EventStoreFinished
)

// Event reports pipeline progress. Summary holds the values known so far.
type Event struct {
	Type    EventType
	Summary Summary
}

// ProgressFunc is called as the pipeline moves between phases.
type ProgressFunc func(Event)

// Summary reports the result of an ingestion.
type Summary struct {
	Outcome        Outcome
	Crate          string
	Version        string
	Documents      int
	TotalBytes     int // Content size of the loaded documents
	Embeddings     int
	TotalTokens    int // Sum of independently counted chunk tokens
	ProviderTokens int // Token total reported by the embedder
	LoadDuration   time.Duration
	EmbedDuration  time.Duration
	StoreDuration  time.Duration
	Cost           float64
	Preview        *Preview
}

// EmbedderFactory constructs the embedder on first use.
type EmbedderFactory func() (cratedocs.Embedder, error)

// ConfigValidator checks the provider configuration without constructing a
// client.
type ConfigValidator func() error

// Ingester orchestrates loading, embedding and storing a crate's documentation.
type Ingester struct {
	Crates   cratedocs.CrateService
	Loader   cratedocs.DocumentLoader
	Tokens   cratedocs.TokenCounter
	Binding  *cratedocs.EmbedderBinding
	Factory  EmbedderFactory
	Validate ConfigValidator // Checked instead of Factory on dry runs
	Logger   *slog.Logger
	Progress ProgressFunc
	Now      func() time.Time
	CostRate float64 // USD per million tokens, DefaultCostPerMillion when zero
}

// NewIngester returns an Ingester with a fresh binding and default settings.
func NewIngester(
	crates cratedocs.CrateService,
	loader cratedocs.DocumentLoader,
	tokens cratedocs.TokenCounter,
	factory EmbedderFactory,
	logger *slog.Logger,
) *Ingester {
	return &Ingester{
		Crates:  crates,
		Loader:  loader,
		Tokens:  tokens,
		Binding: &cratedocs.EmbedderBinding{},
		Factory: factory,
		Logger:  logger,
	}
}

// Ingest runs the pipeline for a single crate.
func (in *Ingester) Ingest(ctx context.Context, req Request) (*Summary, error) {
	if strings.TrimSpace(req.CrateName) == "" {
		return nil, cratedocs.Errorf(cratedocs.EINVALID, "crate name required")
	}
	if req.MaxPages < 0 {
		return nil, cratedocs.Errorf(cratedocs.EINVALID, "max pages must not be negative")
	}
	if req.MaxPages == 0 {
		req.MaxPages = cratedocs.DefaultMaxPages
	}
	fail := func(phase Phase, err error) (*Summary, error) {
		return nil, &PhaseError{Phase: phase, Crate: req.CrateName, Err: err}
	}
	logger := in.logger().With("crate", req.CrateName)

	exists, err := in.Crates.HasEmbeddings(ctx, req.CrateName)
	if err != nil {
		return fail(PhaseCheck, err)
	}
	if exists && !req.Force {
		logger.Info("embeddings already exist, skipping")
		return &Summary{Outcome: OutcomeSkipped, Crate: req.CrateName}, nil
	}

	var embedder cratedocs.Embedder
	if req.DryRun {
		if in.Validate != nil {
			if err := in.Validate(); err != nil {
				return fail(PhaseProvider, err)
			}
		}
	} else if embedder, err = in.embedder(); err != nil {
		return fail(PhaseProvider, err)
	}
	if err := ctx.Err(); err != nil {
		return fail(PhaseLoad, err)
	}

	in.emit(EventLoadStarted, &Summary{Crate: req.CrateName})
	start := in.now()
	loaded, err := in.Loader.Load(ctx, cratedocs.LoadRequest{
		CrateName: req.CrateName,
		Version:   req.Version,
		Features:  req.Features,
		MaxPages:  req.MaxPages,
	})
	if err != nil {
		return fail(PhaseLoad, err)
	}
	docs := loaded.Documents
	if len(docs) > req.MaxPages {
		logger.Warn("loader exceeded max pages, truncating", "documents", len(docs), "max_pages", req.MaxPages)
		docs = docs[:req.MaxPages]
	}
	summary := &Summary{
		Crate:        req.CrateName,
		Version:      loaded.Version,
		Documents:    len(docs),
		LoadDuration: in.now().Sub(start),
	}
	for _, d := range docs {
		summary.TotalBytes += len(d.Content)
	}
	in.emit(EventLoadFinished, summary)

	if len(docs) == 0 {
		summary.Outcome = OutcomeNoDocuments
		return summary, nil
	}

	if req.DryRun {
		summary.Outcome = OutcomePreview
		summary.Preview = buildPreview(docs)
		return summary, nil
	}

	if err := ctx.Err(); err != nil {
		return fail(PhaseEmbed, err)
	}
	in.emit(EventEmbedStarted, summary)
	start = in.now()
	embedded, err := embedder.Embed(ctx, docs)
	if err != nil {
		return fail(PhaseEmbed, err)
	}
	summary.ProviderTokens = embedded.TotalTokens

	records, total, err := in.buildRecords(ctx, embedded.Chunks)
	if err != nil {
		return fail(PhaseCount, err)
	}
	if total != embedded.TotalTokens {
		logger.Warn("token count mismatch", "counted", total, "provider", embedded.TotalTokens)
	}
	summary.Embeddings = len(records)
	summary.TotalTokens = total
	summary.Cost = cratedocs.EstimateCost(total, in.costRate())
	summary.EmbedDuration = in.now().Sub(start)
	in.emit(EventEmbedFinished, summary)

	if len(records) == 0 {
		summary.Outcome = OutcomeNoDocuments
		return summary, nil
	}
	if err := ctx.Err(); err != nil {
		return fail(PhaseStore, err)
	}

	in.emit(EventStoreStarted, summary)
	start = in.now()
	crateID, err := in.Crates.UpsertCrate(ctx, req.CrateName, loaded.Version)
	if err != nil {
		return fail(PhaseStore, err)
	}
	if err := in.Crates.InsertEmbeddingsBatch(ctx, crateID, req.CrateName, records); err != nil {
		return fail(PhaseStore, err)
	}
	summary.StoreDuration = in.now().Sub(start)
	summary.Outcome = OutcomeCompleted
	in.emit(EventStoreFinished, summary)
	return summary, nil
}

// embedder returns the bound embedder, constructing and binding it on first use.
func (in *Ingester) embedder() (cratedocs.Embedder, error) {
	if in.Binding == nil {
		return nil, cratedocs.Errorf(cratedocs.EINTERNAL, "embedder binding not configured")
	}
	return in.Binding.BindOnce(func() (cratedocs.Embedder, error) {
		if in.Factory == nil {
			return nil, cratedocs.Errorf(cratedocs.ECONFIG, "no embedding provider configured")
		}
		return in.Factory()
	})
}

func (in *Ingester) buildRecords(ctx context.Context, chunks []cratedocs.EmbeddedChunk) ([]*cratedocs.EmbeddingRecord, int, error) {
	records := make([]*cratedocs.EmbeddingRecord, 0, len(chunks))
	total := 0
	for _, c := range chunks {
		n, err := in.Tokens.CountTokens(ctx, c.Content)
		if err != nil {
			return nil, 0, err
		}
		total += n
		records = append(records, &cratedocs.EmbeddingRecord{
			Path:       c.Path,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			Embedding:  c.Embedding,
			TokenCount: n,
		})
	}
	return records, total, nil
}

func buildPreview(docs []cratedocs.Document) *Preview {
	p := &Preview{Documents: make([]DocumentPreview, len(docs))}
	for i, d := range docs {
		p.Documents[i] = DocumentPreview{Path: d.Path, Bytes: len(d.Content)}
		if i < previewDocuments {
			p.Documents[i].Snippet = Snippet(d.Content, previewChars)
		}
	}
	return p
}

// Snippet returns the first n characters of s on a single line.
func Snippet(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func (in *Ingester) emit(typ EventType, summary *Summary) {
	if in.Progress != nil {
		in.Progress(Event{Type: typ, Summary: *summary})
	}
}

func (in *Ingester) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return in.Logger
}

func (in *Ingester) now() time.Time {
	if in.Now == nil {
		return time.Now()
	}
	return in.Now()
}

func (in *Ingester) costRate() float64 {
	if in.CostRate <= 0 {
		return cratedocs.DefaultCostPerMillion
	}
	return in.CostRate
}
