package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/cratedocs"
	"github.com/fwojciec/cratedocs/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Crates   cratedocs.CrateService
	Ingester *ingest.Ingester
	Now      func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	CrateName   string   `short:"c" help:"The crate name to populate (e.g. tokio, serde)"`
	List        bool     `short:"l" help:"List all crates in the database"`
	Delete      string   `short:"d" placeholder:"NAME" help:"Delete embeddings for a specific crate"`
	Force       bool     `short:"f" help:"Force regeneration even if embeddings exist"`
	Test        bool     `short:"t" help:"Test mode: only load docs, don't generate embeddings"`
	Features    []string `short:"F" sep:"," help:"Optional features to enable for the crate"`
	MaxPages    int      `default:"10000" help:"Maximum number of pages to crawl"`
	Version     string   `short:"V" default:"*" help:"Crate version to load"`
	Concurrency int      `default:"10" help:"Concurrent fetch limit"`
	Export      string   `placeholder:"DIR" type:"path" help:"Also write loaded documents as markdown under DIR/<crate>"`
	Verbose     bool     `short:"v" help:"Enable debug logging"`
}

// Run dispatches to the action selected by the flags.
func (c *CLI) Run(deps *Dependencies) error {
	switch {
	case c.List:
		return c.runList(deps)
	case c.Delete != "":
		return c.runDelete(deps)
	case c.CrateName != "":
		return c.runIngest(deps)
	}
	fmt.Fprintln(deps.Stdout, "Please specify a crate name with --crate-name or use --list to see existing crates")
	return nil
}

// needsIngester reports whether the flags select an ingestion run.
func (c *CLI) needsIngester() bool {
	return !c.List && c.Delete == "" && c.CrateName != ""
}
