package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/cratedocs"
)

const listRow = "%-20s %-15s %-10s %-10s %-20s\n"

func (c *CLI) runList(deps *Dependencies) error {
	stats, err := deps.Crates.GetCrateStats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cratedocs.ErrorMessage(err))
		return err
	}

	if len(stats) == 0 {
		fmt.Fprintln(deps.Stdout, "No crates in database.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, listRow, "Crate", "Version", "Docs", "Tokens", "Last Updated")
	fmt.Fprintln(deps.Stdout, strings.Repeat("-", 80))
	for _, st := range stats {
		fmt.Fprintf(deps.Stdout, listRow,
			st.Name,
			FormatVersion(st.Version),
			fmt.Sprint(st.TotalDocs),
			fmt.Sprint(st.TotalTokens),
			st.LastUpdated.Format("2006-01-02 15:04"),
		)
	}
	return nil
}
