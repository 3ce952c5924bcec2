package main

import (
	"fmt"

	"github.com/fwojciec/cratedocs"
)

func (c *CLI) runDelete(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "Deleting embeddings for crate: %s\n", c.Delete)
	if err := deps.Crates.DeleteCrateEmbeddings(deps.Ctx, c.Delete); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cratedocs.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Successfully deleted embeddings for %s\n", c.Delete)
	return nil
}
