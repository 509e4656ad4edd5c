// Package migratecmd implements the `hotorflop migrate` command.
package migratecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hotorflop/cmd/hotorflop/shared"
	"hotorflop/internal/database"
)

// Command implements `hotorflop migrate`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the migrate command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	db, err := c.ctx.DB()
	if err != nil {
		return err
	}
	if err := database.Migrate(cmd.Context(), db); err != nil {
		return err
	}

	versions, err := database.AppliedVersions(cmd.Context(), db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (applied: %v)\n", database.SchemaVersion, versions)
	return nil
}
