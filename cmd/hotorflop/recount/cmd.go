// Package recountcmd implements the `hotorflop recount` command.
package recountcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hotorflop/cmd/hotorflop/shared"
	"hotorflop/internal/repository"
	"hotorflop/internal/service"
)

// Command implements `hotorflop recount`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the recount command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "recount",
		Short: "Rebuild every post's vote counters from the vote log",
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

	votes := service.NewVoteService(
		repository.NewVoteRepository(db),
		repository.NewPostRepository(db),
		nil,
		nil,
	)
	res, err := votes.Recount(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recounted %d posts, %d corrected\n", res.Posts, res.Changed)
	return nil
}
