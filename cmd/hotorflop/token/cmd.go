// Package tokencmd implements the `hotorflop token` command.
package tokencmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"hotorflop/cmd/hotorflop/shared"
	"hotorflop/internal/middleware"
)

// Command implements `hotorflop token`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
	ttl time.Duration
}

// New creates the token command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "token <userID>",
		Short: "Mint a bearer token for a user (development only)",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	c.cmd.Flags().DurationVar(&c.ttl, "ttl", 24*time.Hour, "token lifetime")
	c.cmd.AddCommand(NewRevoke(ctx).Cmd())
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	if c.ctx.Config.IsProduction() {
		return fmt.Errorf("tokens are issued by the login service in production")
	}

	userID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || userID == 0 {
		return fmt.Errorf("invalid user ID %q", args[0])
	}
	if c.ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	token, err := middleware.IssueToken(c.ctx.Config, uint(userID), c.ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
