package tokencmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hotorflop/cmd/hotorflop/shared"
	"hotorflop/internal/middleware"
)

// RevokeCommand implements `hotorflop token revoke`.
type RevokeCommand struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// NewRevoke creates the revoke subcommand.
func NewRevoke(ctx *shared.Context) *RevokeCommand {
	c := &RevokeCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "revoke <token>",
		Short: "Reject a bearer token until it expires",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *RevokeCommand) Cmd() *cobra.Command { return c.cmd }

func (c *RevokeCommand) run(cmd *cobra.Command, args []string) error {
	claims, err := middleware.ParseToken(c.ctx.Config, args[0])
	if err != nil {
		return fmt.Errorf("cannot revoke token: %w", err)
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return errors.New("token has no id or expiry to revoke")
	}

	rdb := c.ctx.Redis()
	if rdb == nil {
		return errors.New("revocation needs Redis, which is unavailable")
	}
	defer func() { _ = rdb.Close() }()

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := middleware.Revoke(cmd.Context(), rdb, claims.ID, ttl); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Revoked token %s for user %s until %s\n",
		claims.ID, claims.Subject, claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	return nil
}
