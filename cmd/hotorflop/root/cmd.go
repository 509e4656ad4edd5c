// Package rootcmd wires the root cobra.Command for the hotorflop binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	migratecmd "hotorflop/cmd/hotorflop/migrate"
	recountcmd "hotorflop/cmd/hotorflop/recount"
	seedcmd "hotorflop/cmd/hotorflop/seed"
	servecmd "hotorflop/cmd/hotorflop/serve"
	"hotorflop/cmd/hotorflop/shared"
	tokencmd "hotorflop/cmd/hotorflop/token"
)

// New creates the root command with a fresh shared context.
func New() *cobra.Command {
	return NewWithContext(&shared.Context{})
}

// NewWithContext creates the root command around ctx.
func NewWithContext(ctx *shared.Context) *cobra.Command {
	root := &cobra.Command{
		Use:           "hotorflop",
		Short:         "hot or flop? API server and maintenance tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return ctx.Load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.AddCommand(
		servecmd.New(ctx).Cmd(),
		migratecmd.New(ctx).Cmd(),
		seedcmd.New(ctx).Cmd(),
		recountcmd.New(ctx).Cmd(),
		tokencmd.New(ctx).Cmd(),
	)

	return root
}
