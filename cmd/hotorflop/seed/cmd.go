// Package seedcmd implements the `hotorflop seed` command.
package seedcmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hotorflop/cmd/hotorflop/shared"
	"hotorflop/internal/seed"
)

// Command implements `hotorflop seed`.
type Command struct {
	ctx    *shared.Context
	cmd    *cobra.Command
	opts   seed.Options
	preset string
}

// New creates the seed command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx, opts: seed.DefaultOptions}
	c.cmd = &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo users, posts and votes",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	f := c.cmd.Flags()
	f.IntVar(&c.opts.Users, "users", c.opts.Users, "number of random users")
	f.IntVar(&c.opts.PostsPerUser, "posts", c.opts.PostsPerUser, "posts per user")
	f.Float64Var(&c.opts.FollowChance, "follow-chance", c.opts.FollowChance, "probability that one user follows another")
	f.Float64Var(&c.opts.CloseChance, "close-chance", c.opts.CloseChance, "probability that a follow is marked close")
	f.Float64Var(&c.opts.VoteChance, "vote-chance", c.opts.VoteChance, "probability that a viewer votes")
	f.Int64Var(&c.opts.Seed, "seed", 0, "random seed (0 is random)")
	f.StringVar(&c.preset, "preset", "", "YAML preset to load instead of random data")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	if c.ctx.Config.IsProduction() {
		return errors.New("refusing to seed a production database")
	}

	db, err := c.ctx.DB()
	if err != nil {
		return err
	}

	var sum seed.Summary
	if c.preset != "" {
		p, err := seed.LoadPreset(c.preset)
		if err != nil {
			return err
		}
		sum, err = p.Apply(cmd.Context(), db)
		if err != nil {
			return err
		}
	} else {
		sum, err = seed.Seed(cmd.Context(), db, c.opts)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d relationships, %d posts, %d votes, %d comments\n",
		sum.Users, sum.Relationships, sum.Posts, sum.Votes, sum.Comments)
	return nil
}
