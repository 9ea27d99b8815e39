package cmd

import (
	"context"
	"errors"
	"math/rand"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TFMV/dijkstraviz/board"
	"github.com/TFMV/dijkstraviz/loop"
	"github.com/TFMV/dijkstraviz/server"
	"github.com/TFMV/dijkstraviz/ui"
)

func serveCmd() *cobra.Command {
	var (
		addr  string
		nodes int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an interactive board over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg
			if cmd.Flags().Changed("nodes") {
				c.Graph.Nodes = nodes
			}
			if err := c.Validate(); err != nil {
				return err
			}

			l := loop.New()
			b, err := board.New(c,
				board.WithScheduler(l),
				board.WithRand(rand.New(rand.NewSource(seed))),
				board.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			bounds, err := c.Bounds()
			if err != nil {
				return err
			}
			// The loop is not running yet, so the board is still ours.
			if _, err := b.CreateGraph(c.Graph.Nodes, bounds); err != nil {
				return err
			}

			ui.Banner(cmd.OutOrStdout(), "serving on "+ui.Info.Sprint("http://"+displayAddr(addr)))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				return server.New(b, l, logger).ListenAndServe(ctx, addr)
			})
			return g.Wait()
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "localhost:8080", "Address to listen on")
	f.IntVarP(&nodes, "nodes", "n", 0, "Number of nodes (default from config)")
	f.Int64Var(&seed, "seed", 1, "Random seed")

	return cmd
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
