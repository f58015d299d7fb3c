package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/server"
	"github.com/matzehuels/stylegraph/pkg/store"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		snapshot string
		noStore  bool
	)

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a graph over HTTP",
		Long: `Serve a graph over HTTP with a websocket change stream on /events.

The graph is read from the given file, or else from the store snapshot named
by --snapshot, or else starts empty. Unless --no-store is set, every change
is saved back to that snapshot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			if snapshot == "" {
				snapshot = c.Config.Server.Snapshot
			}

			var st store.Store
			if !noStore {
				var err error
				if st, err = c.openStore(ctx); err != nil {
					return err
				}
				defer st.Close()
			}

			g, err := c.initialGraph(cmd, args, st, snapshot)
			if err != nil {
				return err
			}

			opts := []server.Option{server.WithLogger(c.Logger)}
			if st != nil {
				opts = append(opts, server.WithStore(st, snapshot))
			}
			srv := server.New(g, opts...)
			defer srv.Close()

			printSuccess("Serving on http://%s", addr)
			printStats(g.Stats())
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "store snapshot to load from and save to (default from config)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not save changes to the store")
	return cmd
}

func (c *CLI) initialGraph(cmd *cobra.Command, args []string, st store.Store, snapshot string) (*graph.Graph, error) {
	if len(args) == 1 {
		return c.loadGraph(cmd.Context(), args[0])
	}
	if st == nil {
		return graph.New(), nil
	}
	g, _, err := store.Load(cmd.Context(), st, snapshot)
	if errors.Is(err, errors.ErrCodeNotFound) {
		c.Logger.Info("starting with an empty graph", "snapshot", snapshot)
		return graph.New(), nil
	}
	return g, err
}
