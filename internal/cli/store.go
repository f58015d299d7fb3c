package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/store"
)

func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save and load named graph snapshots",
		Long: `Save and load named graph snapshots in the configured store.

The backend is set in the [store] section of the config file: file (default),
memory, sqlite, redis or mongo.`,
	}
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	return cmd
}

func (c *CLI) storePutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <file>",
		Short: "Save a graph file as a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := c.loadGraph(ctx, args[1])
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			var snap store.Snapshot
			err = withSpinner(ctx, "Saving "+args[0], func() error {
				snap, err = store.Save(ctx, st, args[0], g)
				return err
			})
			if err != nil {
				return err
			}
			printSuccess("Saved %s", snap.Name)
			printSnapshot(snap)
			return nil
		},
	}
}

func (c *CLI) storeGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name> <file>",
		Short: "Write a snapshot to a graph file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			var (
				g    *graph.Graph
				snap store.Snapshot
			)
			err = withSpinner(ctx, "Loading "+args[0], func() error {
				g, snap, err = store.Load(ctx, st, args[0])
				return err
			})
			if err != nil {
				return err
			}
			if err := c.saveGraph(ctx, g, args[1]); err != nil {
				return err
			}
			printSuccess("Loaded %s", snap.Name)
			printStats(g.Stats())
			printFile(args[1])
			return nil
		},
	}
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			snaps, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				printInfo("No snapshots")
				return nil
			}
			for _, s := range snaps {
				fmt.Println(StyleHighlight.Render(s.Name))
				printSnapshot(s)
			}
			return nil
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>...",
		Short: "Delete snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, name := range args {
				if err := st.Delete(ctx, name); err != nil {
					return err
				}
				printSuccess("Deleted %s", name)
			}
			return nil
		},
	}
}

func printSnapshot(s store.Snapshot) {
	printDetail("%s · %d bytes · %s", s.Digest[:12], s.Size, s.CreatedAt.Local().Format(time.DateTime))
}
