package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

type entityFlags struct {
	id    int32
	meta  string
	label string
	style int32
}

func (f *entityFlags) register(cmd *cobra.Command, what string) {
	cmd.Flags().Int32Var(&f.id, "id", 0, what+" id (default: next free id)")
	cmd.Flags().StringVar(&f.meta, "meta", "", "meta-target used for default style lookup")
	cmd.Flags().StringVar(&f.label, "label", "", "display label")
	cmd.Flags().Int32Var(&f.style, "style", 0, "explicit style id")
}

func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add or remove nodes",
	}

	var f entityFlags
	add := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id topology.ID
			err := c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				id = topology.ID(f.id)
				if id == 0 {
					id = g.Topology().NextNodeID()
				}
				n := topology.Node{ID: id, MetaTarget: f.meta, Label: f.label}
				return g.AddNode(n, style.ID(f.style))
			})
			if err != nil {
				return err
			}
			printSuccess("Added node %d", id)
			return nil
		},
	}
	f.register(add, "node")

	remove := &cobra.Command{
		Use:   "remove <file> <id>",
		Short: "Remove a node and its edges",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntityID(args[1])
			if err != nil {
				return err
			}
			if err := c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				return g.RemoveNode(id)
			}); err != nil {
				return err
			}
			printSuccess("Removed node %d", id)
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Add or remove edges",
	}

	var f entityFlags
	add := &cobra.Command{
		Use:   "add <file> <from> <to>",
		Short: "Add a directed edge between two nodes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseEntityID(args[1])
			if err != nil {
				return err
			}
			to, err := parseEntityID(args[2])
			if err != nil {
				return err
			}
			var id topology.ID
			err = c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				id = topology.ID(f.id)
				if id == 0 {
					id = g.Topology().NextEdgeID()
				}
				e := topology.Edge{ID: id, From: from, To: to, MetaTarget: f.meta, Label: f.label}
				return g.AddEdge(e, style.ID(f.style))
			})
			if err != nil {
				return err
			}
			printSuccess("Added edge %d (%d %s %d)", id, from, iconArrow, to)
			return nil
		},
	}
	f.register(add, "edge")

	remove := &cobra.Command{
		Use:   "remove <file> <id>",
		Short: "Remove an edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntityID(args[1])
			if err != nil {
				return err
			}
			if err := c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				return g.RemoveEdge(id)
			}); err != nil {
				return err
			}
			printSuccess("Removed edge %d", id)
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}
