package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/stylesheet"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

func (c *CLI) styleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Manage the styles of a graph",
	}
	cmd.AddCommand(c.styleAddCommand())
	cmd.AddCommand(c.styleUpdateCommand())
	cmd.AddCommand(c.styleRemoveCommand())
	cmd.AddCommand(c.styleListCommand())
	cmd.AddCommand(c.styleExportCommand())
	return cmd
}

func (c *CLI) styleAddCommand() *cobra.Command {
	var (
		id    int32
		s     style.Style
		props []string
	)

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a style",
		Example: `  stylegraph style add graph.sgb --name "Default Task" --meta Task \
      --prop fill=#ff8800 --prop shape=box --prop border.width=2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseProperties(props)
			if err != nil {
				return err
			}
			st := s
			st.Properties = p
			err = c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				st.ID = style.ID(id)
				if st.ID == style.NoStyle {
					st.ID = g.Styles().NextID()
				}
				return g.Styles().AddStyle(&st)
			})
			if err != nil {
				return err
			}
			printSuccess("Added style %d", st.ID)
			return nil
		},
	}

	cmd.Flags().Int32Var(&id, "id", 0, "style id (default: next free id)")
	cmd.Flags().StringVar(&s.Name, "name", "", "display name")
	cmd.Flags().StringVar(&s.MetaTarget, "meta", "", "meta-target the style is designed for")
	cmd.Flags().StringVar(&s.Target, "target", "", "selector or category tag")
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "property as name=value or name:type=value (repeatable)")
	return cmd
}

func (c *CLI) styleUpdateCommand() *cobra.Command {
	var (
		name, meta, target string
		props, unset       []string
	)

	cmd := &cobra.Command{
		Use:   "update <file> <id>",
		Short: "Change a style's fields and properties",
		Long: `Change a style. Only the flags given are applied: --prop sets or
overwrites a property, --unset removes one. Entity assignments are kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseStyleID(args[1])
			if err != nil {
				return err
			}
			p, err := parseProperties(props)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			err = c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				return g.Styles().UpdateStyle(id, func(s *style.Style) error {
					if flags.Changed("name") {
						s.Name = name
					}
					if flags.Changed("meta") {
						s.MetaTarget = meta
					}
					if flags.Changed("target") {
						s.Target = target
					}
					for _, n := range unset {
						s.Properties.Delete(n)
					}
					for n, v := range p.All() {
						if err := s.Properties.Set(n, v); err != nil {
							return err
						}
					}
					return nil
				})
			})
			if err != nil {
				return err
			}
			printSuccess("Updated style %d", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&meta, "meta", "", "meta-target")
	cmd.Flags().StringVar(&target, "target", "", "selector or category tag")
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "property to set (repeatable)")
	cmd.Flags().StringArrayVar(&unset, "unset", nil, "property to remove (repeatable)")
	return cmd
}

func (c *CLI) styleRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <id>",
		Short: "Remove a style",
		Long: `Remove a style and clear it from every node and edge that uses it.
A style that is the default for some meta-target cannot be removed until
the default is cleared.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseStyleID(args[1])
			if err != nil {
				return err
			}
			var removed *style.Style
			err = c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				removed, err = g.RemoveStyle(id)
				return err
			})
			if errors.Is(err, errors.ErrCodeInUseAsDefault) {
				printNextStep("Clear the default first", "stylegraph default clear "+args[0]+" <kind> <meta>")
			}
			if err != nil {
				return err
			}
			printSuccess("Removed style %d", id)
			if n := removed.NodeIDs.Len() + removed.EdgeIDs.Len(); n > 0 {
				printDetail("cleared from %d entities", n)
			}
			return nil
		},
	}
}

func (c *CLI) styleListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List styles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m := g.Styles()
			for _, s := range m.Styles() {
				printStyle(m, s)
			}
			if m.Count() == 0 {
				printInfo("No styles")
			}
			return nil
		},
	}
}

func (c *CLI) styleExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the styles and defaults as a YAML stylesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
				}
				defer f.Close()
				w = f
			}
			if err := stylesheet.FromManager(g.Styles()).WriteYAML(w); err != nil {
				return err
			}
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *CLI) defaultCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "default",
		Short: "Set or clear per-meta-target default styles",
	}

	set := &cobra.Command{
		Use:   "set <file> <node|edge> <meta-target> <style-id>",
		Short: "Make a style the default for a meta-target",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[1])
			if err != nil {
				return err
			}
			id, err := parseStyleID(args[3])
			if err != nil {
				return err
			}
			if err := c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				return g.Styles().SetDefaultStyle(args[2], id, kind)
			}); err != nil {
				return err
			}
			printSuccess("Default %s style for %s is %d", kind, args[2], id)
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear <file> <node|edge> <meta-target>",
		Short: "Remove the default for a meta-target",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[1])
			if err != nil {
				return err
			}
			if err := c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				g.Styles().ClearDefaultStyle(args[2], kind)
				return nil
			}); err != nil {
				return err
			}
			printSuccess("Cleared default %s style for %s", kind, args[2])
			return nil
		},
	}

	cmd.AddCommand(set, clear)
	return cmd
}

// entityArgs parses "<style-id> <node|edge> <entity-id>".
func entityArgs(args []string) (style.ID, style.Kind, topology.ID, error) {
	id, err := parseStyleID(args[0])
	if err != nil {
		return 0, 0, 0, err
	}
	kind, err := parseKind(args[1])
	if err != nil {
		return 0, 0, 0, err
	}
	eid, err := parseEntityID(args[2])
	return id, kind, eid, err
}

func (c *CLI) attachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <file> <style-id> <node|edge> <entity-id>",
		Short: "Assign a style to a node or edge",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, kind, eid, err := entityArgs(args[1:])
			if err != nil {
				return err
			}
			if err := c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				return g.SetStyle(kind, eid, id)
			}); err != nil {
				return err
			}
			printSuccess("Attached style %d to %s %d", id, kind, eid)
			return nil
		},
	}
}

func (c *CLI) detachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detach <file> <style-id> <node|edge> <entity-id>",
		Short: "Detach a node or edge from a style",
		Long: `Detach a node or edge from a style. When the style is the entity's
explicit style, the entity falls back to its meta-target default. Detaching
an entity that is not attached does nothing.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, kind, eid, err := entityArgs(args[1:])
			if err != nil {
				return err
			}
			if err := c.editGraph(cmd.Context(), args[0], func(g *graph.Graph) error {
				if e, ok := g.Entity(kind, eid); ok && e.AssignedStyle() == id {
					g.ClearStyle(kind, eid)
					return nil
				}
				g.Styles().Detach(id, eid, kind)
				return nil
			}); err != nil {
				return err
			}
			printSuccess("Detached %s %d from style %d", kind, eid, id)
			return nil
		},
	}
}

func (c *CLI) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file> <node|edge> <entity-id>",
		Short: "Show the effective style of a node or edge",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[1])
			if err != nil {
				return err
			}
			eid, err := parseEntityID(args[2])
			if err != nil {
				return err
			}
			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			e, ok := g.Entity(kind, eid)
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "%s %d not found", kind, eid)
			}

			s := g.Resolve(kind, eid)
			if s == nil {
				printInfo("%s %d has no style", kind, eid)
				return nil
			}
			source := "explicit"
			if e.AssignedStyle() != s.ID {
				source = fmt.Sprintf("default for %s", e.MetaTarget())
			}
			printKeyValue("resolved", fmt.Sprintf("%d (%s)", s.ID, source))
			printStyle(g.Styles(), s)
			return nil
		},
	}
}
