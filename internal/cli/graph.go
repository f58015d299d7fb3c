package cli

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	gio "github.com/matzehuels/stylegraph/pkg/io"
	"github.com/matzehuels/stylegraph/pkg/render/nodelink"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/stylesheet"
)

func (c *CLI) newCommand() *cobra.Command {
	var (
		sheet string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty graph file",
		Long: `Create an empty graph file. The encoding follows the extension:
.sgb for the binary format, .json for JSON.

With --sheet, the styles and defaults of a YAML or TOML stylesheet are
applied to the new graph.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", path)
			}

			g := graph.New()
			if sheet != "" {
				s, err := stylesheet.Load(sheet)
				if err != nil {
					return err
				}
				if _, err := stylesheet.Apply(g.Styles(), s); err != nil {
					return err
				}
			}
			if err := c.saveGraph(cmd.Context(), g, path); err != nil {
				return err
			}
			printSuccess("Created %s", path)
			printStats(g.Stats())
			printNextStep("Add a style", "stylegraph style add "+path+" --name Default --meta Node")
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "stylesheet to apply (.yaml, .yml, .toml)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) inspectCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show graph contents and styles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if interactive {
				_, err := tea.NewProgram(newBrowserModel(g), tea.WithAltScreen()).Run()
				return err
			}
			printInspect(args[0], g)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse styles interactively")
	return cmd
}

func printInspect(path string, g *graph.Graph) {
	s := g.Stats()
	fmt.Println(StyleTitle.Render(filepath.Base(path)))
	printStats(s)
	fmt.Println()

	m := g.Styles()
	for _, st := range m.Styles() {
		printStyle(m, st)
	}
	if m.Count() == 0 {
		printInfo("No styles")
	}
	fmt.Println()

	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		defs := m.Defaults(kind)
		for _, meta := range slices.Sorted(maps.Keys(defs)) {
			printKeyValue("default "+kind.String(), fmt.Sprintf("%s %s #%d", meta, iconArrow, defs[meta]))
		}
	}
	if s.UnstyledNodes > 0 || s.UnstyledEdges > 0 {
		printWarning("%d nodes and %d edges resolve to no style", s.UnstyledNodes, s.UnstyledEdges)
	}
}

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check graph files for broken style references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				g, err := gio.ImportFile(cmd.Context(), path)
				if err == nil {
					err = g.Validate()
				}
				if err != nil {
					printError("%s: %s", path, errors.UserMessage(err))
					failed++
					continue
				}
				printSuccess("%s", path)
			}
			if failed > 0 {
				return errors.New(errors.ErrCodeCorruptGraph, "%d of %d files invalid", failed, len(args))
			}
			return nil
		},
	}
}

func (c *CLI) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a graph between binary and JSON encodings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := c.saveGraph(cmd.Context(), g, args[1]); err != nil {
				return err
			}
			printSuccess("Converted %s", args[0])
			printFile(args[1])
			return nil
		},
	}
}

func (c *CLI) renderCommand() *cobra.Command {
	var (
		output string
		format string
		opts   nodelink.Options
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a graph as a node-link diagram",
		Long: `Render a graph with Graphviz, drawing every node and edge with its
resolved style. The format is taken from --format, else from the output
extension, else svg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output != "" {
				format = filepath.Ext(output)
			}
			if format == "" {
				format = string(nodelink.FormatSVG)
			}
			f, err := nodelink.ParseFormat(format)
			if err != nil {
				return err
			}
			if output == "" {
				base := args[0][:len(args[0])-len(filepath.Ext(args[0]))]
				output = base + "." + string(f)
			}

			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			data, err := nodelink.Render(cmd.Context(), g, f, opts)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", output)
			}
			prog.done("Rendered " + string(f))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: dot, svg, png")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include meta-target and style id in labels")
	cmd.Flags().BoolVar(&opts.Groups, "groups", false, "draw groups as clusters")
	return cmd
}
