package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/stylesheet"
)

func (c *CLI) applyCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply <file> <stylesheet>",
		Short: "Apply a YAML or TOML stylesheet to a graph",
		Long: `Apply a stylesheet. Styles with an id already in the graph are
updated in place and keep their node and edge assignments; other styles are
added. Default entries overwrite existing defaults for the same meta-target.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := stylesheet.Load(args[1])
			if err != nil {
				return err
			}
			g, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := stylesheet.Apply(g.Styles(), sheet)
			if err != nil {
				return err
			}
			printApplyResult(res)
			if dryRun || !res.Changed() {
				return nil
			}
			return c.saveGraph(cmd.Context(), g, args[0])
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report changes without writing the graph")
	return cmd
}

func printApplyResult(res stylesheet.ApplyResult) {
	if !res.Changed() {
		printInfo("No changes")
		return
	}
	printSuccess("Applied stylesheet")
	if len(res.Added) > 0 {
		printDetail("added %s", formatIDs(res.Added))
	}
	if len(res.Updated) > 0 {
		printDetail("updated %s", formatIDs(res.Updated))
	}
	if res.Defaults > 0 {
		printDetail("%d defaults set", res.Defaults)
	}
}

func (c *CLI) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file> <stylesheet>",
		Short: "Re-apply a stylesheet whenever it changes",
		Long: `Apply a stylesheet, then keep watching it and re-apply on every save
until interrupted. A stylesheet that fails to parse or apply is reported and
the graph is left as it was.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, sheetPath := args[0], args[1]

			g, err := c.loadGraph(ctx, path)
			if err != nil {
				return err
			}
			sheet, err := stylesheet.Load(sheetPath)
			if err != nil {
				return err
			}
			if err := c.applyAndSave(ctx, g, path, sheet); err != nil {
				return err
			}

			printInfo("Watching %s (ctrl+c to stop)", sheetPath)
			return stylesheet.Watch(ctx, sheetPath, stylesheet.DefaultDebounce, func(s *stylesheet.Sheet, err error) {
				if err != nil {
					printError("%s", errors.UserMessage(err))
					return
				}
				if err := c.applyAndSave(ctx, g, path, s); err != nil {
					printError("%s", errors.UserMessage(err))
				}
			})
		},
	}
}

func (c *CLI) applyAndSave(ctx context.Context, g *graph.Graph, path string, s *stylesheet.Sheet) error {
	prog := newProgress(c.Logger)
	res, err := stylesheet.Apply(g.Styles(), s)
	if err != nil {
		return err
	}
	if !res.Changed() {
		return nil
	}
	if err := c.saveGraph(ctx, g, path); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Applied %d new and %d updated styles", len(res.Added), len(res.Updated)))
	return nil
}
