// Package cli implements the stylegraph command-line interface.
//
// Commands operate on graph files in the binary (.sgb) or JSON (.json)
// encoding, picked from the file extension:
//   - new, inspect, validate, convert, render: whole-graph operations
//   - node, edge: topology editing
//   - style, default, attach, detach, resolve: style management
//   - apply, watch: stylesheet application
//   - store: named snapshots in the configured store backend
//   - serve: HTTP API with a websocket change stream
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports codec and store activity through the observability hooks.
package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stylegraph/internal/config"
	"github.com/matzehuels/stylegraph/pkg/buildinfo"
	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	gio "github.com/matzehuels/stylegraph/pkg/io"
	"github.com/matzehuels/stylegraph/pkg/observability"
	"github.com/matzehuels/stylegraph/pkg/store"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

const appName = "stylegraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Stylegraph manages styled graphs",
		Long:              `Stylegraph edits graphs whose nodes and edges carry styles, with per-type default styles, stylesheets, snapshots and a live HTTP API.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: search $STYLEGRAPH_CONFIG, ./stylegraph.toml, XDG config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.edgeCommand())
	root.AddCommand(c.styleCommand())
	root.AddCommand(c.defaultCommand())
	root.AddCommand(c.attachCommand())
	root.AddCommand(c.detachCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and applies logging settings before any
// command runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if c.configPath != "" {
		cfg, path, err = config.LoadFromPath(c.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.Config = cfg

	level := cfg.LogLevel()
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}

	if level <= log.DebugLevel {
		hooks := &logHooks{logger: c.Logger}
		observability.Install(observability.Hooks{Codec: hooks, Store: hooks, HTTP: hooks})
	}
	return nil
}

// =============================================================================
// Graph Files
// =============================================================================

func (c *CLI) loadGraph(ctx context.Context, path string) (*graph.Graph, error) {
	g, err := gio.ImportFile(ctx, path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded graph", "path", path, "nodes", g.Topology().NodeCount(), "styles", g.Styles().Count())
	return g, nil
}

func (c *CLI) saveGraph(ctx context.Context, g *graph.Graph, path string) error {
	if err := gio.ExportFile(ctx, g, path); err != nil {
		return err
	}
	c.Logger.Debug("saved graph", "path", path)
	return nil
}

// editGraph loads the graph at path, runs fn and writes the result back
// when fn succeeds.
func (c *CLI) editGraph(ctx context.Context, path string, fn func(g *graph.Graph) error) error {
	g, err := c.loadGraph(ctx, path)
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	return c.saveGraph(ctx, g, path)
}

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, c.Config.Store)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "backend", c.Config.Store.Backend)
	return st, nil
}

// =============================================================================
// Argument Parsing
// =============================================================================

func parseStyleID(s string) (style.ID, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n <= 0 {
		return style.NoStyle, errors.New(errors.ErrCodeInvalidInput, "invalid style id %q", s)
	}
	return style.ID(n), nil
}

func parseEntityID(s string) (topology.ID, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid id %q", s)
	}
	return topology.ID(n), nil
}

func parseKind(s string) (style.Kind, error) {
	k, err := style.ParseKind(s)
	if err != nil {
		return k, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid kind")
	}
	return k, nil
}
