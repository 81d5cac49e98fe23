// Package commands implements the CLI commands for gimport.
package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.trai.ch/gimport/internal/app"
	"go.trai.ch/gimport/internal/build"
	"go.trai.ch/gimport/internal/core/domain"
)

// DefaultSymbol is called by run and watch when no symbol is given.
const DefaultSymbol = "Main"

// CLI represents the command line interface for gimport.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, names []string, opts app.Options) error
	Resolve(ctx context.Context, names []string, opts app.Options) error
	Run(ctx context.Context, name, symbol string, opts app.Options) error
	Watch(ctx context.Context, name, symbol string, opts app.Options) error
	Clean(ctx context.Context, opts app.Options) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "gimport",
		Short:         "Build and load Go plugins straight from source",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	// -v belongs to --verbose, so --version is declared without a shorthand.
	rootCmd.Flags().Bool("version", false, "Print the application version")
	rootCmd.InitDefaultVersionFlag()

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringSliceP("path", "p", nil, "Directories to search for module sources")
	flags.String("build-dir", "", "Global build root instead of a .gimport directory beside each source")
	flags.Bool("reload", false, "Serve reload copies so modules can be rebuilt and loaded again")
	flags.BoolP("force", "f", false, "Rebuild even when the artifact is up to date")
	flags.BoolP("verbose", "v", false, "Show compiler output and debug logs")
	flags.Bool("json-logs", false, "Write logs as JSON")
	flags.Bool("inplace", false, "Place artifacts beside their sources")
	flags.String("tags", "", "Comma separated build tags")
	flags.StringToStringP("option", "o", nil, "Extra build option as key=value")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// options collects the persistent flags into app options. Dedicated flags
// win over the same key passed through --option.
func options(cmd *cobra.Command) app.Options {
	f := cmd.Flags()
	paths, _ := f.GetStringSlice("path")
	buildDir, _ := f.GetString("build-dir")
	reload, _ := f.GetBool("reload")
	verbose, _ := f.GetBool("verbose")
	jsonLogs, _ := f.GetBool("json-logs")
	extra, _ := f.GetStringToString("option")

	buildOpts := domain.BuildOptions{}
	for k, v := range extra {
		buildOpts[k] = v
	}
	for _, name := range []string{domain.OptionForce, domain.OptionInPlace} {
		if f.Changed(name) {
			v, _ := f.GetBool(name)
			buildOpts[name] = strconv.FormatBool(v)
		}
	}
	if f.Changed(domain.OptionTags) {
		tags, _ := f.GetString(domain.OptionTags)
		buildOpts[domain.OptionTags] = tags
	}

	return app.Options{
		SearchPaths:  paths,
		BuildDir:     buildDir,
		Reload:       reload,
		Verbose:      verbose,
		JSONLogs:     jsonLogs,
		BuildOptions: buildOpts,
	}
}

func symbolArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return DefaultSymbol
}
