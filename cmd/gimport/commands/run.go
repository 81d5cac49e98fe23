package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <module> [symbol]",
		Short: "Import a module and call one of its exported functions",
		Long: "Import a module, building it first when its sources changed, and call\n" +
			"the exported func() or func() error named by symbol (default " + DefaultSymbol + ").",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), args[0], symbolArg(args), options(cmd))
		},
	}
}

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <module> [symbol]",
		Short: "Run a module and reload it whenever its sources change",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), args[0], symbolArg(args), options(cmd))
		},
	}
}
