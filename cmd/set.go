package cmd

import (
	"fmt"
	"os"

	"github.com/mylicula/relink/reconcile"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set SOURCE LINK",
	Short: "Ensure LINK is a symlink storing SOURCE as its target",
	Long: `Ensure LINK is a symlink storing SOURCE as its target.

Exits 0 when the link was created or replaced, 2 when it already stored
SOURCE and nothing was done, and 1 on any failure. An entry at LINK that
is not a symlink is never touched.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		outcome, err := reconcile.Reconcile(args[0], args[1], verbosity > 0)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		os.Exit(outcome.ExitCode())
	},
}
