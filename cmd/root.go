package cmd

import (
	"fmt"
	"os"

	"github.com/mylicula/relink/logging"
	"github.com/spf13/cobra"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "relink",
	Short: "Idempotent symlink reconciler",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbosity)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "print status lines and increase log verbosity")
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(applyCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
