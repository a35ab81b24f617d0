package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/adrg/xdg"
	"github.com/mylicula/relink/filesystem"
	"github.com/mylicula/relink/reconcile"
	"github.com/spf13/cobra"
)

var manifestPath string
var interactive bool

func interactiveFilter(entries []reconcile.Entry) ([]reconcile.Entry, error) {
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = fmt.Sprintf("%s -> %s", entry.Link, entry.Source)
	}

	var selected []int
	prompt := &survey.MultiSelect{
		Message: "Choose links to apply",
		Options: names,
	}

	if err := survey.AskOne(prompt, &selected, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}

	filtered := make([]reconcile.Entry, len(selected))
	for i, index := range selected {
		filtered[i] = entries[index]
	}

	return filtered, nil
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile every link declared in the manifest",
	Long: `Reconcile every link declared in the manifest.

Entries are independent: a failing entry is reported and the rest still
run. Exits 1 if any entry failed, 0 if any link was created or replaced,
and 2 when everything was already correct.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := manifestPath
		if path == "" {
			path = filepath.Join(xdg.ConfigHome, "relink", "links.toml")
		}

		path, err := filepath.Abs(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		loader := reconcile.Loader{Path: filesystem.Path(path)}

		manifest, err := loader.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		entries := manifest.Links
		if interactive {
			entries, err = interactiveFilter(entries)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}

		reconciler := reconcile.New(verbosity > 0)

		summary := reconciler.Apply(entries, func(entry reconcile.Entry, err error) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", entry.Link, err)
		})

		fmt.Println(summary)
		os.Exit(summary.ExitCode())
	},
}

func init() {
	applyCmd.Flags().StringVarP(&manifestPath, "manifest", "f", "", "manifest to apply (default is $XDG_CONFIG_HOME/relink/links.toml)")
	applyCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start an interactive session to filter the manifest entries before applying")
}
