package graph

import (
	"fmt"

	"github.com/fluxline-cloud/fluxline/internal/importer"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply [files or directories]",
	Short: "Import graph definitions into the dependency registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := collectManifests(args)
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No graph definitions found.")
			return nil
		}

		if err := db.Migrate(); err != nil {
			return err
		}

		imp := importer.New(cmd.Context(), db.Connection())

		for _, name := range names {
			if err := imp.ImportFile(name); err != nil {
				return fmt.Errorf("importing %s: %w", name, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", name)
		}

		return nil
	},
}
