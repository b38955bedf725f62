package graph

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fluxline-cloud/fluxline/pkg/graphdef"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint [files or directories]",
	Short: "Validate graph definition manifests",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := collectManifests(args)
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No graph definitions found.")
			return nil
		}

		for _, name := range names {
			data, err := os.ReadFile(name)
			if err != nil {
				return err
			}

			if _, err := graphdef.Parse(data); err != nil {
				return fmt.Errorf("definition %s: %w", name, err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Validated %d graph definition(s)\n", len(names))
		return nil
	},
}

// collectManifests expands the given paths into the YAML files they
// name, descending one level into directories.
func collectManifests(paths []string) ([]string, error) {
	names := make([]string, 0, len(paths))

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			names = append(names, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			switch filepath.Ext(entry.Name()) {
			case ".yaml", ".yml":
				names = append(names, filepath.Join(path, entry.Name()))
			}
		}
	}

	return names, nil
}
