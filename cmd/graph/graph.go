package graph

import "github.com/spf13/cobra"

// Cmd is the parent command for graph definition operations.
var Cmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage graph definitions",
}

func init() {
	Cmd.AddCommand(lintCmd, applyCmd)
}
