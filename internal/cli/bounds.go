package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Show the dataset's bounding rectangle",
		Run:   runBounds,
	}
	RootCmd.AddCommand(cmd)
}

func runBounds(cmd *cobra.Command, args []string) {
	var out map[string]any
	if err := getJSON(cmd.Context(), "/api/bounds", &out); err != nil {
		exitErr("bounds", err)
	}
	printJSON(out)
}
