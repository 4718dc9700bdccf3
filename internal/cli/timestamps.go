package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "timestamps",
		Short: "List all timestamps in the dataset",
		Run:   runTimestamps,
	}
	RootCmd.AddCommand(cmd)
}

func runTimestamps(cmd *cobra.Command, args []string) {
	var timestamps []int64
	if err := getJSON(cmd.Context(), "/api/timestamps", &timestamps); err != nil {
		exitErr("timestamps", err)
	}
	printJSON(timestamps)
}
