package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Cache administration",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached entry on the engine",
		Run:   runCacheClear,
	})
	RootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) {
	var out map[string]any
	if err := postJSON(cmd.Context(), "/api/cache/clear", &out); err != nil {
		exitErr("cache clear", err)
	}
	printJSON(out)
}
