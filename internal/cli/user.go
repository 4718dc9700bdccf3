package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "user <id>",
		Short: "Show a user's aggregated contacts",
		Args:  cobra.ExactArgs(1),
		Run:   runUser,
	}
	cmd.Flags().Bool("secondary", false, "Transitive contacts via an intermediary")
	RootCmd.AddCommand(cmd)
}

func runUser(cmd *cobra.Command, args []string) {
	userID, err := strconv.Atoi(args[0])
	if err != nil {
		exitErr("user", fmt.Errorf("user id must be an integer: %w", err))
	}
	secondary, _ := cmd.Flags().GetBool("secondary")

	path := fmt.Sprintf("/api/user/%d/contacts", userID)
	if secondary {
		path = fmt.Sprintf("/api/user/%d/secondary-contacts", userID)
	}

	var out map[string]any
	if err := getJSON(cmd.Context(), path, &out); err != nil {
		exitErr("user", err)
	}
	printJSON(out)
}
