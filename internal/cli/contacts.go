package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "contacts <timestamp>",
		Short: "Show the contact pairs active at a timestamp",
		Args:  cobra.ExactArgs(1),
		Run:   runContacts,
	}
	cmd.Flags().Bool("new", false, "Only pairs absent at the preceding timestamp")
	RootCmd.AddCommand(cmd)
}

func runContacts(cmd *cobra.Command, args []string) {
	timestamp, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitErr("contacts", fmt.Errorf("timestamp must be an integer: %w", err))
	}
	onlyNew, _ := cmd.Flags().GetBool("new")

	path := fmt.Sprintf("/api/contacts/%d", timestamp)
	if onlyNew {
		path += "/new"
	}

	var out map[string]any
	if err := getJSON(cmd.Context(), path, &out); err != nil {
		exitErr("contacts", err)
	}
	printJSON(out)
}
