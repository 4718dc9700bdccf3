package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "trajectory <id1> <id2>",
		Short: "Show the co-location trajectory of a pair",
		Args:  cobra.ExactArgs(2),
		Run:   runTrajectory,
	}
	RootCmd.AddCommand(cmd)
}

func runTrajectory(cmd *cobra.Command, args []string) {
	id1, err1 := strconv.Atoi(args[0])
	id2, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		exitErr("trajectory", fmt.Errorf("user ids must be integers"))
	}

	var out map[string]any
	if err := getJSON(cmd.Context(), fmt.Sprintf("/api/trajectory/%d/%d", id1, id2), &out); err != nil {
		exitErr("trajectory", err)
	}
	printJSON(out)
}
