package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journal statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	j, err := openJournal()
	if err != nil {
		exitErr("open journal", err)
	}
	defer j.Close()

	stats, err := j.Stats(cmd.Context(), cfg.Journal.Path)
	if err != nil {
		exitErr("stats", err)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
