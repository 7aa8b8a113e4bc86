package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/cad-agent/internal/journal"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled turns",
		Long:  "List turns from the journal, newest first. Defaults to the latest session.",
		Run:   runHistory,
	}

	cmd.Flags().StringP("session", "s", "", "Session ID (default: latest)")
	cmd.Flags().Bool("all", false, "Include every session")
	cmd.Flags().StringP("query", "q", "", "Filter by request substring")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	sessionID, _ := cmd.Flags().GetString("session")
	all, _ := cmd.Flags().GetBool("all")
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")

	j, err := openJournal()
	if err != nil {
		exitErr("open journal", err)
	}
	defer j.Close()

	if sessionID == "" && !all {
		sess, err := j.LatestSession(cmd.Context())
		if err != nil {
			exitErr("history", err)
		}
		sessionID = sess.ID
	}

	turns, err := j.ListTurns(cmd.Context(), journal.ListParams{
		SessionID: sessionID,
		Query:     query,
		Limit:     limit,
	})
	if err != nil {
		exitErr("history", err)
	}

	if formatFlag == "text" {
		for _, t := range turns {
			fmt.Fprintln(cmd.OutOrStdout(), formatTurn(t))
		}
		return
	}

	b, _ := json.MarshalIndent(turns, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
