package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/cad-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a session's patches as JSON",
		Long:  "Print every patch applied in a session as a JSON array of {feature_id, action, data}. Feed it to replay.",
		Run:   runExport,
	}

	cmd.Flags().StringP("session", "s", "", "Session ID (default: latest)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	sessionID, _ := cmd.Flags().GetString("session")

	j, err := openJournal()
	if err != nil {
		exitErr("open journal", err)
	}
	defer j.Close()

	if sessionID == "" {
		sess, err := j.LatestSession(cmd.Context())
		if err != nil {
			exitErr("export", err)
		}
		sessionID = sess.ID
	}

	patches, err := j.SessionPatches(cmd.Context(), sessionID)
	if err != nil {
		exitErr("export", err)
	}

	out, err := store.ExportPatches(patches)
	if err != nil {
		exitErr("export", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
}
