package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/cad-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Rebuild a design from exported patches",
		Long:  "Apply a JSON array of {feature_id, action, data} records (as produced by export) to an empty design.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runReplay,
	}

	RootCmd.AddCommand(cmd)
}

func runReplay(cmd *cobra.Command, args []string) {
	data, err := readInput(cmd, args)
	if err != nil {
		exitErr("read input", err)
	}

	patches, err := store.ImportPatches([]byte(data))
	if err != nil {
		exitErr("replay", err)
	}

	printDesign(cmd.OutOrStdout(), patches, nil)
}
