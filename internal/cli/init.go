package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/cad-agent/internal/config"
)

func init() {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long:  "Write the default configuration to --config (or $CAD_AGENT_CONFIG, or ~/.cad-agent/config.toml).",
		Args:  cobra.NoArgs,
		Run:   runInit,
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing config file")

	RootCmd.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")

	path := configFile()
	if err := writeDefaultConfig(path, force); err != nil {
		exitErr("init", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
}

// writeDefaultConfig saves the defaults to path. The API key is left empty;
// it is expected from XAI_API_KEY.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return config.Default().Save(path)
}
