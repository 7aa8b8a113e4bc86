package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/cad-agent/internal/model"
	"github.com/rcliao/cad-agent/internal/patch"
	"github.com/rcliao/cad-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "apply [file]",
		Short: "Apply patch lines to an empty design",
		Long:  "Parse patch-language text (file or stdin) and apply it to an empty design. No model is called.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runApply,
	}

	cmd.Flags().Bool("patches", false, "Print the parsed batch as JSON instead of the resulting design")

	RootCmd.AddCommand(cmd)
}

// designResult is the JSON view of a design after applying a batch.
type designResult struct {
	Features *store.Features    `json:"features"`
	Counter  int                `json:"counter"`
	NextID   string             `json:"next_id"`
	Skipped  []patch.Diagnostic `json:"skipped,omitempty"`
}

func runApply(cmd *cobra.Command, args []string) {
	patchesOnly, _ := cmd.Flags().GetBool("patches")

	text, err := readInput(cmd, args)
	if err != nil {
		exitErr("read input", err)
	}

	res := patch.Parse(text)
	for _, d := range res.Diagnostics {
		slog.Warn("failed to parse patch line", "line", d.Line, "text", d.Text, "reason", string(d.Reason))
	}

	if patchesOnly {
		out, err := store.ExportPatches(res.Patches)
		if err != nil {
			exitErr("export", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return
	}

	printDesign(cmd.OutOrStdout(), res.Patches, res.Diagnostics)
}

func printDesign(w io.Writer, patches []model.Patch, skipped []patch.Diagnostic) {
	d := store.NewDesign()
	d.Apply(patches)

	if formatFlag == "text" {
		block := strings.TrimLeft(d.Context(), "\n")
		if block == "" {
			block = "[No features in current design]\n"
		}
		fmt.Fprint(w, block)
		return
	}

	b, err := json.MarshalIndent(designResult{
		Features: d.Features(),
		Counter:  d.Counter(),
		NextID:   d.NextID(),
		Skipped:  skipped,
	}, "", "  ")
	if err != nil {
		exitErr("encode design", err)
	}
	fmt.Fprintln(w, string(b))
}

// readInput returns the named file's content, or stdin when no file is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(b), nil
}
