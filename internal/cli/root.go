// Package cli implements the cad-agent CLI commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/cad-agent/internal/config"
	"github.com/rcliao/cad-agent/internal/journal"
)

var (
	configPath  string
	journalPath string
	formatFlag  string
	verbose     bool

	cfg *config.Config
)

var errJournalDisabled = errors.New("journal is disabled (set journal.enabled = true or pass --journal)")

// RootCmd is the top-level command. Without a subcommand it starts the interactive designer.
var RootCmd = &cobra.Command{
	Use:   "cad-agent",
	Short: "Natural language to CAD patches",
	Long: "Describe shapes in natural language; a language model answers with patch lines\n" +
		"(AT <feature_id> <INSERT|REPLACE|DELETE> <json>) that are applied to the current design.",
	PersistentPreRunE: loadConfig,
	Run:               runChat,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CAD_AGENT_CONFIG or ~/.cad-agent/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&journalPath, "journal", "j", "", "Journal database path (default: $CAD_AGENT_JOURNAL or ~/.cad-agent/journal.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	c, err := config.Load(configFile())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if journalPath != "" {
		c.Journal.Path = journalPath
		c.Journal.Enabled = true
	}
	cfg = c

	level := parseLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))
	return nil
}

// configFile returns --config, or the default location when it is unset.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelWarn
	}
	return level
}

func openJournal() (*journal.SQLiteJournal, error) {
	if !cfg.Journal.Enabled {
		return nil, errJournalDisabled
	}
	return journal.NewSQLiteJournal(cfg.Journal.Path)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
