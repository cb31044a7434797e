package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/internal/config"
	"github.com/VoxDroid/dopesheet/internal/db"
	"github.com/VoxDroid/dopesheet/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	settings = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "dopesheet",
	Short: "dopesheet is a terminal keyframe dope sheet",
	Long:  "dopesheet edits the keyframe timing of a compositing scene: keys, clips and groups on a time line",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadSettings()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "dopesheet: run 'dopesheet --help' to see available commands")
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default $DOPESHEET_HOME/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

func settingsPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func loadSettings() error {
	p, err := settingsPath()
	if err != nil {
		return err
	}
	s, err := config.Load(p)
	if err != nil {
		return err
	}
	if logLevel != "" {
		s.Log.Level = logLevel
	}
	settings = s
	return nil
}

// newLogger builds the configured logger. The TUI owns the terminal, so it
// logs to the data directory when no file is configured.
func newLogger(tui bool) (*zap.Logger, error) {
	path := settings.Log.File
	if path == "" && tui {
		p, err := config.LogPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return logging.New(settings.Log.Level, path)
}

// openJournal opens the command journal named in the settings, or the one
// in the data directory.
func openJournal() (*sql.DB, error) {
	if settings.Journal != "" {
		return db.Open(settings.Journal)
	}
	return db.InitDB()
}
