package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/cmd/tui/ui"
	"github.com/VoxDroid/dopesheet/internal/journal"
	"github.com/VoxDroid/dopesheet/internal/scene"
	"github.com/VoxDroid/dopesheet/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/dopesheet/internal/tui/model"
)

var tuiCmd = &cobra.Command{
	Use:   "tui <scene>",
	Short: "Open a scene in the interactive dope sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		watch, _ := cmd.Flags().GetBool("watch")

		log, err := newLogger(true)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		dbConn, err := openJournal()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ja := adapters.NewJournalAdapter(journal.NewRepository(dbConn))
		s, err := modelpkg.Open(ctx, path, adapters.NewFileSceneStore(), ja, settings.Terminal, log)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		p := ui.NewProgram(s)
		if watch {
			w, err := scene.NewWatcher(path, log.Named("watch"),
				func(f *scene.File) { p.Send(ui.SceneChangedMsg{File: f}) },
				func(err error) { p.Send(ui.WatchErrorMsg{Err: err}) })
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()
			go func() {
				if err := w.Run(ctx); err != nil {
					log.Warn("watcher stopped", zap.Error(err))
				}
			}()
		}
		log.Info("tui started", zap.String("scene", path), zap.Bool("watch", watch))
		_, err = p.Run()
		return err
	},
}

func init() {
	tuiCmd.Flags().Bool("watch", false, "Reload the scene when its file changes on disk")
	rootCmd.AddCommand(tuiCmd)
}
