package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"notes-store/internal/config"
	"notes-store/internal/repository/file"
	svc "notes-store/internal/service"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// watchDebounce склеивает серию событий одной записи (Create+Write, Write+Write)
const watchDebounce = 50 * time.Millisecond

func newWatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the note list every time the store file changes",
		Long:  `Watches the JSON file store (file driver only) and prints the list after each change until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storageCfg, err := opts.storageConfig()
			if err != nil {
				return err
			}
			if storageCfg.Driver != config.DriverFile {
				return fmt.Errorf("watch supports only the %q driver, got %q", config.DriverFile, storageCfg.Driver)
			}

			service, closeFn, err := opts.openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			path := storageCfg.File.Path
			if path == "" {
				path = file.DefaultPath
			}
			return watchFile(cmd.Context(), opts.fs, path, service, cmd.OutOrStdout(), opts.output)
		},
	}
}

// watchFile печатает список при запуске и после каждого изменения файла path.
// Следит за каталогом: файл мог еще не существовать или быть пересоздан.
// fsnotify видит только диск, поэтому fsys должна быть файловой системой ОС
func watchFile(ctx context.Context, fsys afero.Fs, path string, service svc.NoteService, w io.Writer, format string) error {
	if _, ok := fsys.(*afero.OsFs); !ok {
		return fmt.Errorf("watch requires the OS filesystem, got %s", fsys.Name())
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	show := func() error {
		summaries, err := service.List(ctx)
		if err != nil {
			return err
		}
		return printSummaries(w, format, summaries)
	}
	if err := show(); err != nil {
		return err
	}

	target := filepath.Clean(path)
	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			logrus.WithField("op", event.Op.String()).Debug("store file changed")
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			if err := show(); err != nil {
				logrus.WithError(err).Warn("failed to reload notes")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Error("fsnotify error")
		}
	}
}
