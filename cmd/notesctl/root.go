package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"notes-store/internal/config"
	"notes-store/internal/logger"
	svc "notes-store/internal/service"
	"notes-store/internal/service/notes"
	"notes-store/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// globalOptions флаги, общие для всех команд
type globalOptions struct {
	configFile string
	file       string
	output     string
	verbose    bool

	fs afero.Fs
}

// newRootCmd собирает дерево команд; fs используется файловым хранилищем
func newRootCmd(fs afero.Fs) *cobra.Command {
	opts := &globalOptions{fs: fs}

	cmd := &cobra.Command{
		Use:   "notesctl",
		Short: "Manage notes stored by notes-store without running the server",
		Long: `notesctl reads and writes the same storage as the notes-store server.
The storage is taken from the config file; --file switches to a JSON file directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			if err := logger.Init(level, logger.FormatText); err != nil {
				return err
			}
			logger.SetOutput(cmd.ErrOrStderr())

			switch opts.output {
			case outputText, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want text, json or yaml)", opts.output)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "config.yml", "path to config file (optional)")
	flags.StringVarP(&opts.file, "file", "f", "", "use the JSON file store at this path")
	flags.StringVarP(&opts.output, "output", "o", outputText, "output format: text, json or yaml")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	cmd.AddCommand(
		newCreateCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newWatchCmd(opts),
	)

	return cmd
}

// storageConfig настройки хранилища: из конфига, если он есть, с учетом --file
func (o *globalOptions) storageConfig() (*config.ConfigStorage, error) {
	cfg := &config.Config{}

	if _, err := os.Stat(o.configFile); err == nil {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg.SetDefaults()
	}

	if o.file != "" {
		cfg.Storage.Driver = config.DriverFile
		cfg.Storage.File = &config.ConfigFileStorage{Path: o.file}
	}
	return cfg.Storage, nil
}

// openService открывает хранилище и создает сервис поверх него
func (o *globalOptions) openService(cmd *cobra.Command) (svc.NoteService, func() error, error) {
	storageCfg, err := o.storageConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := storage.Open(cmd.Context(), storageCfg, storage.WithFs(o.fs))
	if err != nil {
		return nil, nil, err
	}
	return notes.NewNoteService(st.Repository), st.Close, nil
}
