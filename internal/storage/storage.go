package storage

import (
	"context"
	"fmt"

	"notes-store/internal/config"
	"notes-store/internal/metrics"
	"notes-store/internal/repository"
	"notes-store/internal/repository/file"
	"notes-store/internal/repository/memory"
	"notes-store/internal/repository/postgres"
	s3repo "notes-store/internal/repository/s3"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Storage собранный репозиторий и функция освобождения ресурсов
type Storage struct {
	Repository repository.NoteRepository
	Close      func() error
}

// Option настраивает сборку хранилища
type Option func(*options)

type options struct {
	fs       afero.Fs
	registry prometheus.Registerer
}

// WithFs подменяет файловую систему файлового драйвера
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithMetrics оборачивает репозиторий метриками, зарегистрированными в reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// Open создает репозиторий заметок по настройкам хранилища
func Open(ctx context.Context, cfg *config.ConfigStorage, opts ...Option) (*Storage, error) {
	o := &options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(o)
	}

	st, err := open(ctx, cfg, o)
	if err != nil {
		return nil, err
	}

	if o.registry != nil {
		st.Repository = metrics.InstrumentRepository(st.Repository, metrics.NewRepositoryMetrics(o.registry))
	}
	return st, nil
}

func open(ctx context.Context, cfg *config.ConfigStorage, o *options) (*Storage, error) {
	noop := func() error { return nil }
	log := logrus.WithField("driver", cfg.Driver)

	switch cfg.Driver {
	case config.DriverFile, "":
		path := ""
		if cfg.File != nil {
			path = cfg.File.Path
		}
		if path == "" {
			path = file.DefaultPath
		}
		log.WithField("path", path).Info("using file storage")
		return &Storage{Repository: file.NewRepository(o.fs, path), Close: noop}, nil

	case config.DriverMemory:
		log.Info("using in-memory storage")
		return &Storage{Repository: memory.NewRepository(), Close: noop}, nil

	case config.DriverS3:
		if cfg.S3 == nil || cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("storage: s3 bucket is not configured")
		}
		client, err := s3repo.NewClient(ctx, s3repo.Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("s3repo.NewClient: %w", err)
		}
		log.WithFields(logrus.Fields{"bucket": cfg.S3.Bucket, "key": cfg.S3.Key}).Info("using s3 storage")
		return &Storage{Repository: s3repo.NewRepository(client, cfg.S3.Bucket, cfg.S3.Key), Close: noop}, nil

	case config.DriverPostgres:
		if cfg.Postgres == nil || cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("storage: postgres dsn is not configured")
		}
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		repo := postgres.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("using postgres storage")
		return &Storage{Repository: repo, Close: db.Close}, nil

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
