package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	grpcapi "notes-store/internal/api/grpc"
	"notes-store/internal/api/http/middleware"
	"notes-store/internal/api/http/rest"
	"notes-store/internal/config"
	"notes-store/internal/events/kafka"
	svc "notes-store/internal/service"
	notesService "notes-store/internal/service/notes"
	"notes-store/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"google.golang.org/grpc"
)

// Server представляет сервер приложения с gRPC и REST API
type Server struct {
	// HTTP компоненты
	HTTPServer   *http.Server
	HTTPListener net.Listener

	// gRPC компоненты
	GRPCServer   *grpc.Server
	GRPCListener net.Listener

	// Контекст сервера для graceful shutdown стримов.
	// Отменяется при shutdown, стримы gRPC и NDJSON слушают его явно
	Ctx    context.Context
	Cancel context.CancelFunc

	// Конфигурация
	Config *config.Config

	Events   *notesService.EventService
	Registry *prometheus.Registry

	fs      afero.Fs
	storage *storage.Storage
	kafka   *kafka.Publisher

	ensureTopic func(ctx context.Context, broker, topic string, partitions, replicationFactor int) error
}

// Option настройка сервера
type Option func(*Server)

// WithFs задает файловую систему для файлового хранилища
func WithFs(fs afero.Fs) Option {
	return func(s *Server) { s.fs = fs }
}

// NewServer создает сервер и открывает listener'ы.
// cfg должен быть заполнен значениями по умолчанию (config.Load); порт 0 выбирается системой
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	grpcAddr := "0.0.0.0:" + strconv.Itoa(cfg.Server.PortGRPC)
	httpAddr := "0.0.0.0:" + strconv.Itoa(cfg.Server.PortHTTP)

	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}
	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		grpcListener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", httpAddr, err)
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())

	s := &Server{
		HTTPListener: httpListener,
		GRPCListener: grpcListener,
		Ctx:          serverCtx,
		Cancel:       serverCancel,
		Config:       cfg,
		fs:           afero.NewOsFs(),
		ensureTopic:  kafka.EnsureTopic,
	}
	for _, opt := range opts {
		opt(s)
	}

	logrus.WithFields(logrus.Fields{
		"grpc": grpcListener.Addr().String(),
		"http": httpListener.Addr().String(),
	}).Info("listeners opened")

	return s, nil
}

// Initialize инициализирует компоненты сервера (Storage → Service → Handlers)
func (s *Server) Initialize(ctx context.Context) error {
	var storageOpts []storage.Option
	storageOpts = append(storageOpts, storage.WithFs(s.fs))
	if s.Config.Metrics.Enabled {
		s.Registry = prometheus.NewRegistry()
		s.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		storageOpts = append(storageOpts, storage.WithMetrics(s.Registry))
	}

	st, err := storage.Open(ctx, s.Config.Storage, storageOpts...)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	s.storage = st

	s.Events = notesService.NewEventService()
	publishers := []svc.EventPublisher{s.Events}

	if kcfg := s.Config.Events.Kafka; kcfg.Enabled {
		brokers := kcfg.BrokerList()
		if len(brokers) == 0 {
			return fmt.Errorf("failed to create kafka publisher: no brokers configured")
		}
		if err := s.ensureTopic(ctx, brokers[0], kcfg.Topic, kcfg.Partitions, kcfg.ReplicationFactor); err != nil {
			return fmt.Errorf("failed to ensure kafka topic: %w", err)
		}
		pub, err := kafka.NewPublisher(brokers, kcfg.Topic)
		if err != nil {
			return fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		s.kafka = pub
		publishers = append(publishers, pub)
		logrus.WithFields(logrus.Fields{
			"brokers": kcfg.Brokers,
			"topic":   kcfg.Topic,
		}).Info("kafka event publisher enabled")
	}

	noteSvc := notesService.NewNoteService(st.Repository, notesService.WithPublishers(publishers...))
	logrus.Info("initialized note service")

	s.GRPCServer = grpcapi.NewServer(
		grpcapi.NewHandler(s.Ctx, noteSvc, s.Events),
		grpcapi.ServerOptions{
			AuthToken:     s.Config.Server.AuthToken,
			UseReflection: s.Config.Server.UseReflection,
		},
	)

	var routerOpts []rest.RouterOption
	if s.Registry != nil {
		routerOpts = append(routerOpts,
			rest.WithMetricsHandler(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})),
			rest.WithHTTPMetrics(middleware.NewHTTPMetrics(s.Registry)),
		)
	}
	handler, err := rest.NewRouter(rest.NewHandler(s.Ctx, noteSvc, s.Events), s.Config.HTTP, routerOpts...)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv := s.Config.Server
	s.HTTPServer = &http.Server{
		Handler:           handler,
		ReadTimeout:       time.Duration(srv.HTTPReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(srv.HTTPReadHeaderTimeout) * time.Second,
		WriteTimeout:      time.Duration(srv.HTTPWriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(srv.HTTPIdleTimeout) * time.Second,
	}

	return nil
}

// Start запускает gRPC и HTTP серверы в горутинах
// Возвращает канал ошибок для отслеживания ошибок серверов
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 2)

	go func() {
		logrus.Infof("gRPC server listening on %s", s.GRPCListener.Addr())
		if err := s.GRPCServer.Serve(s.GRPCListener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logrus.Infof("HTTP server listening on %s", s.HTTPListener.Addr())
		if err := s.HTTPServer.Serve(s.HTTPListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	return errChan
}

// Shutdown выполняет graceful shutdown сервера
func (s *Server) Shutdown() error {
	logrus.Info("starting graceful shutdown")

	// Контекст сервера отменяется ПЕРЕД GracefulStop(), иначе открытые стримы его не дождутся
	s.Cancel()

	shutdownTimeout := time.Duration(s.Config.Server.GracefulShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if s.HTTPServer != nil {
		if err := s.HTTPServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	} else {
		s.HTTPListener.Close()
	}

	if s.GRPCServer != nil {
		stopped := make(chan struct{})
		go func() {
			s.GRPCServer.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
			logrus.Info("gRPC server stopped gracefully")
		case <-ctx.Done():
			logrus.Warn("graceful shutdown timeout, forcing stop")
			s.GRPCServer.Stop()
			errs = append(errs, ctx.Err())
		}
	} else {
		s.GRPCListener.Close()
	}

	if s.kafka != nil {
		if err := s.kafka.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}

	return errors.Join(errs...)
}
