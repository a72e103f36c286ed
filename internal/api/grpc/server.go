package grpc

import (
	"time"

	"notes-store/internal/api/grpc/interceptors"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// ServerOptions параметры gRPC сервера
type ServerOptions struct {
	// AuthToken ожидаемый Bearer токен. Пустая строка отключает авторизацию
	AuthToken string
	// UseReflection регистрирует reflection (для grpcurl/grpcui)
	UseReflection bool
}

// NewServer создает и настраивает gRPC сервер с интерцепторами и конфигурацией
func NewServer(handler NotesServiceServer, opts ServerOptions) *grpc.Server {
	// Порядок интерцепторов важен:
	// 1. Logger - логирует все запросы (включая заблокированные)
	// 2. Auth - блокирует неавторизованные запросы до разбора полей
	// 3. Validate - валидирует запросы по тегам validate
	grpcServer := grpc.NewServer(
		// Ограничиваем количество одновременных стримов
		grpc.MaxConcurrentStreams(25),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     30 * time.Minute,
			MaxConnectionAge:      1 * time.Hour,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  10 * time.Minute,
			Timeout:               20 * time.Second,
		}),
		grpc.ChainUnaryInterceptor(
			interceptors.LoggerUnaryInterceptor,
			interceptors.AuthUnaryInterceptor(opts.AuthToken),
			interceptors.ValidateUnaryInterceptor,
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamInterceptor,
			interceptors.AuthStreamInterceptor(opts.AuthToken),
		),
	)

	RegisterNotesServiceServer(grpcServer, handler)
	logrus.Info("registered NotesService")

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	if opts.UseReflection {
		reflection.Register(grpcServer)
		logrus.Info("enabled gRPC reflection")
	}
	if opts.AuthToken == "" {
		logrus.Warn("gRPC auth token is empty, authorization is disabled")
	}

	return grpcServer
}
