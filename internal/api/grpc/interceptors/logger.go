package interceptors

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggerUnaryInterceptor перехватывает запросы и логирует метод, код ответа и время выполнения
func LoggerUnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	entry := logrus.WithField("method", info.FullMethod)
	entry.Debug("grpc request started")

	start := time.Now()
	resp, err := handler(ctx, req)
	entry = entry.WithFields(logrus.Fields{
		"code":     status.Code(err).String(),
		"duration": time.Since(start),
	})

	if err != nil {
		entry.WithField("error", status.Convert(err).Message()).Warn("grpc request failed")
	} else {
		entry.Info("grpc request completed")
	}

	return resp, err
}
