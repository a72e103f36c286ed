package interceptors

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	// authorizationHeader - имя заголовка для авторизации в metadata
	authorizationHeader = "authorization"
	bearerPrefix        = "Bearer "
	// healthPrefix методы health-check доступны без токена
	healthPrefix = "/grpc.health.v1.Health/"
)

// checkToken проверяет наличие и валидность токена в metadata запроса.
// Токен должен быть передан в заголовке "authorization" в формате "Bearer <token>"
func checkToken(ctx context.Context, expected string) error {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Errorf(codes.Unauthenticated, "metadata not provided")
	}

	authHeaders := md.Get(authorizationHeader)
	if len(authHeaders) == 0 {
		return status.Errorf(codes.Unauthenticated, "authorization header not provided")
	}

	authHeader := authHeaders[0]
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return status.Errorf(codes.Unauthenticated, "invalid authorization header format")
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		return status.Errorf(codes.Unauthenticated, "invalid token")
	}

	return nil
}

// AuthUnaryInterceptor пропускает только запросы с токеном token.
// Пустой token отключает проверку
func AuthUnaryInterceptor(token string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if token == "" || strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}
		if err := checkToken(ctx, token); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// AuthStreamInterceptor то же для стримов
func AuthStreamInterceptor(token string) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if token == "" || strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(srv, ss)
		}
		if err := checkToken(ss.Context(), token); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}
