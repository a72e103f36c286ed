package interceptors

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

// wrappedServerStream оборачивает grpc.ServerStream для логирования каждого сообщения
type wrappedServerStream struct {
	grpc.ServerStream
	log *logrus.Entry
}

// RecvMsg логирует входящие сообщения
func (w *wrappedServerStream) RecvMsg(m interface{}) error {
	err := w.ServerStream.RecvMsg(m)
	switch {
	case errors.Is(err, io.EOF):
		w.log.Debug("stream recv: EOF")
	case err != nil:
		w.log.WithError(err).Debug("stream recv failed")
	default:
		w.log.Debugf("stream recv: %T", m)
	}
	return err
}

// SendMsg логирует исходящие сообщения
func (w *wrappedServerStream) SendMsg(m interface{}) error {
	err := w.ServerStream.SendMsg(m)
	if err != nil {
		w.log.WithError(err).Debug("stream send failed")
	} else {
		w.log.Debugf("stream send: %T", m)
	}
	return err
}

// StreamInterceptor логирует установку и завершение стрима и каждое сообщение в нем
func StreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	log := logrus.WithField("method", info.FullMethod)
	log.Info("stream opened")

	err := handler(srv, &wrappedServerStream{ServerStream: ss, log: log})
	if err != nil {
		log.WithError(err).Warn("stream finished with error")
	} else {
		log.Info("stream completed")
	}

	return err
}
