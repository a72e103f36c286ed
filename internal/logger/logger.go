package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Форматы вывода логов
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Init настраивает стандартный логгер logrus: уровень и формат вывода
func Init(level, format string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("logrus.ParseLevel: %w", err)
	}
	logrus.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case FormatJSON:
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	return nil
}

// SetOutput перенаправляет вывод стандартного логгера
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}
