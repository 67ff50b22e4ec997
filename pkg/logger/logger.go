package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger - интерфейс логгера, используемый во всех слоях приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

// SlogLogger реализует Logger поверх log/slog.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger создает JSON-логгер, пишущий в stdout.
func NewSlogLogger() *SlogLogger {
	return NewSlogLoggerWithWriter(os.Stdout, slog.LevelDebug)
}

func NewSlogLoggerWithWriter(w io.Writer, level slog.Level) *SlogLogger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{log: slog.New(handler)}
}

func (l *SlogLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Infof(format string, args ...any) {
	l.log.Info(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Warnf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Errorf(err error, format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...), slog.Any("error", err))
}

// NopLogger отбрасывает все сообщения. Используется в тестах.
type NopLogger struct{}

func NewNopLogger() NopLogger { return NopLogger{} }

func (NopLogger) Debugf(string, ...any)        {}
func (NopLogger) Infof(string, ...any)         {}
func (NopLogger) Warnf(string, ...any)         {}
func (NopLogger) Errorf(error, string, ...any) {}
