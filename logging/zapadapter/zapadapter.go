// Package zapadapter bridges go.uber.org/zap into the logging.Logger
// interface consumed by the entity manager.
package zapadapter

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-entity-manager/logging"
)

type adapter struct {
	l *zap.Logger
}

// New wraps a zap.Logger. A nil logger yields a no-op adapter.
func New(l *zap.Logger) logging.Logger {
	if l == nil {
		return logging.Nop{}
	}
	return &adapter{l: l}
}

func (a *adapter) Debug(msg string, f logging.Fields) { a.l.Debug(msg, toZap(f)...) }
func (a *adapter) Info(msg string, f logging.Fields)  { a.l.Info(msg, toZap(f)...) }
func (a *adapter) Warn(msg string, f logging.Fields)  { a.l.Warn(msg, toZap(f)...) }
func (a *adapter) Error(msg string, f logging.Fields) { a.l.Error(msg, toZap(f)...) }

func toZap(f logging.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
