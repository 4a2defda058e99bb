// Package slogadapter bridges log/slog into the logging.Logger interface.
package slogadapter

import (
	"log/slog"

	"github.com/goliatone/go-entity-manager/logging"
)

type adapter struct {
	l *slog.Logger
}

// New wraps a slog.Logger. Passing nil uses slog.Default().
func New(l *slog.Logger) logging.Logger {
	if l == nil {
		l = slog.Default()
	}
	return &adapter{l: l}
}

func (a *adapter) Debug(msg string, f logging.Fields) { a.l.Debug(msg, toArgs(f)...) }
func (a *adapter) Info(msg string, f logging.Fields)  { a.l.Info(msg, toArgs(f)...) }
func (a *adapter) Warn(msg string, f logging.Fields)  { a.l.Warn(msg, toArgs(f)...) }
func (a *adapter) Error(msg string, f logging.Fields) { a.l.Error(msg, toArgs(f)...) }

func toArgs(f logging.Fields) []any {
	if len(f) == 0 {
		return nil
	}
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
