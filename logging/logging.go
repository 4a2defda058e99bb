// Package logging defines the minimal leveled logger the module emits
// diagnostics through. Callers plug in their own stack via the adapter
// subpackages (zapadapter, slogadapter) or any type satisfying Logger.
package logging

// Fields is a minimal structured field map for log entries.
type Fields map[string]any

// Logger is a tiny leveled logger. When no logger is configured the
// module falls back to Nop and stays silent.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// Nop discards every log entry.
type Nop struct{}

func (Nop) Debug(string, Fields) {}
func (Nop) Info(string, Fields)  {}
func (Nop) Warn(string, Fields)  {}
func (Nop) Error(string, Fields) {}
