// Package log is a leveled structured logger with asynchronous delivery
// to pluggable transporters.
package log

import (
	"context"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// DefaultBufferSize is the queue capacity of loggers created by New.
const DefaultBufferSize = 1000

// Logger writes entries at or above its level to its transporters.
type Logger struct {
	level      *atomic.Int32
	buffer     *Buffer
	baseFields map[string]any
}

// New creates a new logger with the given minimum level and transporters.
func New(level Level, transporters ...Transporter) *Logger {
	l := &Logger{
		level:      new(atomic.Int32),
		buffer:     NewBuffer(DefaultBufferSize, transporters...),
		baseFields: map[string]any{},
	}
	l.level.Store(int32(level))
	return l
}

// SetLevel changes the minimum level of the logger and its children.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Enabled reports whether entries at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return Level(l.level.Load()).Enables(level)
}

// With returns a child logger sharing level and delivery, with extra
// base fields.
func (l *Logger) With(keysAndValues ...any) *Logger {
	fields := make(map[string]any, len(l.baseFields)+len(keysAndValues)/2)
	for k, v := range l.baseFields {
		fields[k] = v
	}
	addPairs(fields, keysAndValues)

	return &Logger{level: l.level, buffer: l.buffer, baseFields: fields}
}

// Close flushes queued entries and closes the transporters.
func (l *Logger) Close() {
	l.buffer.Close()
}

// log builds the entry. Field precedence: call site over context over base.
func (l *Logger) log(ctx context.Context, level Level, msg string, keysAndValues []any) {
	if !l.Enabled(level) {
		return
	}

	entry := NewEntry(level, msg)
	entry.Caller = caller(3)
	for k, v := range l.baseFields {
		entry.Fields[k] = v
	}
	if ctx != nil {
		entry.RequestID = RequestIDFromContext(ctx)
		for k, v := range FieldsFromContext(ctx) {
			entry.Fields[k] = v
		}
	}
	addPairs(entry.Fields, keysAndValues)

	l.buffer.Send(*entry)
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// Debug logs at Debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) { l.log(nil, Debug, msg, keysAndValues) }

// Info logs at Info level.
func (l *Logger) Info(msg string, keysAndValues ...any) { l.log(nil, Info, msg, keysAndValues) }

// Warn logs at Warn level.
func (l *Logger) Warn(msg string, keysAndValues ...any) { l.log(nil, Warn, msg, keysAndValues) }

// Error logs at Error level.
func (l *Logger) Error(msg string, keysAndValues ...any) { l.log(nil, Error, msg, keysAndValues) }

// Fatal logs at Fatal level. Exiting is left to the caller.
func (l *Logger) Fatal(msg string, keysAndValues ...any) { l.log(nil, Fatal, msg, keysAndValues) }

// DebugCtx logs at Debug level with the request ID and fields of ctx.
func (l *Logger) DebugCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, Debug, msg, keysAndValues)
}

// InfoCtx logs at Info level with the request ID and fields of ctx.
func (l *Logger) InfoCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, Info, msg, keysAndValues)
}

// WarnCtx logs at Warn level with the request ID and fields of ctx.
func (l *Logger) WarnCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, Warn, msg, keysAndValues)
}

// ErrorCtx logs at Error level with the request ID and fields of ctx.
func (l *Logger) ErrorCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, Error, msg, keysAndValues)
}

var (
	globalLogger atomic.Pointer[Logger]
	discardOnce  sync.Once
	discard      *Logger
)

// SetDefault sets the global default logger.
func SetDefault(l *Logger) {
	globalLogger.Store(l)
}

// Default returns the global logger, or a logger that discards
// everything when none is set.
func Default() *Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	discardOnce.Do(func() {
		discard = New(silent)
	})
	return discard
}

// GlobalDebug logs at Debug level using the global logger.
func GlobalDebug(msg string, keysAndValues ...any) { Default().log(nil, Debug, msg, keysAndValues) }

// GlobalInfo logs at Info level using the global logger.
func GlobalInfo(msg string, keysAndValues ...any) { Default().log(nil, Info, msg, keysAndValues) }

// GlobalWarn logs at Warn level using the global logger.
func GlobalWarn(msg string, keysAndValues ...any) { Default().log(nil, Warn, msg, keysAndValues) }

// GlobalError logs at Error level using the global logger.
func GlobalError(msg string, keysAndValues ...any) { Default().log(nil, Error, msg, keysAndValues) }

// GlobalFatal logs at Fatal level using the global logger.
func GlobalFatal(msg string, keysAndValues ...any) { Default().log(nil, Fatal, msg, keysAndValues) }

// GlobalDebugCtx logs at Debug level with context using the global logger.
func GlobalDebugCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(ctx, Debug, msg, keysAndValues)
}

// GlobalInfoCtx logs at Info level with context using the global logger.
func GlobalInfoCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(ctx, Info, msg, keysAndValues)
}

// GlobalWarnCtx logs at Warn level with context using the global logger.
func GlobalWarnCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(ctx, Warn, msg, keysAndValues)
}

// GlobalErrorCtx logs at Error level with context using the global logger.
func GlobalErrorCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(ctx, Error, msg, keysAndValues)
}
