package logging

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"log"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. Loggers are safe for
// concurrent use, which matters here because the engine may log from its
// single worker goroutine while a driver reads from the callback it supplied
// on a different goroutine.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level is the maximum severity that this logger will emit.
	level Level
	// sink, if non-nil, receives every formatted line in addition to the
	// standard logger. This is how the engine bridges to the external
	// log(line string) callback described in the engine-to-driver interface.
	sink func(string)
}

// RootLogger is the root logger from which all other loggers derive.
var RootLogger = &Logger{level: LevelInfo}

// NewLogger creates a new root logger at the specified level.
func NewLogger(level Level) *Logger {
	return &Logger{level: level}
}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{
		prefix: prefix,
		level:  l.level,
		sink:   l.sink,
	}
}

// WithSink returns a copy of the logger that also forwards every formatted
// line to the provided callback. This is used to satisfy the driver-supplied
// log callback without coupling the engine's internals to any particular
// presentation layer.
func (l *Logger) WithSink(sink func(string)) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		prefix: l.prefix,
		level:  l.level,
		sink:   sink,
	}
}

// format adds a prefix if necessary.
func (l *Logger) format(line string) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	return line
}

// output is the internal logging method.
func (l *Logger) output(calldepth int, level Level, line string) {
	if level > l.level {
		return
	}
	formatted := l.format(line)
	log.Output(calldepth, formatted)
	if l.sink != nil {
		l.sink(formatted)
	}
}

// Print logs information with semantics equivalent to fmt.Print.
func (l *Logger) Print(v ...interface{}) {
	if l != nil {
		l.output(3, LevelInfo, fmt.Sprint(v...))
	}
}

// Printf logs information with semantics equivalent to fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l != nil {
		l.output(3, LevelInfo, fmt.Sprintf(format, v...))
	}
}

// Println logs information with semantics equivalent to fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	if l != nil {
		l.output(3, LevelInfo, fmt.Sprintln(v...))
	}
}

// Writer returns an io.Writer that writes lines using Println.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return ioutil.Discard
	}
	return &writer{
		callback: func(s string) {
			l.Println(s)
		},
	}
}

// Debug logs information with semantics equivalent to fmt.Print, but only if
// the logger's level allows debug output.
func (l *Logger) Debug(v ...interface{}) {
	if l != nil {
		l.output(3, LevelDebug, fmt.Sprint(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, but only if
// the logger's level allows debug output.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l != nil {
		l.output(3, LevelDebug, fmt.Sprintf(format, v...))
	}
}

// Warn logs a warning with a yellow "Warning:" prefix.
func (l *Logger) Warn(v ...interface{}) {
	if l != nil {
		l.output(3, LevelWarn, color.YellowString("Warning: %s", fmt.Sprint(v...)))
	}
}

// Warnf logs a formatted warning with a yellow "Warning:" prefix.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l != nil {
		l.output(3, LevelWarn, color.YellowString("Warning: %s", fmt.Sprintf(format, v...)))
	}
}

// Error logs error information with a red "Error:" prefix.
func (l *Logger) Error(err error) {
	if l != nil {
		l.output(3, LevelError, color.RedString("Error: %v", err))
	}
}

// Errorf logs formatted error information with a red "Error:" prefix.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l != nil {
		l.output(3, LevelError, color.RedString("Error: %s", fmt.Sprintf(format, v...)))
	}
}
