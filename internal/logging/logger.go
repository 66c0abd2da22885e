package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger provides optional verbose logging and lightweight timing helpers.
// When a file sink is attached every line is also appended there with a
// timestamp, verbose or not.
type Logger struct {
	Writer  io.Writer
	Verbose bool
	sink    *fileSink
}

type fileSink struct {
	mu   sync.Mutex
	file *os.File
}

func New(writer io.Writer, verbose bool) Logger {
	return Logger{Writer: writer, Verbose: verbose}
}

// Open returns a logger that additionally appends to path. An empty path
// yields a console-only logger.
func Open(writer io.Writer, verbose bool, path string) (Logger, error) {
	l := New(writer, verbose)
	if path == "" {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Logger{}, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Logger{}, err
	}
	l.sink = &fileSink{file: f}
	return l, nil
}

// WithWriter returns a copy sharing the same file sink but printing to writer.
func (l Logger) WithWriter(writer io.Writer) Logger {
	l.Writer = writer
	return l
}

func (l Logger) Close() error {
	if l.sink == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	return err
}

func (l Logger) Infof(format string, args ...any) {
	l.write("INFO", format, args...)
	if l.Writer == nil {
		return
	}
	fmt.Fprintf(l.Writer, format+"\n", args...)
}

func (l Logger) Errorf(format string, args ...any) {
	l.write("ERROR", format, args...)
	if l.Writer == nil {
		return
	}
	fmt.Fprintf(l.Writer, "Error: "+format+"\n", args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose {
		return
	}
	l.Infof("Verbose: "+format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}

func (l Logger) write(level, format string, args ...any) {
	if l.sink == nil {
		return
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.sink.file, "%s [%s] %s\n", ts, level, fmt.Sprintf(format, args...))
}
