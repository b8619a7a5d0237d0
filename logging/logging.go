package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

const (
	maxLogSize   = 2 * 1024 * 1024 // 2MB
	backupSuffix = ".1"
)

// RotatingWriter appends to a log file and swaps in a fresh one once it
// crosses maxSize, keeping the previous file as a single ".1" backup.
// One scrape session logs every portal step, so files fill up quickly.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
}

// Setup routes the stdlib logger to stdout plus a rotating file at
// logPath.
func Setup(logPath string) (*RotatingWriter, error) {
	rw, err := Open(logPath)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rw))
	return rw, nil
}

// Open creates a rotating writer without touching the global logger. An
// oversized file left by a previous run is rotated away immediately so
// startup never appends to a full log.
func Open(logPath string) (*RotatingWriter, error) {
	if info, err := os.Stat(logPath); err == nil && info.Size() >= maxLogSize {
		os.Rename(logPath, logPath+backupSuffix)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	size := int64(0)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return &RotatingWriter{
		file:    f,
		path:    logPath,
		size:    size,
		maxSize: maxLogSize,
	}, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}

	return n, err
}

func (w *RotatingWriter) rotate() {
	w.file.Close()
	os.Rename(w.path, w.path+backupSuffix)

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}

	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// MaskConnectionString hides the password portion of a URL-style
// connection string so it can be logged.
func MaskConnectionString(connStr string) string {
	schemeEnd := strings.Index(connStr, "://")
	if schemeEnd < 0 {
		return connStr
	}

	rest := connStr[schemeEnd+3:]
	atIdx := strings.Index(rest, "@")
	if atIdx < 0 {
		return connStr
	}

	userInfo := rest[:atIdx]
	colonIdx := strings.Index(userInfo, ":")
	if colonIdx < 0 {
		return connStr
	}

	return connStr[:schemeEnd+3] + userInfo[:colonIdx] + ":****" + rest[atIdx:]
}
