// Package worklist maintains append-only logs of URLs that need another pass.
//
// A log is an operator worklist, not a set: the same URL may appear once per
// failed attempt, and entries are only consumed by re-running the fetch stage.
package worklist

import (
	"fmt"
	"os"
	"sync"
)

// Log appends URLs, one per line, to a plain-text file. It is safe for
// concurrent use by pipeline workers.
type Log struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// Open opens or creates a log in append mode. It is opened once per run
// and closed when the run ends.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open worklist %s: %w", path, err)
	}
	return &Log{f: f, path: path}, nil
}

// Append records one URL.
func (l *Log) Append(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.WriteString(url + "\n"); err != nil {
		return fmt.Errorf("append to worklist %s: %w", l.path, err)
	}
	return nil
}

// Path returns the file backing this log.
func (l *Log) Path() string {
	return l.path
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
