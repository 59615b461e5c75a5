package treelog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/wayneeseguin/treelog/pkg/types"
)

const fileSinkBufferSize = 4096

// FileSink appends formatted records to a file, holding a cross-process
// advisory lock around each write so several processes can share one log
// file without interleaving lines.
type FileSink struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	writer    *bufio.Writer
	lock      *flock.Flock
	formatter Formatter
	closed    bool
}

// NewFileSink opens (creating if needed) the log file at path. A nil
// formatter defaults to an uncolored ConsoleFormatter.
func NewFileSink(path string, formatter Formatter) (*FileSink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	if formatter == nil {
		formatter = &ConsoleFormatter{}
	}
	return &FileSink{
		path:      path,
		file:      file,
		writer:    bufio.NewWriterSize(file, fileSinkBufferSize),
		lock:      flock.New(path + ".lock"),
		formatter: formatter,
	}, nil
}

// Emit formats the record and appends it under the file lock.
func (s *FileSink) Emit(record *types.Record) error {
	out, err := s.formatter.Format(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("file sink is closed")
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquiring file lock: %w", err)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	if _, err := s.writer.Write(out); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("flushing record: %w", err)
	}
	return nil
}

// Console reports that a file is not the console.
func (s *FileSink) Console() bool { return false }

// Path returns the sink's file path.
func (s *FileSink) Path() string { return s.path }

// Close flushes and closes the file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("flushing on close: %w", err)
	}
	return s.file.Close()
}
