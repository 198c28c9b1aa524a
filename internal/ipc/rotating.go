package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// RotatingWriter appends any JSON-serializable audit record to a daily
// file named {stem}-YYYYMMDD.jsonl, rotating by local date. Mid-day writes
// continue to the same file until the date changes.
type RotatingWriter struct {
	dir  string
	stem string

	mu          sync.Mutex
	file        *os.File
	currentDate string
	pending     uint64
	written     uint64
	failed      uint64
}

// NewRotatingWriter creates a writer rooted at dir, naming files
// {stem}-YYYYMMDD.jsonl.
func NewRotatingWriter(dir, stem string) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	return &RotatingWriter{dir: dir, stem: stem}, nil
}

func (w *RotatingWriter) rotateLocked(now time.Time) error {
	date := now.Format("20060102")
	if w.file != nil && date == w.currentDate {
		return nil
	}
	if w.file != nil {
		w.file.Sync()
		w.file.Close()
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl", w.stem, date))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	w.file = f
	w.currentDate = date
	return nil
}

// Append writes record as a single JSONL line, rotating first if the
// local date has changed. No field in the serialized line may contain a
// literal newline.
func (w *RotatingWriter) Append(record any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	atomic.AddUint64(&w.pending, 1)
	defer atomic.AddUint64(&w.pending, ^uint64(0))

	if err := w.rotateLocked(time.Now()); err != nil {
		atomic.AddUint64(&w.failed, 1)
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		atomic.AddUint64(&w.failed, 1)
		return fmt.Errorf("marshal audit record: %w", err)
	}

	if _, err := w.file.Write(append(data, '\n')); err != nil {
		atomic.AddUint64(&w.failed, 1)
		log.Printf("audit write failed: %v", err)
		return err
	}
	if err := w.file.Sync(); err != nil {
		atomic.AddUint64(&w.failed, 1)
		log.Printf("audit sync failed: %v", err)
		return err
	}

	atomic.AddUint64(&w.written, 1)
	return nil
}

// Pending returns the number of in-flight Append calls not yet durably
// flushed; used by the admin metrics surface.
func (w *RotatingWriter) Pending() int {
	return int(atomic.LoadUint64(&w.pending))
}

// WriterStats summarizes a RotatingWriter's lifetime counters.
type WriterStats struct {
	Written uint64
	Failed  uint64
}

// Stats returns lifetime write counters.
func (w *RotatingWriter) Stats() WriterStats {
	return WriterStats{
		Written: atomic.LoadUint64(&w.written),
		Failed:  atomic.LoadUint64(&w.failed),
	}
}

// Close flushes and closes the current file, if any.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	w.file.Sync()
	err := w.file.Close()
	w.file = nil
	log.Printf("audit writer closed: written=%d failed=%d", atomic.LoadUint64(&w.written), atomic.LoadUint64(&w.failed))
	return err
}

// Reader sequentially scans a JSONL audit file, stopping at EOF.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// OpenReader opens path for sequential JSONL scanning with an enlarged
// 1MB line buffer, matching the WAL-reader idiom for records that may
// carry long `details`/`logs_preview` fields.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	return &Reader{file: f, scanner: scanner}, nil
}

// Next decodes the next JSONL line into v, returning false at EOF.
// Parsing stops at EOF; an unparseable line terminates the scan with a
// fatal error per the replay-input contract.
func (r *Reader) Next(v any) (bool, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return false, fmt.Errorf("audit scan error: %w", err)
		}
		return false, nil
	}
	if err := json.Unmarshal(r.scanner.Bytes(), v); err != nil {
		return false, fmt.Errorf("unparseable audit line: %w", err)
	}
	return true, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// FindRotatedFile locates the actual {stem}-YYYYMMDD.jsonl file that a
// RotatingWriter configured with stem produced in dir, since callers only
// know the configured stem/dir, not which date's file was written.
func FindRotatedFile(dir, stem string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read audit dir: %w", err)
	}
	prefix := stem + "-"
	var latest string
	for _, e := range entries {
		name := e.Name()
		if len(name) > len(prefix) && name[:len(prefix)] == prefix && filepath.Ext(name) == ".jsonl" {
			if name > latest {
				latest = name
			}
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no rotated file matching %s-*.jsonl in %s", stem, dir)
	}
	return filepath.Join(dir, latest), nil
}
