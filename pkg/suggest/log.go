package suggest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultLogPath is where suggestions are recorded unless configured otherwise.
const DefaultLogPath = "locator-suggestions.json"

// Record is one healing attempt that produced a suggestion.
type Record struct {
	FailedLocator    string `json:"failedLocator"`
	SuggestedLocator string `json:"suggestedLocator"`
	// Timestamp is in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// pathLocks serializes writers of the same file across every FileLog in the
// process.
var pathLocks sync.Map // map[string]*sync.Mutex

func lockFor(path string) *sync.Mutex {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	mu, _ := pathLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// FileLog appends suggestion records to a file, one JSON object per line.
// The file is opened and closed on every write, and is never truncated or
// rotated.
type FileLog struct {
	path string
	now  func() time.Time
}

// LogOption configures a FileLog.
type LogOption func(*FileLog)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) LogOption {
	return func(l *FileLog) {
		l.now = now
	}
}

// NewFileLog returns a log writing to path, or DefaultLogPath when path is
// empty.
func NewFileLog(path string, opts ...LogOption) *FileLog {
	if path == "" {
		path = DefaultLogPath
	}
	l := &FileLog{path: path, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the file the log appends to.
func (l *FileLog) Path() string {
	return l.path
}

// Record appends one record stamped with the current time.
func (l *FileLog) Record(failedLocator, suggestedLocator string) error {
	return l.Append(Record{
		FailedLocator:    failedLocator,
		SuggestedLocator: suggestedLocator,
		Timestamp:        l.now().UnixMilli(),
	})
}

// Append writes rec as a single line. Concurrent appends never interleave.
func (l *FileLog) Append(rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode suggestion record: %w", err)
	}
	line = append(line, '\n')

	mu := lockFor(l.path)
	mu.Lock()
	defer mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create suggestion log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open suggestion log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to write suggestion log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close suggestion log: %w", err)
	}
	return nil
}

// ReadRecords loads every record in the log at path. A missing file holds no
// records.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read suggestion log: %w", err)
	}

	var records []Record
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return records, fmt.Errorf("failed to decode suggestion record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
