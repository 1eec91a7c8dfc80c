package auditlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okaneren/inkpost/pkg/logger"
	"go.uber.org/zap"
)

// Event names recorded by the services.
const (
	EventRegister      = "user.register"
	EventLogin         = "user.login"
	EventLoginFailed   = "user.login_failed"
	EventUserDeleted   = "user.deleted"
	EventPostCreated   = "post.created"
	EventCommentCreate = "comment.created"
)

// Entry is one audit record, stored as a single JSON line.
type Entry struct {
	Event     string    `json:"event"`
	ActorID   string    `json:"actor_id"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is an append-only, fsync'd audit trail.
type Log struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// New opens (or creates) the audit log at filePath.
func New(filePath string) (*Log, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Log{
		filePath: filePath,
		file:     file,
	}, nil
}

// Write appends an entry and syncs it to disk. The entry's timestamp is
// filled in when zero.
func (l *Log) Write(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Error("audit: failed to marshal entry",
			zap.String("event", entry.Event),
			zap.Error(err),
		)
		return err
	}

	if _, err := l.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("audit: failed to write to file",
			zap.String("event", entry.Event),
			zap.Error(err),
		)
		return err
	}

	// Force sync to disk (durability)
	if err := l.file.Sync(); err != nil {
		logger.Log.Error("audit: failed to sync to disk",
			zap.String("event", entry.Event),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// ReadAll reads every entry in the trail.
func (l *Log) ReadAll() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.readAllUnsafe()
}

// Compact drops entries older than the cutoff, rewriting the file through a
// temp file and an atomic rename.
func (l *Log) Compact(before time.Time) error {
	start := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	allEntries, err := l.readAllUnsafe()
	if err != nil {
		logger.Log.Error("audit: failed to read entries for compaction",
			zap.Error(err),
		)
		return err
	}

	beforeCount := len(allEntries)

	var remaining []Entry
	for _, entry := range allEntries {
		if !entry.Timestamp.Before(before) {
			remaining = append(remaining, entry)
		}
	}

	if err := l.file.Close(); err != nil {
		logger.Log.Error("audit: failed to close file for compaction",
			zap.Error(err),
		)
		return err
	}

	tempFile := l.filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		logger.Log.Error("audit: failed to create temp file",
			zap.String("temp_file", tempFile),
			zap.Error(err),
		)
		return err
	}

	for _, entry := range remaining {
		data, _ := json.Marshal(entry)
		f.WriteString(string(data) + "\n")
	}

	f.Sync()
	f.Close()

	// Replace old file with new one (atomic)
	if err := os.Rename(tempFile, l.filePath); err != nil {
		logger.Log.Error("audit: failed to rename temp file",
			zap.String("temp_file", tempFile),
			zap.Error(err),
		)
		return err
	}

	newFile, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		logger.Log.Error("audit: failed to reopen file after compaction",
			zap.String("file_path", l.filePath),
			zap.Error(err),
		)
		return err
	}
	l.file = newFile

	logger.Log.Info("audit: compaction completed",
		zap.Int("before_count", beforeCount),
		zap.Int("remaining_count", len(remaining)),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

// readAllUnsafe reads all entries without locking (internal use only)
func (l *Log) readAllUnsafe() ([]Entry, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

// Close closes the audit log file
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
