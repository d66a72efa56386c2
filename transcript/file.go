package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/logging"
)

// DefaultDir is where per-session transcript files are written.
const DefaultDir = "logs"

// timeLayout renders timestamps at second precision, matching the log lines
// a study operator reads back after a session.
const timeLayout = "2006-01-02T15:04:05"

// Options configures a FileStore.
type Options struct {
	// Dir is the directory transcript files are written to.
	Dir string

	// Logger receives store telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// FileStore is a TranscriptStore that mirrors every entry to a per-session
// log file, one line per entry:
//
//	[2025-03-14T10:22:05] THINKING: Let me weigh both sides here.
//
// Multi-line messages keep the header on its own line with the body indented
// beneath it. Entries are also retained in memory, so Entries reflects the
// current process; the files are the durable record.
type FileStore struct {
	mu      sync.Mutex
	dir     string
	logger  logging.Logger
	entries map[string][]core.TranscriptEntry
}

// NewFileStore constructs a file-backed transcript store.
func NewFileStore(optFns ...func(o *Options)) *FileStore {
	opts := Options{
		Dir:    DefaultDir,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &FileStore{
		dir:     opts.Dir,
		logger:  opts.Logger,
		entries: make(map[string][]core.TranscriptEntry),
	}
}

// Start truncates the session's transcript file and resets its in-memory
// entries. A fresh session always begins with an empty trace.
func (s *FileStore) Start(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}
	if err := os.WriteFile(s.path(sessionID), nil, 0o644); err != nil {
		return fmt.Errorf("reset transcript file: %w", err)
	}

	s.entries[sessionID] = []core.TranscriptEntry{}
	s.logger.Debug("transcript started", "session_id", sessionID, "path", s.path(sessionID))
	return nil
}

// Append adds one labeled line to the session transcript and its file.
// Appending to a session that was never started begins its file implicitly.
func (s *FileStore) Append(sessionID, label, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := core.TranscriptEntry{
		ID:        core.NewID(),
		Label:     label,
		Message:   message,
		Timestamp: time.Now(),
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}
	f, err := os.OpenFile(s.path(sessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatEntry(entry)); err != nil {
		return fmt.Errorf("write transcript entry: %w", err)
	}

	s.entries[sessionID] = append(s.entries[sessionID], entry)
	return nil
}

// Entries returns a copy of the entries recorded during the current process,
// in order.
func (s *FileStore) Entries(sessionID string) ([]core.TranscriptEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recorded := s.entries[sessionID]
	out := make([]core.TranscriptEntry, len(recorded))
	copy(out, recorded)
	return out, nil
}

// Path returns the transcript file path for a session.
func (s *FileStore) Path(sessionID string) string {
	return s.path(sessionID)
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, sanitizeID(sessionID)+".log")
}

// formatEntry renders one entry as its log line(s). Multi-line messages keep
// the timestamped header on its own line with the body indented.
func formatEntry(e core.TranscriptEntry) string {
	ts := e.Timestamp.Format(timeLayout)
	if !strings.Contains(e.Message, "\n") {
		return fmt.Sprintf("[%s] %s: %s\n", ts, e.Label, e.Message)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s:\n", ts, e.Label)
	for _, line := range strings.Split(e.Message, "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// sanitizeID maps a session id to a safe file name component.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, id)
}
