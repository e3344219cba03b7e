package common

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
)

// JournalEntry records one byte range copied from a source file into an
// output. Replaying every entry of a run in order rebuilds the output. A run
// ends with a Done entry carrying the committed output size; runs without one
// failed and are never replayed.
type JournalEntry struct {
	RunID        string    `json:"runId"`
	Op           string    `json:"op"`
	Output       string    `json:"output"`
	Source       string    `json:"source"`
	SourceSHA256 string    `json:"sourceSha256,omitempty"`
	Offset       int64     `json:"offset"`
	Length       int64     `json:"length"`
	OutOffset    int64     `json:"outOffset"`
	Done         bool      `json:"done,omitempty"`
	Ts           time.Time `json:"ts"`
}

// Journal provides append-only access to a JSONL log of output ranges. All
// entries appended through one Journal share a run id.
type Journal struct {
	path  string
	runID ksuid.KSUID
	mu    sync.Mutex
}

// NewJournal returns a Journal that appends to path under a fresh run id.
func NewJournal(path string) *Journal {
	return &Journal{path: path, runID: ksuid.New()}
}

// Path returns the backing file path for the journal.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// RunID identifies the entries written by this Journal.
func (j *Journal) RunID() string {
	if j == nil {
		return ""
	}
	return j.runID.String()
}

// Append writes a new entry, stamping it with the run id and time.
func (j *Journal) Append(entry JournalEntry) error {
	if j == nil {
		return errors.New("nil journal")
	}
	if entry.Source == "" {
		return errors.New("journal entry missing source")
	}
	return j.write(entry)
}

// Complete marks the run as committed: output was fully written with size
// bytes.
func (j *Journal) Complete(op, output string, size int64) error {
	if j == nil {
		return errors.New("nil journal")
	}
	return j.write(JournalEntry{Op: op, Output: output, Length: size, Done: true})
}

func (j *Journal) write(entry JournalEntry) error {
	entry.RunID = j.runID.String()
	if entry.Ts.IsZero() {
		entry.Ts = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	dir := filepath.Dir(j.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadJournal loads every entry from the supplied JSONL file.
func ReadJournal(path string) ([]JournalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var entries []JournalEntry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry JournalEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("decode journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// LastRun returns the range entries of the most recent completed run, in the
// order they were written, and the run's Done entry. Runs that never reached
// Done are skipped. ok is false when the journal holds no completed run.
func LastRun(entries []JournalEntry) (run []JournalEntry, done JournalEntry, ok bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Done {
			done, ok = entries[i], true
			break
		}
	}
	if !ok {
		return nil, done, false
	}
	if _, err := ksuid.Parse(done.RunID); err != nil {
		return nil, done, false
	}
	for _, e := range entries {
		if e.RunID == done.RunID && !e.Done {
			run = append(run, e)
		}
	}
	return run, done, true
}
