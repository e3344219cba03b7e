package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJournalAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.jsonl")
	j := NewJournal(path)
	entries := []JournalEntry{
		{Op: "merge", Output: "out.flv", Source: "head.flv", Offset: 0, Length: 100},
		{Op: "merge", Output: "out.flv", Source: "tail.flv", Offset: 40, Length: 60, OutOffset: 100},
	}
	for _, e := range entries {
		if err := j.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	for i, e := range got {
		if e.RunID != j.RunID() {
			t.Fatalf("entry %d run id = %q, want %q", i, e.RunID, j.RunID())
		}
		if e.Ts.IsZero() {
			t.Fatalf("entry %d has no timestamp", i)
		}
		if e.Source != entries[i].Source || e.Offset != entries[i].Offset || e.OutOffset != entries[i].OutOffset {
			t.Fatalf("entry %d = %+v", i, e)
		}
	}
}

func TestJournalRejectsMissingSource(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "journal.jsonl"))
	if err := j.Append(JournalEntry{Op: "cut"}); err == nil {
		t.Fatal("expected error for entry without source")
	}
	var nilJournal *Journal
	if err := nilJournal.Append(JournalEntry{Source: "a"}); err == nil {
		t.Fatal("expected error for nil journal")
	}
}

func TestLastRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	first := NewJournal(path)
	second := NewJournal(path)
	if err := first.Append(JournalEntry{Op: "cut", Source: "a.flv", Length: 10}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := first.Complete("cut", "a-out.flv", 10); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := second.Append(JournalEntry{Op: "fix", Source: "b.flv", Length: 20}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := second.Append(JournalEntry{Op: "fix", Source: "b.flv", Offset: 30, Length: 5, OutOffset: 20}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := second.Complete("fix", "b-out.flv", 25); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	entries, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	run, done, ok := LastRun(entries)
	if !ok || len(run) != 2 {
		t.Fatalf("LastRun returned %d entries (ok=%v), want 2", len(run), ok)
	}
	for _, e := range run {
		if e.RunID != second.RunID() || e.Op != "fix" || e.Done {
			t.Fatalf("unexpected entry %+v", e)
		}
	}
	if done.RunID != second.RunID() || done.Length != 25 || done.Output != "b-out.flv" {
		t.Fatalf("done = %+v", done)
	}
	if _, _, ok := LastRun(nil); ok {
		t.Fatal("LastRun(nil) should find no run")
	}
}

func TestLastRunSkipsUnfinishedRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	good := NewJournal(path)
	failed := NewJournal(path)
	if err := good.Append(JournalEntry{Op: "cut", Source: "a.flv", Length: 10}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := good.Complete("cut", "a-out.flv", 10); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := failed.Append(JournalEntry{Op: "cut", Source: "bad.flv", Length: 13}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	entries, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	run, done, found := LastRun(entries)
	if !found || done.RunID != good.RunID() {
		t.Fatalf("LastRun picked run %q (found=%v), want %q", done.RunID, found, good.RunID())
	}
	if len(run) != 1 || run[0].Source != "a.flv" {
		t.Fatalf("run = %+v", run)
	}

	if _, _, found := LastRun(entries[2:]); found {
		t.Fatal("a journal holding only a failed run has nothing to replay")
	}
}

func TestReadJournalRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadJournal(path); err == nil {
		t.Fatal("expected decode error")
	}
}
