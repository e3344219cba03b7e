// Package splice implements the operations that rebuild an FLV stream from
// byte ranges of one or two source buffers: cut, fix, merge and fix-seek,
// plus a read-only inspector.
package splice

import (
	"fmt"
	"io"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
)

// Source is a named, read-only input buffer.
type Source struct {
	Name string
	Data []byte
	// SHA256 is recorded in the journal when set.
	SHA256 string
}

// Emitter copies source ranges to an output in call order. Ranges are
// written immediately; consecutive ranges of one source are merged into a
// single journal entry.
type Emitter struct {
	w       io.Writer
	op      string
	output  string
	journal *common.Journal
	metrics *common.Metrics

	written int64
	pending *common.JournalEntry
}

// EmitterOptions carries the optional collaborators of an Emitter.
type EmitterOptions struct {
	Op      string
	Output  string
	Journal *common.Journal
	Metrics *common.Metrics
}

func NewEmitter(w io.Writer, opts EmitterOptions) *Emitter {
	return &Emitter{
		w:       w,
		op:      opts.Op,
		output:  opts.Output,
		journal: opts.Journal,
		metrics: opts.Metrics,
	}
}

// Copy writes src.Data[r] to the output.
func (e *Emitter) Copy(src Source, r flv.ByteRange) error {
	if !r.Contains(len(src.Data)) {
		return fmt.Errorf("range [%d, %d) outside %s (%d bytes)", r.Start, r.End(), src.Name, len(src.Data))
	}
	if r.Length == 0 {
		return nil
	}
	n, err := e.w.Write(r.Slice(src.Data))
	if err == nil && n != r.Length {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("copy %s [%d, %d): %w", src.Name, r.Start, r.End(), err)
	}
	if e.metrics != nil {
		e.metrics.AddWritten(int64(n))
	}
	if err := e.record(src, r); err != nil {
		return err
	}
	e.written += int64(n)
	return nil
}

func (e *Emitter) record(src Source, r flv.ByteRange) error {
	if e.journal == nil {
		return nil
	}
	if p := e.pending; p != nil && p.Source == src.Name && p.Offset+p.Length == int64(r.Start) {
		p.Length += int64(r.Length)
		return nil
	}
	if err := e.flushPending(); err != nil {
		return err
	}
	e.pending = &common.JournalEntry{
		Op:           e.op,
		Output:       e.output,
		Source:       src.Name,
		SourceSHA256: src.SHA256,
		Offset:       int64(r.Start),
		Length:       int64(r.Length),
		OutOffset:    e.written,
	}
	return nil
}

func (e *Emitter) flushPending() error {
	if e.pending == nil {
		return nil
	}
	entry := *e.pending
	e.pending = nil
	if err := e.journal.Append(entry); err != nil {
		return fmt.Errorf("journal %s: %w", e.journal.Path(), err)
	}
	return nil
}

// Flush writes any pending journal entry. It must be called once the
// operation has written its last range.
func (e *Emitter) Flush() error {
	if e.journal == nil {
		return nil
	}
	return e.flushPending()
}

// Written is the number of bytes written so far.
func (e *Emitter) Written() int64 {
	return e.written
}
