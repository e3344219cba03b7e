package flv

import (
	"io"

	"example.com/flvgate/internal/common"
)

// WalkOptions configures a Walker.
type WalkOptions struct {
	// Start is the offset of the first tag, normally HeaderSize.
	Start int
	// Resync makes the walker slide forward one byte after a rejected tag
	// instead of aborting.
	Resync bool
	// OnError, when set, is called for every rejected offset.
	OnError func(*TagError)
	Metrics *common.Metrics
}

// Walker iterates the tags of an in-memory buffer. Every step strictly
// increases the cursor: an accepted tag moves it by at least TagOverhead
// bytes and a rejected one by exactly one, so a walk over n bytes performs at
// most n steps whatever the content.
type Walker struct {
	buf     []byte
	offset  int
	opts    WalkOptions
	err     error
	tags    int
	skipped int
}

// NewWalker returns a walker positioned at opts.Start.
func NewWalker(buf []byte, opts WalkOptions) *Walker {
	start := opts.Start
	if start < 0 {
		start = 0
	}
	if opts.Metrics != nil {
		opts.Metrics.SetTotalBytes(int64(len(buf)))
	}
	return &Walker{buf: buf, offset: start, opts: opts}
}

// Next returns the next valid tag. It returns io.EOF once the cursor reaches
// the end of the buffer. Without resync the first structural error is
// returned and the walker stays aborted.
func (w *Walker) Next() (Tag, error) {
	if w.err != nil {
		return Tag{}, w.err
	}
	for {
		if w.offset >= len(w.buf) {
			return Tag{}, io.EOF
		}
		tag, next, err := ReadTag(w.buf, w.offset)
		if err == nil {
			if w.opts.Metrics != nil {
				w.opts.Metrics.AddTag(int64(next - w.offset))
			}
			w.offset = next
			w.tags++
			return tag, nil
		}
		te, _ := AsTagError(err)
		if w.opts.OnError != nil && te != nil {
			w.opts.OnError(te)
		}
		if !w.opts.Resync {
			w.err = err
			return Tag{}, err
		}
		w.slide(w.offset + 1)
	}
}

// Reject discards a tag already returned by Next and resumes the walk one
// byte after its start.
func (w *Walker) Reject(tag Tag) {
	if w.err != nil || tag.Offset < 0 || tag.Offset+1 > w.offset {
		return
	}
	w.tags--
	w.offset = tag.Offset + 1
	w.skipped++
	if w.opts.Metrics != nil {
		w.opts.Metrics.IncDropped()
	}
}

func (w *Walker) slide(to int) {
	if to > len(w.buf) {
		to = len(w.buf)
	}
	if w.opts.Metrics != nil {
		w.opts.Metrics.IncResync()
		w.opts.Metrics.AddBytes(int64(to - w.offset))
	}
	w.skipped += to - w.offset
	w.offset = to
}

// Offset is the position of the next read.
func (w *Walker) Offset() int {
	return w.offset
}

// Err returns the error that aborted the walk, if any.
func (w *Walker) Err() error {
	return w.err
}

// Tags is the number of tags returned and not rejected.
func (w *Walker) Tags() int {
	return w.tags
}

// Skipped is the number of bytes stepped over one at a time.
func (w *Walker) Skipped() int {
	return w.skipped
}
