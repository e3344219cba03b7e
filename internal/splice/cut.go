package splice

import (
	"errors"
	"fmt"
	"io"
	"math"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
)

// NoEnd is the CutOptions.End value that keeps every tag from Begin on.
const NoEnd = math.MaxUint32

// CutOptions bounds the closed interval [Begin, End] in milliseconds.
type CutOptions struct {
	Begin uint32
	End   uint32
	// Tolerant resynchronises past malformed tags instead of aborting.
	Tolerant bool
	OnError  func(*flv.TagError)
	Metrics  *common.Metrics
}

type CutResult struct {
	Tags    int
	Skipped int
	Written int64
	// StoppedAt is the offset of the first tag past End, or -1 when the
	// walk reached the end of the buffer.
	StoppedAt int
	First     uint32
	Last      uint32
}

// Cut writes the header of src followed by every tag whose timestamp is
// within [Begin, End], in input order. Timestamps are copied unchanged, so a
// cut with Begin > 0 does not start at zero.
func Cut(src Source, out *Emitter, opts CutOptions) (CutResult, error) {
	res := CutResult{StoppedAt: -1}
	start, err := copyHeader(src, out, opts.Tolerant)
	if err != nil {
		return res, err
	}
	w := flv.NewWalker(src.Data, flv.WalkOptions{
		Start:   start,
		Resync:  opts.Tolerant,
		OnError: opts.OnError,
		Metrics: opts.Metrics,
	})
	for {
		tag, err := w.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Skipped = w.Skipped()
			return res, fmt.Errorf("%s: invalid tag found, aborting (fix the file first): %w", src.Name, err)
		}
		if tag.Timestamp > opts.End {
			res.StoppedAt = tag.Offset
			break
		}
		if tag.Timestamp < opts.Begin {
			continue
		}
		if err := out.Copy(src, tag.Range()); err != nil {
			return res, err
		}
		if res.Tags == 0 {
			res.First = tag.Timestamp
		}
		res.Last = tag.Timestamp
		res.Tags++
	}
	res.Skipped = w.Skipped()
	res.Written = out.Written()
	return res, out.Flush()
}
