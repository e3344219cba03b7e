package splice

import (
	"errors"
	"io"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
)

type FixOptions struct {
	OnError func(*flv.TagError)
	// OnDrop is called for each valid tag dropped because its timestamp is
	// lower than last, the timestamp of the last tag kept.
	OnDrop  func(tag flv.Tag, last uint32)
	Metrics *common.Metrics
}

type FixResult struct {
	Tags    int
	Dropped int
	Skipped int
	Written int64
}

// Fix copies every structurally valid tag of src whose timestamp does not go
// backwards. Malformed bytes are skipped one at a time; a tag that would
// regress time is dropped and the walk resumes one byte after its start.
// The timestamps of the output never decrease.
func Fix(src Source, out *Emitter, opts FixOptions) (FixResult, error) {
	var res FixResult
	start, err := copyHeader(src, out, true)
	if err != nil {
		return res, err
	}
	w := flv.NewWalker(src.Data, flv.WalkOptions{
		Start:   start,
		Resync:  true,
		OnError: opts.OnError,
		Metrics: opts.Metrics,
	})
	var last uint32
	for {
		tag, err := w.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		if tag.Timestamp < last {
			if opts.OnDrop != nil {
				opts.OnDrop(tag, last)
			}
			w.Reject(tag)
			res.Dropped++
			continue
		}
		last = tag.Timestamp
		if err := out.Copy(src, tag.Range()); err != nil {
			return res, err
		}
		res.Tags++
	}
	res.Skipped = w.Skipped()
	res.Written = out.Written()
	return res, out.Flush()
}
