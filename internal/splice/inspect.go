package splice

import (
	"errors"
	"io"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
)

const DefaultGapThreshold = 500

type InspectOptions struct {
	// Tolerant resynchronises past malformed tags. Otherwise the first one
	// ends the scan, which is reported but is not an error.
	Tolerant bool
	// GapThreshold is the forward timestamp jump, in milliseconds, that
	// starts a new time range.
	GapThreshold uint32
	OnTag        func(flv.Tag)
	OnError      func(*flv.TagError)
	Metrics      *common.Metrics
}

// TimeRange is a run of tags without a forward gap.
type TimeRange struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Inspection summarises the tag stream of one file.
type Inspection struct {
	Name          string      `json:"name"`
	Size          int         `json:"size"`
	SHA256        string      `json:"sha256,omitempty"`
	FirstMetadata bool        `json:"firstMetadata"`
	Tags          int         `json:"tags"`
	Audio         int         `json:"audio"`
	Video         int         `json:"video"`
	Metadata      int         `json:"metadata"`
	Backward      int         `json:"backward"`
	SkippedBytes  int         `json:"skippedBytes"`
	Ranges        []TimeRange `json:"ranges"`
	Gaps          int         `json:"gaps"`
	Complete      bool        `json:"complete"`
	StopOffset    int         `json:"stopOffset,omitempty"`
	StopPercent   int         `json:"stopPercent,omitempty"`
	StopReason    string      `json:"stopReason,omitempty"`
}

// Inspect walks src and reports tag counts and time ranges. A forward jump
// larger than GapThreshold opens a new range; backward steps are counted but
// stay in the current range.
func Inspect(src Source, opts InspectOptions) (Inspection, error) {
	if opts.GapThreshold == 0 {
		opts.GapThreshold = DefaultGapThreshold
	}
	in := Inspection{Name: src.Name, Size: len(src.Data), SHA256: src.SHA256}
	if err := checkHeader(src); err != nil {
		return in, err
	}
	if kind, ok := flv.KindAt(src.Data, flv.HeaderSize); ok {
		in.FirstMetadata = kind == flv.TagMetadata
	}
	if !in.FirstMetadata {
		warnIfNotMetadata(src)
	}

	w := flv.NewWalker(src.Data, flv.WalkOptions{
		Start:   flv.HeaderSize,
		Resync:  opts.Tolerant,
		OnError: opts.OnError,
		Metrics: opts.Metrics,
	})
	var cur *TimeRange
	var prev uint32
	for {
		tag, err := w.Next()
		if errors.Is(err, io.EOF) {
			in.Complete = true
			break
		}
		if err != nil {
			in.StopOffset = w.Offset()
			in.StopPercent = int(int64(w.Offset()) * 100 / int64(len(src.Data)))
			in.StopReason = err.Error()
			break
		}
		if opts.OnTag != nil {
			opts.OnTag(tag)
		}
		in.Tags++
		switch tag.Kind {
		case flv.TagAudio:
			in.Audio++
		case flv.TagVideo:
			in.Video++
		case flv.TagMetadata:
			in.Metadata++
		}
		ts := tag.Timestamp
		switch {
		case cur == nil:
			in.Ranges = append(in.Ranges, TimeRange{Start: ts, End: ts})
		case ts > prev && ts-prev > opts.GapThreshold:
			in.Gaps++
			in.Ranges = append(in.Ranges, TimeRange{Start: ts, End: ts})
		default:
			if ts < prev {
				in.Backward++
			}
			if ts < cur.Start {
				cur.Start = ts
			}
			if ts > cur.End {
				cur.End = ts
			}
		}
		cur = &in.Ranges[len(in.Ranges)-1]
		prev = ts
	}
	in.SkippedBytes = w.Skipped()
	return in, nil
}
