package splice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
)

const (
	DefaultSkipFrames    = 100
	DefaultClueTolerance = 500
	DefaultTailTolerance = 95
	DefaultWarnBelow     = 80
)

// MergeOptions selects the fingerprint frame in the tail file and tunes the
// search in the head file.
type MergeOptions struct {
	// SkipFrames is the number of video tags of tail passed over before the
	// fingerprint is taken. Ignored when UseTimeClue is set.
	SkipFrames int
	// UseTimeClue picks the first video tag whose timestamp is within
	// ClueTolerance milliseconds of TimeClue instead.
	UseTimeClue   bool
	TimeClue      uint32
	ClueTolerance uint32
	// TailTolerance is the percentage of head past which structural errors
	// are expected trailing corruption rather than a warning.
	TailTolerance int
	// WarnBelow flags a junction located before this percentage of head.
	WarnBelow int
	// OnError sees structural errors in head before the tolerated tail.
	OnError func(*flv.TagError)
	Metrics *common.Metrics
}

// DefaultMergeOptions returns the settings the merge tool has always used.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{
		SkipFrames:    DefaultSkipFrames,
		ClueTolerance: DefaultClueTolerance,
		TailTolerance: DefaultTailTolerance,
		WarnBelow:     DefaultWarnBelow,
	}
}

func (o *MergeOptions) fill() {
	if o.SkipFrames < 0 {
		o.SkipFrames = 0
	}
	if o.ClueTolerance == 0 {
		o.ClueTolerance = DefaultClueTolerance
	}
	if o.TailTolerance <= 0 || o.TailTolerance > 100 {
		o.TailTolerance = DefaultTailTolerance
	}
	if o.WarnBelow <= 0 || o.WarnBelow > 100 {
		o.WarnBelow = DefaultWarnBelow
	}
}

// Needle is the video tag of tail whose payload is searched for in head.
type Needle struct {
	Offset    int
	Timestamp uint32
	Body      []byte
	// Index counts the video tags of tail before this one.
	Index int
}

// Junction describes where head and tail are spliced.
type Junction struct {
	HeadOffset      int
	NeedleOffset    int
	NeedleTimestamp uint32
	NeedleLength    int
	NeedleIndex     int
	HeadPercent     int
	// MinTimestamp and MaxTimestamp span the tags scanned in head.
	MinTimestamp uint32
	MaxTimestamp uint32
	// HeadErrors counts rejected offsets before the tolerated tail of
	// head, TrailingErrors those within it.
	HeadErrors     int
	TrailingErrors int
	OutputLength   int64
	// Low is set when the junction lies before WarnBelow percent of head,
	// which usually means the fingerprint frame was badly chosen.
	Low bool
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// SelectNeedle walks tail strictly and returns the fingerprint tag.
func SelectNeedle(tail Source, opts MergeOptions) (Needle, error) {
	opts.fill()
	if err := checkHeader(tail); err != nil {
		return Needle{}, err
	}
	w := flv.NewWalker(tail.Data, flv.WalkOptions{Start: flv.HeaderSize, Metrics: opts.Metrics})
	videos := 0
	for {
		tag, err := w.Next()
		if errors.Is(err, io.EOF) {
			if opts.UseTimeClue {
				return Needle{}, fmt.Errorf("%s: %w within %d ms of %s (%d video tags scanned)",
					tail.Name, ErrNeedleNotFound, opts.ClueTolerance, flv.FormatClock(opts.TimeClue), videos)
			}
			return Needle{}, fmt.Errorf("%s: %w after skipping %d frames (only %d video tags)",
				tail.Name, ErrNeedleNotFound, opts.SkipFrames, videos)
		}
		if err != nil {
			return Needle{}, fmt.Errorf("%s: %w", tail.Name, err)
		}
		if tag.Kind != flv.TagVideo {
			continue
		}
		pick := videos == opts.SkipFrames
		if opts.UseTimeClue {
			pick = absDiff(tag.Timestamp, opts.TimeClue) < opts.ClueTolerance
		}
		if pick {
			return Needle{Offset: tag.Offset, Timestamp: tag.Timestamp, Body: tag.Body, Index: videos}, nil
		}
		videos++
	}
}

// FindJunction locates the unique video tag of head whose payload equals
// the fingerprint taken from tail. head is scanned end to end with one-byte
// resynchronisation; a second match is fatal.
func FindJunction(head, tail Source, opts MergeOptions) (Junction, error) {
	opts.fill()
	needle, err := SelectNeedle(tail, opts)
	if err != nil {
		return Junction{}, err
	}
	j := Junction{
		HeadOffset:      -1,
		NeedleOffset:    needle.Offset,
		NeedleTimestamp: needle.Timestamp,
		NeedleLength:    len(needle.Body),
		NeedleIndex:     needle.Index,
	}
	if err := checkHeader(head); err != nil {
		return j, err
	}

	headLen := len(head.Data)
	onError := func(te *flv.TagError) {
		if int64(te.Offset)*100/int64(headLen) >= int64(opts.TailTolerance) {
			j.TrailingErrors++
			return
		}
		j.HeadErrors++
		if opts.OnError != nil {
			opts.OnError(te)
		}
	}
	w := flv.NewWalker(head.Data, flv.WalkOptions{
		Start:   flv.HeaderSize,
		Resync:  true,
		OnError: onError,
		Metrics: opts.Metrics,
	})
	minTs, maxTs := uint32(math.MaxUint32), uint32(0)
	for {
		tag, err := w.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return j, fmt.Errorf("%s: %w", head.Name, err)
		}
		if tag.Timestamp < minTs {
			minTs = tag.Timestamp
		}
		if tag.Timestamp > maxTs {
			maxTs = tag.Timestamp
		}
		if tag.Kind != flv.TagVideo || !bytes.Equal(tag.Body, needle.Body) {
			continue
		}
		if j.HeadOffset >= 0 {
			return j, fmt.Errorf("%s: %w at offsets %d and %d; choose another frame",
				head.Name, ErrAmbiguousMatch, j.HeadOffset, tag.Offset)
		}
		j.HeadOffset = tag.Offset
	}
	if w.Tags() > 0 {
		j.MinTimestamp, j.MaxTimestamp = minTs, maxTs
	}
	if j.HeadOffset < 0 {
		return j, fmt.Errorf("%s: %w (frame at %s, time range scanned [%s, %s]); make sure the files overlap or choose another frame",
			head.Name, ErrJunctionNotFound, flv.FormatClock(needle.Timestamp),
			flv.FormatClock(j.MinTimestamp), flv.FormatClock(j.MaxTimestamp))
	}

	j.HeadPercent = int(int64(j.HeadOffset) * 100 / int64(headLen))
	j.Low = j.HeadPercent < opts.WarnBelow
	j.OutputLength = int64(j.HeadOffset) + int64(len(tail.Data)-needle.Offset)
	if j.OutputLength <= int64(headLen) {
		return j, fmt.Errorf("%w: output of %d bytes is not longer than %s (%d bytes); increase the skip count",
			ErrSuspiciousMatch, j.OutputLength, head.Name, headLen)
	}
	return j, nil
}

// Merge writes head up to the junction followed by tail from the
// fingerprint tag on.
func Merge(head, tail Source, out *Emitter, opts MergeOptions) (Junction, error) {
	j, err := FindJunction(head, tail, opts)
	if err != nil {
		return j, err
	}
	if err := out.Copy(head, flv.ByteRange{Start: 0, Length: j.HeadOffset}); err != nil {
		return j, err
	}
	if err := out.Copy(tail, flv.ByteRange{Start: j.NeedleOffset, Length: len(tail.Data) - j.NeedleOffset}); err != nil {
		return j, err
	}
	return j, out.Flush()
}
