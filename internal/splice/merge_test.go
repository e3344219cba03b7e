package splice

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/flvgate/internal/flv"
)

// recording is an interleaved audio/video stream with a distinct payload per
// frame. tags[2*i] is video frame i.
type recording struct {
	tags [][]byte
}

func newRecording(frames int) recording {
	var r recording
	for i := 0; i < frames; i++ {
		ts := uint32(i * 40)
		r.tags = append(r.tags, video(ts, fmt.Sprintf("frame-%03d", i)), audio(ts, fmt.Sprintf("audio-%03d", i)))
	}
	return r
}

// offsetOf returns where tags[idx] starts in build(meta(), tags...).
func (r recording) offsetOf(idx int) int {
	off := flv.HeaderSize + len(meta())
	for _, tag := range r.tags[:idx] {
		off += len(tag)
	}
	return off
}

// tailFrom builds a tail file holding junk video frames, then the recording
// from tag idx up to end, then extra frames.
func (r recording) tailFrom(junk, idx, end, extra int) []byte {
	tags := [][]byte{meta()}
	for i := 0; i < junk; i++ {
		tags = append(tags, video(uint32(10_000+i*40), fmt.Sprintf("junk-%03d", i)))
	}
	tags = append(tags, r.tags[idx:end]...)
	last := uint32(end * 20)
	for i := 0; i < extra; i++ {
		tags = append(tags, video(last+uint32(i+1)*40, fmt.Sprintf("extra-%03d", i)))
	}
	return build(tags...)
}

func mergeOptions(skip int) MergeOptions {
	opts := DefaultMergeOptions()
	opts.SkipFrames = skip
	return opts
}

func TestMergeRecoversJunction(t *testing.T) {
	rec := newRecording(40)
	head := build(append([][]byte{meta()}, rec.tags...)...)
	// A recording interrupted mid-tag leaves a truncated tag at the end.
	head = append(head, video(9999, "cut-short")[:7]...)
	tail := rec.tailFrom(3, 20, len(rec.tags), 5)

	var out bytes.Buffer
	j, err := Merge(src("head.flv", head), src("tail.flv", tail), NewEmitter(&out, EmitterOptions{}), mergeOptions(3))
	require.NoError(t, err)

	require.Equal(t, rec.offsetOf(20), j.HeadOffset)
	require.Equal(t, 3, j.NeedleIndex)
	require.Equal(t, uint32(400), j.NeedleTimestamp)
	require.Equal(t, len("frame-010"), j.NeedleLength)
	require.Equal(t, 7, j.TrailingErrors)
	require.Zero(t, j.HeadErrors)
	require.True(t, j.Low)
	require.Equal(t, uint32(0), j.MinTimestamp)
	require.Equal(t, uint32(39*40), j.MaxTimestamp)

	want := append(append([]byte{}, head[:j.HeadOffset]...), tail[j.NeedleOffset:]...)
	require.Equal(t, want, out.Bytes())
	require.Equal(t, int64(len(want)), j.OutputLength)
	require.Greater(t, len(want), len(head))
}

func TestMergeReportsHeadErrorsBeforeTolerance(t *testing.T) {
	rec := newRecording(40)
	tags := append([][]byte{meta()}, rec.tags[:10]...)
	tags = append(tags, []byte{0x07})
	tags = append(tags, rec.tags[10:]...)
	head := build(tags...)
	tail := rec.tailFrom(0, 30, len(rec.tags), 5)

	var seen []int
	opts := mergeOptions(0)
	opts.OnError = func(te *flv.TagError) { seen = append(seen, te.Offset) }
	j, err := FindJunction(src("head.flv", head), src("tail.flv", tail), opts)
	require.NoError(t, err)
	require.Equal(t, 1, j.HeadErrors)
	require.Equal(t, []int{rec.offsetOf(10)}, seen)
	require.Equal(t, rec.offsetOf(30)+1, j.HeadOffset)
}

func TestMergeAmbiguousMatch(t *testing.T) {
	rec := newRecording(40)
	tags := append([][]byte{meta()}, rec.tags...)
	tags = append(tags, video(2000, "frame-025"))
	head := build(tags...)
	tail := rec.tailFrom(0, 50, len(rec.tags), 60)

	_, err := FindJunction(src("head.flv", head), src("tail.flv", tail), mergeOptions(0))
	require.ErrorIs(t, err, ErrAmbiguousMatch)
	require.ErrorContains(t, err, fmt.Sprint(rec.offsetOf(50)))
}

func TestMergeJunctionNotFound(t *testing.T) {
	rec := newRecording(20)
	head := build(append([][]byte{meta()}, rec.tags...)...)
	tail := build(meta(), video(5000, "elsewhere"), video(5040, "more"))

	_, err := FindJunction(src("head.flv", head), src("tail.flv", tail), mergeOptions(0))
	require.ErrorIs(t, err, ErrJunctionNotFound)
	require.ErrorContains(t, err, "00:00:760")
}

func TestMergeSuspiciousMatch(t *testing.T) {
	rec := newRecording(40)
	head := build(append([][]byte{meta()}, rec.tags...)...)
	tail := rec.tailFrom(0, 20, 60, 0)

	var out bytes.Buffer
	_, err := Merge(src("head.flv", head), src("tail.flv", tail), NewEmitter(&out, EmitterOptions{}), mergeOptions(0))
	require.ErrorIs(t, err, ErrSuspiciousMatch)
	require.Zero(t, out.Len())
}

func TestMergeTimeClue(t *testing.T) {
	rec := newRecording(40)
	head := build(append([][]byte{meta()}, rec.tags...)...)
	tail := rec.tailFrom(3, 20, len(rec.tags), 5)

	opts := DefaultMergeOptions()
	opts.UseTimeClue = true
	opts.TimeClue = 420
	opts.ClueTolerance = 100
	j, err := FindJunction(src("head.flv", head), src("tail.flv", tail), opts)
	require.NoError(t, err)
	require.Equal(t, uint32(400), j.NeedleTimestamp)
	require.Equal(t, rec.offsetOf(20), j.HeadOffset)
}

func TestSelectNeedleNotFound(t *testing.T) {
	tail := build(meta(), video(0, "a"), video(40, "b"))

	_, err := SelectNeedle(src("tail.flv", tail), mergeOptions(100))
	require.ErrorIs(t, err, ErrNeedleNotFound)

	opts := DefaultMergeOptions()
	opts.UseTimeClue = true
	opts.TimeClue = 60_000
	_, err = SelectNeedle(src("tail.flv", tail), opts)
	require.ErrorIs(t, err, ErrNeedleNotFound)
}

func TestSelectNeedleRejectsCorruptTail(t *testing.T) {
	tail := build(meta(), []byte{0x07}, video(0, "a"))
	_, err := SelectNeedle(src("tail.flv", tail), mergeOptions(0))
	require.ErrorIs(t, err, flv.ErrInvalidKind)
}
