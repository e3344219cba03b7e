package splice

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/flvgate/internal/flv"
)

func TestInspectCountsAndRanges(t *testing.T) {
	data := build(
		meta(),
		video(0, "k"), audio(0, "a"),
		video(40, "p"), audio(80, "a"),
		video(2000, "k"), audio(2040, "a"),
		video(2020, "late"),
		video(3000, "k"),
	)
	var seen int
	in, err := Inspect(src("rec.flv", data), InspectOptions{OnTag: func(flv.Tag) { seen++ }})
	require.NoError(t, err)

	require.True(t, in.Complete)
	require.True(t, in.FirstMetadata)
	require.Equal(t, len(data), in.Size)
	require.Equal(t, 9, in.Tags)
	require.Equal(t, 9, seen)
	require.Equal(t, 5, in.Video)
	require.Equal(t, 3, in.Audio)
	require.Equal(t, 1, in.Metadata)
	require.Equal(t, 1, in.Backward)
	require.Equal(t, 2, in.Gaps)
	require.Equal(t, []TimeRange{{0, 80}, {2000, 2040}, {3000, 3000}}, in.Ranges)
	require.Zero(t, in.SkippedBytes)
}

func TestInspectStrictStopsAtFirstError(t *testing.T) {
	data := build(meta(), video(0, "k"), []byte{0x07, 0x07}, video(40, "p"))
	in, err := Inspect(src("rec.flv", data), InspectOptions{})
	require.NoError(t, err)
	require.False(t, in.Complete)
	require.Equal(t, 2, in.Tags)
	stop := flv.HeaderSize + len(meta()) + len(video(0, "k"))
	require.Equal(t, stop, in.StopOffset)
	require.Equal(t, stop*100/len(data), in.StopPercent)
	require.Contains(t, in.StopReason, "invalid tag kind")
}

func TestInspectTolerantResyncs(t *testing.T) {
	data := build(meta(), video(0, "k"), []byte{0x07, 0x07}, video(40, "p"))
	var rejected int
	in, err := Inspect(src("rec.flv", data), InspectOptions{
		Tolerant:     true,
		GapThreshold: 10,
		OnError:      func(*flv.TagError) { rejected++ },
	})
	require.NoError(t, err)
	require.True(t, in.Complete)
	require.Equal(t, 3, in.Tags)
	require.Equal(t, 2, in.SkippedBytes)
	require.Equal(t, 2, rejected)
	require.Equal(t, 1, in.Gaps)
}

func TestInspectRequiresSignature(t *testing.T) {
	_, err := Inspect(src("rec.flv", []byte("not an flv file")), InspectOptions{})
	require.ErrorIs(t, err, flv.ErrHeaderSignature)
}
