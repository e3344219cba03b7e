package splice

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/flvgate/internal/flv"
)

func TestFixSeekSplicesAnchorAndFirstVideo(t *testing.T) {
	head := build(meta(), video(0, "key"), audio(0, "a0"), video(40, "p1"), audio(40, "a1"))
	broken := build(audio(5000, "x0"), audio(5020, "x1"), video(5040, "resume"), audio(5040, "x2"))

	var out bytes.Buffer
	sj, err := FixSeek(src("head.flv", head), src("broken.flv", broken), NewEmitter(&out, EmitterOptions{}), SeekOptions{})
	require.NoError(t, err)

	anchor := flv.HeaderSize + len(meta()) + len(video(0, "key")) + len(audio(0, "a0"))
	require.Equal(t, anchor, sj.HeadOffset)
	firstVideo := flv.HeaderSize + len(audio(5000, "x0")) + len(audio(5020, "x1"))
	require.Equal(t, firstVideo, sj.BrokenOffset)
	require.Equal(t, uint32(5040), sj.BrokenTimestamp)

	want := append(append([]byte{}, head[:anchor]...), broken[firstVideo:]...)
	require.Equal(t, want, out.Bytes())
	require.Equal(t, []uint32{0, 0, 0, 5040, 5040}, timestamps(t, out.Bytes(), flv.HeaderSize))
}

func TestFixSeekAnchorCount(t *testing.T) {
	head := build(meta(), video(0, "key"), audio(0, "a0"), video(40, "p1"))
	broken := build(video(5040, "resume"))

	sj, err := FindSeekJunction(src("head.flv", head), src("broken.flv", broken), SeekOptions{AnchorTags: 3})
	require.NoError(t, err)
	require.Equal(t, len(head), sj.HeadOffset)
	require.Equal(t, flv.HeaderSize, sj.BrokenOffset)

	_, err = FindSeekJunction(src("head.flv", head), src("broken.flv", broken), SeekOptions{AnchorTags: 4})
	require.ErrorIs(t, err, flv.ErrOutOfBounds)
	require.ErrorContains(t, err, "anchor tag 4")
}

func TestFixSeekErrors(t *testing.T) {
	good := build(meta(), video(0, "key"), audio(0, "a0"))
	tests := []struct {
		name   string
		head   []byte
		broken []byte
		want   error
	}{
		{
			name:   "head without metadata",
			head:   build(video(0, "key"), audio(0, "a0"), audio(20, "a1")),
			broken: build(video(5040, "resume")),
			want:   ErrMissingMetadata,
		},
		{
			name:   "second tag is metadata",
			head:   build(meta(), meta(), audio(0, "a0")),
			broken: build(video(5040, "resume")),
			want:   ErrUnexpectedKind,
		},
		{
			name:   "broken without video",
			head:   good,
			broken: build(audio(5000, "x0"), audio(5020, "x1")),
			want:   ErrNoVideoTag,
		},
		{
			name:   "broken bad signature",
			head:   good,
			broken: []byte("XYZ"),
			want:   flv.ErrHeaderSignature,
		},
		{
			name:   "broken corrupt before video",
			head:   good,
			broken: build(audio(5000, "x0"), []byte{0x07}, video(5040, "resume")),
			want:   flv.ErrInvalidKind,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := FixSeek(src("head.flv", tc.head), src("broken.flv", tc.broken), NewEmitter(&out, EmitterOptions{}), SeekOptions{})
			require.ErrorIs(t, err, tc.want)
			require.Zero(t, out.Len())
		})
	}
}
