package splice

import (
	"errors"
	"fmt"
	"io"

	"example.com/flvgate/internal/flv"
)

const DefaultAnchorTags = 2

type SeekOptions struct {
	// AnchorTags is the number of tags kept from head after its metadata
	// tag. The value is empirical.
	AnchorTags int
}

// SeekJunction is the pair of splice points for FixSeek.
type SeekJunction struct {
	HeadOffset   int
	BrokenOffset int
	// BrokenTimestamp is the timestamp of the first video tag of broken.
	BrokenTimestamp uint32
}

// FindSeekJunction takes the header, metadata tag and AnchorTags further
// tags of head, and the first video tag onwards of broken. Nothing checks
// that the two actually line up: the first video tag of broken is assumed
// to continue the stream.
func FindSeekJunction(head, broken Source, opts SeekOptions) (SeekJunction, error) {
	if opts.AnchorTags <= 0 {
		opts.AnchorTags = DefaultAnchorTags
	}
	var sj SeekJunction
	headPt, err := headAnchor(head, opts.AnchorTags)
	if err != nil {
		return sj, err
	}
	sj.HeadOffset = headPt

	if err := flv.CheckHeader(broken.Data); err != nil {
		return sj, fmt.Errorf("%s: %w", broken.Name, err)
	}
	w := flv.NewWalker(broken.Data, flv.WalkOptions{Start: flv.HeaderSize})
	for {
		tag, err := w.Next()
		if errors.Is(err, io.EOF) {
			return sj, fmt.Errorf("%s: %w", broken.Name, ErrNoVideoTag)
		}
		if err != nil {
			return sj, fmt.Errorf("%s: %w", broken.Name, err)
		}
		if tag.Kind == flv.TagVideo {
			sj.BrokenOffset = tag.Offset
			sj.BrokenTimestamp = tag.Timestamp
			return sj, nil
		}
	}
}

func headAnchor(head Source, anchors int) (int, error) {
	if err := checkHeader(head); err != nil {
		return 0, err
	}
	meta, next, err := flv.ReadTag(head.Data, flv.HeaderSize)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", head.Name, err)
	}
	if meta.Kind != flv.TagMetadata {
		return 0, fmt.Errorf("%s: %w (%s at offset %d)", head.Name, ErrMissingMetadata, meta.Kind, meta.Offset)
	}
	for i := 0; i < anchors; i++ {
		tag, n, err := flv.ReadTag(head.Data, next)
		if err != nil {
			return 0, fmt.Errorf("%s: anchor tag %d: %w", head.Name, i+1, err)
		}
		if i == 0 && tag.Kind == flv.TagMetadata {
			return 0, fmt.Errorf("%s: %w: second tag is %s, want audio or video", head.Name, ErrUnexpectedKind, tag.Kind)
		}
		next = n
	}
	return next, nil
}

// FixSeek writes head up to its anchor followed by broken from its first
// video tag.
func FixSeek(head, broken Source, out *Emitter, opts SeekOptions) (SeekJunction, error) {
	sj, err := FindSeekJunction(head, broken, opts)
	if err != nil {
		return sj, err
	}
	if err := out.Copy(head, flv.ByteRange{Start: 0, Length: sj.HeadOffset}); err != nil {
		return sj, err
	}
	if err := out.Copy(broken, flv.ByteRange{Start: sj.BrokenOffset, Length: len(broken.Data) - sj.BrokenOffset}); err != nil {
		return sj, err
	}
	return sj, out.Flush()
}
