package flv

import "fmt"

// TagKind is the first byte of a tag header.
type TagKind uint8

const (
	TagAudio    TagKind = 0x08
	TagVideo    TagKind = 0x09
	TagMetadata TagKind = 0x12
)

const (
	Signature      = "FLV"
	HeaderSize     = 13
	TagHeaderSize  = 11
	TrailerSize    = 4
	TagOverhead    = TagHeaderSize + TrailerSize
	MaxBodyLength  = 0xFFFFFF
	MaxTimestamp   = 0xFFFFFF
	headerDataSize = 9
)

// Valid reports whether k is one of the three tag kinds a stream may carry.
func (k TagKind) Valid() bool {
	switch k {
	case TagAudio, TagVideo, TagMetadata:
		return true
	}
	return false
}

func (k TagKind) String() string {
	switch k {
	case TagAudio:
		return "audio"
	case TagVideo:
		return "video"
	case TagMetadata:
		return "metadata"
	default:
		return fmt.Sprintf("kind(%#02x)", uint8(k))
	}
}

// Tag is a decoded view of one tag. Body aliases the source buffer and must
// not outlive it.
type Tag struct {
	Offset     int
	Kind       TagKind
	BodyLength uint32
	Timestamp  uint32
	StreamID   uint32
	Body       []byte
	Trailer    uint32
}

// Size is the on-disk size of the tag including header and trailer.
func (t Tag) Size() int {
	return int(t.BodyLength) + TagOverhead
}

// Range returns the bytes the tag occupies in its source buffer.
func (t Tag) Range() ByteRange {
	return ByteRange{Start: t.Offset, Length: t.Size()}
}

// ByteRange addresses a span of a source buffer.
type ByteRange struct {
	Start  int
	Length int
}

func (r ByteRange) End() int {
	return r.Start + r.Length
}

// Slice returns the bytes of buf covered by r. The range must lie within buf.
func (r ByteRange) Slice(buf []byte) []byte {
	return buf[r.Start:r.End()]
}

// Contains reports whether r lies entirely within a buffer of length n.
func (r ByteRange) Contains(n int) bool {
	return r.Start >= 0 && r.Length >= 0 && r.End() <= n
}
