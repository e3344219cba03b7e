package flv

import "encoding/binary"

const (
	flagAudio = 0x04
	flagVideo = 0x01
)

// AppendHeader appends a 13-byte file header: signature, version 1, the
// audio/video flags, a data offset of 9 and a zero previous-tag-size.
func AppendHeader(dst []byte, hasAudio, hasVideo bool) []byte {
	var flags byte
	if hasAudio {
		flags |= flagAudio
	}
	if hasVideo {
		flags |= flagVideo
	}
	dst = append(dst, Signature...)
	dst = append(dst, 1, flags)
	dst = binary.BigEndian.AppendUint32(dst, headerDataSize)
	return binary.BigEndian.AppendUint32(dst, 0)
}

// AppendTag encodes a complete tag, trailer included. Body length and
// timestamp are truncated to 24 bits.
func AppendTag(dst []byte, kind TagKind, timestamp, streamID uint32, body []byte) []byte {
	n := uint32(len(body)) & MaxBodyLength
	ts := timestamp & MaxTimestamp
	dst = append(dst, byte(kind),
		byte(n>>16), byte(n>>8), byte(n),
		byte(ts>>16), byte(ts>>8), byte(ts))
	dst = binary.BigEndian.AppendUint32(dst, streamID)
	dst = append(dst, body[:n]...)
	return binary.BigEndian.AppendUint32(dst, n+TagHeaderSize)
}

// BuildTag returns the encoding of a single tag.
func BuildTag(kind TagKind, timestamp uint32, body []byte) []byte {
	return AppendTag(make([]byte, 0, len(body)+TagOverhead), kind, timestamp, 0, body)
}
