package flv

// sliceExact is the single bounds-checked accessor every field read goes
// through. It never reads past the end of buf.
func sliceExact(buf []byte, offset, length int) ([]byte, bool) {
	if offset < 0 || length < 0 || offset > len(buf) || len(buf)-offset < length {
		return nil, false
	}
	return buf[offset : offset+length], true
}

func readUint(buf []byte, offset, width int) (uint32, bool) {
	b, ok := sliceExact(buf, offset, width)
	if !ok {
		return 0, false
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v, true
}

func outOfBounds(buf []byte, offset, need int) *TagError {
	avail := len(buf) - offset
	if avail < 0 {
		avail = 0
	}
	return &TagError{Err: ErrOutOfBounds, Offset: offset, Expected: uint64(need), Observed: uint64(avail)}
}

// ReadTag decodes the tag starting at offset and checks its trailer. On
// success it returns the tag and the offset of the following tag, which may
// equal len(buf). ReadTag has no side effects.
func ReadTag(buf []byte, offset int) (Tag, int, error) {
	var tag Tag
	if offset < 0 {
		return tag, offset, outOfBounds(buf, offset, TagOverhead)
	}
	hdr, ok := sliceExact(buf, offset, TagOverhead)
	if !ok {
		return tag, offset, outOfBounds(buf, offset, TagOverhead)
	}
	kind := TagKind(hdr[0])
	if !kind.Valid() {
		return tag, offset, &TagError{Err: ErrInvalidKind, Offset: offset, Observed: uint64(kind)}
	}
	bodyLen, _ := readUint(hdr, 1, 3)
	ts, _ := readUint(hdr, 4, 3)
	streamID, _ := readUint(hdr, 7, 4)

	size := int(bodyLen) + TagOverhead
	if _, ok := sliceExact(buf, offset, size); !ok {
		return tag, offset, outOfBounds(buf, offset, size)
	}
	trailerOffset := offset + TagHeaderSize + int(bodyLen)
	trailer, _ := readUint(buf, trailerOffset, TrailerSize)
	if want := bodyLen + TagHeaderSize; trailer != want {
		return tag, offset, &TagError{Err: ErrTrailerMismatch, Offset: offset, Expected: uint64(want), Observed: uint64(trailer)}
	}
	body, _ := sliceExact(buf, offset+TagHeaderSize, int(bodyLen))

	tag = Tag{
		Offset:     offset,
		Kind:       kind,
		BodyLength: bodyLen,
		Timestamp:  ts,
		StreamID:   streamID,
		Body:       body,
		Trailer:    trailer,
	}
	return tag, offset + size, nil
}

// CheckHeader verifies the 3-byte "FLV" signature. The rest of the file
// header is opaque and its declared size is not consulted.
func CheckHeader(buf []byte) error {
	sig, ok := sliceExact(buf, 0, len(Signature))
	if !ok || string(sig) != Signature {
		return &TagError{Err: ErrHeaderSignature, Offset: 0}
	}
	return nil
}

// KindAt returns the raw kind byte at offset without validating the tag.
func KindAt(buf []byte, offset int) (TagKind, bool) {
	b, ok := sliceExact(buf, offset, 1)
	if !ok {
		return 0, false
	}
	return TagKind(b[0]), true
}
