package splice

import (
	"fmt"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
)

// copyHeader writes the 13-byte file header of src and returns the offset of
// the first tag. A tolerant caller gets offset 0 and no header when the
// signature is missing, so headerless fragments can still be scanned.
func copyHeader(src Source, out *Emitter, tolerant bool) (int, error) {
	err := checkHeader(src)
	if err != nil {
		if !tolerant {
			return 0, err
		}
		common.Warnf("%v; scanning from offset 0 without a header", err)
		return 0, nil
	}
	if err := out.Copy(src, flv.ByteRange{Start: 0, Length: flv.HeaderSize}); err != nil {
		return 0, err
	}
	warnIfNotMetadata(src)
	return flv.HeaderSize, nil
}

func checkHeader(src Source) error {
	if err := flv.CheckHeader(src.Data); err != nil {
		return fmt.Errorf("%s: %w", src.Name, err)
	}
	if len(src.Data) < flv.HeaderSize {
		return fmt.Errorf("%s: %w", src.Name, &flv.TagError{
			Err:      flv.ErrOutOfBounds,
			Expected: flv.HeaderSize,
			Observed: uint64(len(src.Data)),
		})
	}
	return nil
}

// Players accept a stream whose first tag is not metadata, so this is only
// worth a warning.
func warnIfNotMetadata(src Source) {
	kind, ok := flv.KindAt(src.Data, flv.HeaderSize)
	if ok && kind != flv.TagMetadata {
		common.Warnf("%s: non metadata tag (%#02x) at offset %d", src.Name, uint8(kind), flv.HeaderSize)
	}
}
