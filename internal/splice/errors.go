package splice

import "errors"

var (
	ErrAmbiguousMatch   = errors.New("fingerprint matches more than one video tag")
	ErrJunctionNotFound = errors.New("no video tag matches the fingerprint")
	ErrSuspiciousMatch  = errors.New("junction would not extend head")
	ErrNeedleNotFound   = errors.New("no video tag to fingerprint")
	ErrMissingMetadata  = errors.New("first tag is not metadata")
	ErrUnexpectedKind   = errors.New("unexpected tag kind")
	ErrNoVideoTag       = errors.New("no video tag found")
)
