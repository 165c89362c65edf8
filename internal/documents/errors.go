package documents

import "errors"

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidName       = errors.New("invalid document name")
	ErrForbidden         = errors.New("forbidden")
	ErrAnonymous         = errors.New("anonymous identity")
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrMissingTarget     = errors.New("missing target resource")
)
