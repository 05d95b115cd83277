package domain

import "errors"

var (
	ErrUnrecognizedFormat = errors.New("unrecognized stats dump format")
	ErrMalformedDocument  = errors.New("malformed stats dump document")
	ErrNotExpectedFormat  = errors.New("stats dump is not in the expected format")
	ErrEmptyDump          = errors.New("stats dump is empty")
	ErrDumpTooLarge       = errors.New("stats dump exceeds size limit")
)
