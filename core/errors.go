package core

import "errors"

// Structural errors raised while rewriting a single file. All of them are
// terminal for that file and leave it untouched.
var (
	ErrMalformedJpeg        = errors.New("malformed JPEG")
	ErrNoExifMetadata       = errors.New("no EXIF metadata")
	ErrMalformedTiff        = errors.New("malformed TIFF structure")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrMissingExifIfd       = errors.New("missing Exif IFD")
	ErrInvalidTimestamp     = errors.New("invalid EXIF timestamp")
	ErrSegmentTooLarge      = errors.New("segment too large")
	ErrEncodingOverflow     = errors.New("TIFF encoding overflow")
)

// Batch errors.
var (
	ErrTargetConflict = errors.New("target file name conflict")
	ErrVerifyFailed   = errors.New("rewritten file failed verification")
	ErrRetryExhausted = errors.New("filesystem operation did not converge")
)
