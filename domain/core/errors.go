package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNoData            = errors.New("no data available")
	ErrNoAndroidData     = fmt.Errorf("%w: android table is empty", ErrNoData)
	ErrNoIOSData         = fmt.Errorf("%w: ios table is empty", ErrNoData)
	ErrNoCombinedData    = fmt.Errorf("%w: combined table has not been built", ErrNoData)
	ErrNoInsights        = fmt.Errorf("%w: insights have not been generated", ErrNoData)
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingCredential = errors.New("missing credential")
	ErrMalformedResponse = errors.New("malformed response")
)

// NewUnsupportedFormatError names the rejected format and the accepted ones.
func NewUnsupportedFormatError(format string, accepted []string) error {
	return fmt.Errorf("%w %q (use one of %v)", ErrUnsupportedFormat, format, accepted)
}

// IsNoData reports whether err signals an empty session slot
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// IsUnsupportedFormat reports whether err rejects a requested format
func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}
