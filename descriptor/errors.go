package descriptor

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingChecksum is returned when verifying a descriptor that
	// carries no #checksum suffix at all.
	ErrMissingChecksum = errors.New("descriptor has no checksum")

	// ErrInvalidChecksumLength is returned when the checksum suffix of a
	// descriptor does not have the expected length.
	ErrInvalidChecksumLength = errors.New("invalid descriptor checksum " +
		"length")

	// ErrChecksumMismatch is returned when the checksum suffix of a
	// descriptor does not match the checksum computed over its body.
	ErrChecksumMismatch = errors.New("descriptor checksum mismatch")
)

// InvalidCharError is returned when a descriptor contains a character that
// is not part of the descriptor character set. The checksum of such a
// string is undefined, so computation stops at the first offending
// character.
type InvalidCharError struct {
	// Char is the first character encountered that is outside the
	// descriptor character set.
	Char rune
}

// Error returns a human readable string describing the error.
func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("invalid character %q in descriptor", e.Char)
}
