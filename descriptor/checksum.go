// Package descriptor implements the checksum that is appended to output
// descriptor strings, compatible with the algorithm used network wide to
// guard descriptors against transcription errors.
//
// A descriptor is stored and displayed as <descriptor>#<checksum>, where the
// checksum is eight characters drawn from the bech32 character set. The code
// behind it is a BCH style polynomial code over a 40-bit state which is able
// to detect the character substitutions a human is likely to make when
// copying a descriptor by hand.
package descriptor

import (
	"strings"
)

const (
	// inputCharset contains every character that may legally appear in a
	// descriptor string. The index of a character in this string is its
	// symbol code: the low five bits are fed into the polynomial
	// directly, while the remaining high bits form the character's
	// group digit.
	inputCharset = "0123456789()[],'/*abcdefgh@:$%{}" +
		"IJKLMNOPQRSTUVWXYZ&+-.;<=>?!^_|~" +
		"ijklmnopqrstuvwxyzABCDEFGH`#\"\\ "

	// checksumCharset is the bech32 character set, used to render the
	// final checksum symbols.
	checksumCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

	// checksumLength is the number of characters in a rendered
	// checksum.
	checksumLength = 8
)

// generator holds the feedback taps of the code, one 40-bit constant per bit
// of the five bits shifted out of the accumulator. Together they encode the
// generator polynomial of the code and must match other implementations bit
// for bit, otherwise the produced checksums are incompatible.
var generator = [5]uint64{
	0xf5dee51989,
	0xa9fdca3312,
	0x1bab10e32d,
	0x3706b1677a,
	0x644d626ffd,
}

// polyMod feeds a single 5-bit value into the checksum accumulator. The
// accumulator is multiplied by x and reduced modulo the generator polynomial
// before the new value is mixed into the low bits.
func polyMod(c, val uint64) uint64 {
	c0 := c >> 35
	c = (c&0x7ffffffff)<<5 ^ val

	for i := 0; i < 5; i++ {
		if c0>>i&1 != 0 {
			c ^= generator[i]
		}
	}

	return c
}

// Checksum computes the eight character checksum of the passed descriptor
// body. The body must not already carry a checksum suffix. An
// InvalidCharError is returned if the descriptor contains a character
// outside the descriptor character set.
func Checksum(desc string) (string, error) {
	// The accumulator starts at one rather than zero so leading zero
	// symbols still contribute to the checksum.
	c := uint64(1)

	// Each character contributes its low five bits directly. The high
	// bits only take three distinct values across the character set, so
	// they are collected into groups of three and fed as a single base-3
	// packed symbol, which keeps the checksum sensitive to them without
	// spending a full symbol per character.
	var (
		cls      uint64
		clsCount int
	)
	for _, ch := range desc {
		pos := strings.IndexRune(inputCharset, ch)
		if pos < 0 {
			return "", &InvalidCharError{Char: ch}
		}

		c = polyMod(c, uint64(pos)&31)

		cls = cls*3 + uint64(pos)>>5
		clsCount++
		if clsCount == 3 {
			c = polyMod(c, cls)
			cls = 0
			clsCount = 0
		}
	}

	// One or two group digits may be left over at the end of the
	// descriptor. They are fed as-is, without padding to a full group.
	if clsCount > 0 {
		c = polyMod(c, cls)
	}

	// Shift in eight zero symbols to make room for the checksum itself,
	// then flip the final bit so an all-zero payload does not map to an
	// all-zero checksum.
	for i := 0; i < checksumLength; i++ {
		c = polyMod(c, 0)
	}
	c ^= 1

	// The checksum is read out of the accumulator five bits at a time,
	// most significant group first.
	var sum [checksumLength]byte
	for j := 0; j < checksumLength; j++ {
		sum[j] = checksumCharset[c>>(5*(7-j))&31]
	}

	return string(sum[:]), nil
}

// AppendChecksum computes the checksum of the passed descriptor body and
// returns the full <descriptor>#<checksum> form used for storage and
// display.
func AppendChecksum(desc string) (string, error) {
	sum, err := Checksum(desc)
	if err != nil {
		return "", err
	}

	return desc + "#" + sum, nil
}

// Verify checks the checksum suffix of a full <descriptor>#<checksum>
// string and returns the bare descriptor body on success.
func Verify(desc string) (string, error) {
	idx := strings.LastIndexByte(desc, '#')
	if idx < 0 {
		return "", ErrMissingChecksum
	}

	body, sum := desc[:idx], desc[idx+1:]
	if len(sum) != checksumLength {
		return "", ErrInvalidChecksumLength
	}

	expected, err := Checksum(body)
	if err != nil {
		return "", err
	}
	if expected != sum {
		return "", ErrChecksumMismatch
	}

	return body, nil
}
