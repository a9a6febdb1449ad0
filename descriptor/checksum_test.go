package descriptor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testTpub is a testnet account key that appears in several of the vectors
// below. Only its text form matters to the checksum.
const testTpub = "tpubD6NzVbkrYhZ4Xferm7Pz4VnjdcDPFyjVu5K4iZXQ4pVN8Cks4p" +
	"HVowTBXBKRhX64pkRyJZJN5xAKj4UDNnLPb5p2sSKXhewoYx5GbTdUFWq"

// TestChecksumVectors checks the checksum of a set of descriptors against
// values produced by other implementations of the same code.
func TestChecksumVectors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		desc string
		sum  string
	}{{
		// The empty descriptor still produces a checksum, purely
		// from the eight flush symbols and the final bit flip.
		name: "empty descriptor",
		desc: "",
		sum:  "7h0w2xvg",
	}, {
		name: "raw",
		desc: "raw(deadbeef)",
		sum:  "89f8spxm",
	}, {
		name: "addr",
		desc: "addr(mkmZxiEcEd8ZqjQWVZuC6so5dFMKEFpN2j)",
		sum:  "02wpgw69",
	}, {
		name: "wpkh with hardened path",
		desc: "wpkh(" + testTpub + "/44'/0'/0'/0/*)",
		sum:  "pxvtu8dj",
	}, {
		name: "wpkh",
		desc: "wpkh(" + testTpub + "/0/*)",
		sum:  "n8ynpyg4",
	}, {
		name: "pkh",
		desc: "pkh(tpubD6NzVbkrYhZ4WaWSyoBvQwbpLkojyoTZPRsgXELWz3P" +
			"opb3qkjcJyJUGLnL4qHHoQvao8ESaAstxYSnhyswJ76uZPStJRJ" +
			"CTKvosUCJZL5B/1/1/*)",
		sum: "rrw5y74p",
	}, {
		name: "sh wrapped wpkh",
		desc: "sh(wpkh(tpubD6NzVbkrYhZ4XgiXtGrdW5XDAPFCL9h7we1vwNC" +
			"pn8tGbBcgfVYjXyhWo4E1xkh56hjod1RhGjxbaTLV3X4FyWueji" +
			"fB9jusQ46QzG87VKp/1/2/*))",
		sum: "c7vsdzgn",
	}, {
		// A single character leaves one group digit to flush.
		name: "one char",
		desc: "a",
		sum:  "ywg0ausw",
	}, {
		// Two characters leave two group digits to flush.
		name: "two chars",
		desc: "ab",
		sum:  "y064n3a6",
	}}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sum, err := Checksum(tc.desc)
			require.NoError(t, err)
			require.Equal(t, tc.sum, sum)

			full, err := AppendChecksum(tc.desc)
			require.NoError(t, err)
			require.Equal(t, tc.desc+"#"+tc.sum, full)

			body, err := Verify(full)
			require.NoError(t, err)
			require.Equal(t, tc.desc, body)
		})
	}
}

// TestChecksumInvalidChar asserts that a descriptor containing a character
// outside the descriptor character set fails with an error identifying that
// character, and never yields a checksum.
func TestChecksumInvalidChar(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		desc string
		char rune
	}{{
		name: "newline",
		desc: "raw(dead\nbeef)",
		char: '\n',
	}, {
		name: "tab",
		desc: "\twpkh()",
		char: '\t',
	}, {
		name: "non ascii",
		desc: "wpkh(é)",
		char: 'é',
	}, {
		name: "delete",
		desc: "raw(00)\x7f",
		char: '\x7f',
	}}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Checksum(tc.desc)
			require.Error(t, err)

			var charErr *InvalidCharError
			require.ErrorAs(t, err, &charErr)
			require.Equal(t, tc.char, charErr.Char)
		})
	}
}

// TestVerifyErrors checks the failure modes of Verify.
func TestVerifyErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		desc string
		err  error
	}{{
		name: "no checksum",
		desc: "raw(deadbeef)",
		err:  ErrMissingChecksum,
	}, {
		name: "short checksum",
		desc: "raw(deadbeef)#89f8spx",
		err:  ErrInvalidChecksumLength,
	}, {
		name: "long checksum",
		desc: "raw(deadbeef)#89f8spxmm",
		err:  ErrInvalidChecksumLength,
	}, {
		name: "corrupted checksum",
		desc: "raw(deadbeef)#89f8spxq",
		err:  ErrChecksumMismatch,
	}, {
		name: "corrupted body",
		desc: "raw(deedbeef)#89f8spxm",
		err:  ErrChecksumMismatch,
	}}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Verify(tc.desc)
			require.ErrorIs(t, err, tc.err)
		})
	}

	// A body with an invalid character reports the character rather
	// than a mismatch.
	_, err := Verify("raw(déadbeef)#89f8spxm")
	var charErr *InvalidCharError
	require.ErrorAs(t, err, &charErr)
	require.Equal(t, 'é', charErr.Char)
}

// TestChecksumProperties asserts the structural properties of the checksum
// over randomly generated descriptors.
func TestChecksumProperties(t *testing.T) {
	t.Parallel()

	bodyGen := rapid.SliceOfN(
		rapid.SampledFrom([]byte(inputCharset)), 0, 64,
	)

	// Computing the checksum twice always yields the same result.
	t.Run("determinism", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			desc := string(bodyGen.Draw(t, "desc"))

			first, err := Checksum(desc)
			require.NoError(t, err)

			second, err := Checksum(desc)
			require.NoError(t, err)

			require.Equal(t, first, second)
		})
	})

	// Every checksum has exactly eight characters, all drawn from the
	// checksum character set.
	t.Run("output_shape", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			desc := string(bodyGen.Draw(t, "desc"))

			sum, err := Checksum(desc)
			require.NoError(t, err)

			require.Len(t, sum, checksumLength)
			for _, ch := range sum {
				require.True(
					t, strings.ContainsRune(
						checksumCharset, ch,
					),
					"checksum char %q outside charset", ch,
				)
			}
		})
	})

	// Substituting any single character for a different one changes the
	// checksum. The code is constructed to detect single substitutions
	// at the descriptor lengths generated here.
	t.Run("sensitivity", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			body := rapid.SliceOfN(
				rapid.SampledFrom([]byte(inputCharset)), 1, 64,
			).Draw(t, "desc")

			pos := rapid.IntRange(0, len(body)-1).Draw(t, "pos")
			repl := rapid.SampledFrom(
				[]byte(inputCharset),
			).Filter(func(b byte) bool {
				return b != body[pos]
			}).Draw(t, "repl")

			origSum, err := Checksum(string(body))
			require.NoError(t, err)

			mutated := append([]byte(nil), body...)
			mutated[pos] = repl

			mutSum, err := Checksum(string(mutated))
			require.NoError(t, err)

			require.NotEqual(t, origSum, mutSum)
		})
	})

	// Inserting any character outside the descriptor character set into
	// an otherwise valid descriptor fails with an error carrying exactly
	// that character.
	t.Run("alphabet_closure", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			body := bodyGen.Draw(t, "desc")

			bad := rapid.Rune().Filter(func(r rune) bool {
				return !strings.ContainsRune(inputCharset, r)
			}).Draw(t, "bad")
			pos := rapid.IntRange(0, len(body)).Draw(t, "pos")

			desc := string(body[:pos]) + string(bad) +
				string(body[pos:])

			_, err := Checksum(desc)
			require.Error(t, err)

			var charErr *InvalidCharError
			require.ErrorAs(t, err, &charErr)
			require.Equal(t, bad, charErr.Char)
		})
	})

	// A full descriptor with its checksum appended always verifies.
	t.Run("round_trip", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			desc := string(bodyGen.Draw(t, "desc"))

			full, err := AppendChecksum(desc)
			require.NoError(t, err)

			body, err := Verify(full)
			require.NoError(t, err)
			require.Equal(t, desc, body)
		})
	})
}
