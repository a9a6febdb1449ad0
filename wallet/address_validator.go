package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
)

var (
	// ErrUserRejected is returned by a validator when the user
	// explicitly rejected the new address, for example on the screen of
	// a hardware device.
	ErrUserRejected = errors.New("address rejected by user")

	// ErrConnection is returned by a validator when the external device
	// or service backing it cannot be reached.
	ErrConnection = errors.New("unable to reach address validator")

	// ErrTimeout is returned by a validator when it gave up waiting for
	// a response.
	ErrTimeout = errors.New("address validator timed out")

	// ErrInvalidScript is returned by a validator when it derived a
	// different script for the address than the wallet did.
	ErrInvalidScript = errors.New("validator reports invalid script")
)

// ValidationError is a free form validation failure for errors that don't
// fit any of the fixed failure modes above.
type ValidationError struct {
	// Msg describes why the address was rejected.
	Msg string
}

// Error returns a human readable string describing the error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("address validation failed: %v", e.Msg)
}

// AddressValidator is a callback capability that gets a say every time the
// wallet generates a new address. The typical implementation displays the
// address on a hardware device so the user can cross check it, but a
// validator can also simply observe generated addresses without ever
// failing.
//
// Validators are attached to a wallet with AddAddressValidator and polled
// in order on every new external or change address. All of them must accept
// the address for generation to proceed; the first failure is propagated
// unchanged to the caller that triggered the generation.
type AddressValidator interface {
	// ValidateAddress validates or inspects a newly derived address.
	// The script type and the BIP32 paths of the keys involved are
	// passed along with the final output script so the validator can
	// re-derive the address independently.
	ValidateAddress(scriptType ScriptType,
		keyPaths []*psbt.Bip32Derivation, pkScript []byte) error
}
