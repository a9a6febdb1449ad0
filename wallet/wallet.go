// Package wallet derives receive and change addresses from an account level
// extended key and gives a set of attached validator callbacks a chance to
// veto every address before it is handed out.
package wallet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/descwallet/descwallet/descriptor"
)

const (
	// externalBranch is the BIP32 child of the account key that receive
	// addresses are derived from.
	externalBranch uint32 = 0

	// internalBranch is the BIP32 child of the account key that change
	// addresses are derived from.
	internalBranch uint32 = 1
)

var (
	// ErrNoChainParams is returned when a wallet is created without
	// chain parameters.
	ErrNoChainParams = errors.New("chain parameters required")

	// ErrNoAccountKey is returned when a wallet is created without an
	// account key.
	ErrNoAccountKey = errors.New("account key required")

	// ErrUnknownScriptType is returned when a wallet is created with a
	// script type this package cannot derive addresses for.
	ErrUnknownScriptType = errors.New("unknown script type")
)

// ScriptType is the kind of output script the wallet derives addresses
// for.
type ScriptType uint8

const (
	// ScriptTypePKH derives legacy pay-to-pubkey-hash addresses.
	ScriptTypePKH ScriptType = iota

	// ScriptTypeWPKH derives native segwit pay-to-witness-pubkey-hash
	// addresses.
	ScriptTypeWPKH

	// ScriptTypeSHWPKH derives pay-to-witness-pubkey-hash addresses
	// nested in pay-to-script-hash.
	ScriptTypeSHWPKH
)

// String returns a human readable identifier for the script type.
func (s ScriptType) String() string {
	switch s {
	case ScriptTypePKH:
		return "pkh"
	case ScriptTypeWPKH:
		return "wpkh"
	case ScriptTypeSHWPKH:
		return "sh-wpkh"
	default:
		return "unknown"
	}
}

// wrap renders the descriptor expression of the script type around the
// passed key expression.
func (s ScriptType) wrap(inner string) string {
	switch s {
	case ScriptTypePKH:
		return "pkh(" + inner + ")"
	case ScriptTypeWPKH:
		return "wpkh(" + inner + ")"
	case ScriptTypeSHWPKH:
		return "sh(wpkh(" + inner + "))"
	default:
		return inner
	}
}

// Config bundles everything a wallet needs at creation time.
type Config struct {
	// ChainParams identify the chain addresses are encoded for.
	ChainParams *chaincfg.Params

	// ScriptType is the kind of output script to derive addresses for.
	ScriptType ScriptType

	// AccountKey is the account level extended public key both the
	// external and the internal branch are derived from.
	AccountKey *hdkeychain.ExtendedKey
}

// Wallet hands out receive and change addresses derived from a single
// account key. Every new address is run past the attached address
// validators, in the order they were added, before it is returned.
//
// All methods are safe for concurrent use.
type Wallet struct {
	cfg Config

	mu sync.Mutex

	validators []AddressValidator

	externalKey *hdkeychain.ExtendedKey
	internalKey *hdkeychain.ExtendedKey

	nextExternal uint32
	nextInternal uint32
}

// New creates a wallet from the passed config.
func New(cfg Config) (*Wallet, error) {
	if cfg.ChainParams == nil {
		return nil, ErrNoChainParams
	}
	if cfg.AccountKey == nil {
		return nil, ErrNoAccountKey
	}
	switch cfg.ScriptType {
	case ScriptTypePKH, ScriptTypeWPKH, ScriptTypeSHWPKH:
	default:
		return nil, ErrUnknownScriptType
	}

	externalKey, err := cfg.AccountKey.Derive(externalBranch)
	if err != nil {
		return nil, fmt.Errorf("unable to derive external branch: %w",
			err)
	}
	internalKey, err := cfg.AccountKey.Derive(internalBranch)
	if err != nil {
		return nil, fmt.Errorf("unable to derive internal branch: %w",
			err)
	}

	return &Wallet{
		cfg:         cfg,
		externalKey: externalKey,
		internalKey: internalKey,
	}, nil
}

// AddAddressValidator attaches an additional validator to the wallet.
// Validators are polled in the order they were added every time a new
// external or change address is generated.
func (w *Wallet) AddAddressValidator(v AddressValidator) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.validators = append(w.validators, v)
}

// NewAddress derives the next receive address of the wallet. The address
// counter only advances if every attached validator accepts the address.
func (w *Wallet) NewAddress() (btcutil.Address, error) {
	return w.nextAddress(false)
}

// NewChangeAddress derives the next change address of the wallet. The
// address counter only advances if every attached validator accepts the
// address.
func (w *Wallet) NewChangeAddress() (btcutil.Address, error) {
	return w.nextAddress(true)
}

// nextAddress derives the next address on the given branch and polls the
// attached validators with it.
func (w *Wallet) nextAddress(change bool) (btcutil.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	branchKey, branch, index := w.externalKey, externalBranch,
		w.nextExternal
	if change {
		branchKey, branch, index = w.internalKey, internalBranch,
			w.nextInternal
	}

	childKey, err := branchKey.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("unable to derive child %d: %w", index,
			err)
	}
	pubKey, err := childKey.ECPubKey()
	if err != nil {
		return nil, err
	}

	addr, err := w.addressForKey(pubKey)
	if err != nil {
		return nil, err
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, err
	}

	keyPaths := []*psbt.Bip32Derivation{{
		PubKey:               pubKey.SerializeCompressed(),
		MasterKeyFingerprint: w.cfg.AccountKey.ParentFingerprint(),
		Bip32Path:            []uint32{branch, index},
	}}

	// Every attached validator gets a say before the address is handed
	// out. The first failure aborts generation and is passed through
	// unchanged, so the caller sees exactly what the validator reported.
	for _, validator := range w.validators {
		err := validator.ValidateAddress(
			w.cfg.ScriptType, keyPaths, pkScript,
		)
		if err != nil {
			log.Warnf("Validator rejected %v address at path "+
				"m/%d/%d: %v", w.cfg.ScriptType, branch,
				index, err)
			return nil, err
		}
	}

	log.Debugf("Derived new %v address %v at path m/%d/%d, key paths: %v",
		w.cfg.ScriptType, addr, branch, index,
		spewLogClosure(keyPaths))

	if change {
		w.nextInternal++
	} else {
		w.nextExternal++
	}

	return addr, nil
}

// addressForKey encodes the passed public key as an address of the wallet's
// script type.
func (w *Wallet) addressForKey(pubKey *btcec.PublicKey) (btcutil.Address,
	error) {

	pubKeyHash := btcutil.Hash160(pubKey.SerializeCompressed())

	switch w.cfg.ScriptType {
	case ScriptTypePKH:
		addr, err := btcutil.NewAddressPubKeyHash(
			pubKeyHash, w.cfg.ChainParams,
		)
		if err != nil {
			return nil, err
		}

		return addr, nil

	case ScriptTypeWPKH:
		addr, err := btcutil.NewAddressWitnessPubKeyHash(
			pubKeyHash, w.cfg.ChainParams,
		)
		if err != nil {
			return nil, err
		}

		return addr, nil

	case ScriptTypeSHWPKH:
		witnessAddr, err := btcutil.NewAddressWitnessPubKeyHash(
			pubKeyHash, w.cfg.ChainParams,
		)
		if err != nil {
			return nil, err
		}
		witnessScript, err := txscript.PayToAddrScript(witnessAddr)
		if err != nil {
			return nil, err
		}

		addr, err := btcutil.NewAddressScriptHash(
			witnessScript, w.cfg.ChainParams,
		)
		if err != nil {
			return nil, err
		}

		return addr, nil

	default:
		return nil, ErrUnknownScriptType
	}
}

// ExternalDescriptor returns the descriptor of the wallet's receive branch
// with its checksum appended.
func (w *Wallet) ExternalDescriptor() (string, error) {
	return w.descriptorForBranch(externalBranch)
}

// ChangeDescriptor returns the descriptor of the wallet's change branch
// with its checksum appended.
func (w *Wallet) ChangeDescriptor() (string, error) {
	return w.descriptorForBranch(internalBranch)
}

// descriptorForBranch renders the wallet's descriptor for the given branch
// and appends its checksum.
func (w *Wallet) descriptorForBranch(branch uint32) (string, error) {
	inner := fmt.Sprintf("%v/%d/*", w.cfg.AccountKey, branch)
	return descriptor.AppendChecksum(w.cfg.ScriptType.wrap(inner))
}
