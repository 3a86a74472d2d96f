// Package signer produces and checks the signatures carried by author identity
// attestations.
//
// Two key schemes are supported. The bitcoin scheme (the protocol's native one)
// signs with Bitcoin signed-message hashing and compact recoverable secp256k1
// signatures, and identifies signers by P2PKH addresses. The evm scheme signs
// EIP-191 text hashes and identifies signers by 0x-prefixed hex addresses.
// Verification picks the scheme from the shape of the claimed address.
//
// All signatures are deterministic (RFC 6979): the same key and message always
// produce the same signature.
package signer

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyKey is returned when no private key material was supplied.
	ErrEmptyKey = errors.New("empty private key")
	// ErrInvalidKey is returned when the private key cannot be decoded or is not a
	// valid secp256k1 scalar.
	ErrInvalidKey = errors.New("invalid private key")
	// ErrUnknownScheme is returned for a scheme name that is not supported.
	ErrUnknownScheme = errors.New("unknown signature scheme")
)

// Scheme names a signature/address scheme.
type Scheme string

const (
	SchemeBitcoin Scheme = "bitcoin"
	SchemeEVM     Scheme = "evm"
)

// Signer signs attestation messages with a single private key.
type Signer interface {
	// Scheme reports the scheme the signer's address and signatures belong to.
	Scheme() Scheme
	// Address returns the address derived from the signer's public key.
	Address() string
	// Sign returns the encoded signature over message. The message is hashed by
	// the scheme before signing.
	Sign(message []byte) (string, error)
}

// ParseScheme converts a user supplied scheme name. The empty string selects the
// bitcoin scheme.
func ParseScheme(name string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(name))) {
	case "", SchemeBitcoin:
		return SchemeBitcoin, nil
	case SchemeEVM:
		return SchemeEVM, nil
	default:
		return "", errors.Wrapf(ErrUnknownScheme, "%q", name)
	}
}

// New builds a signer for the given scheme from its textual key encoding: WIF or
// 32-byte hex for bitcoin, 32-byte hex for evm.
func New(scheme Scheme, key string) (Signer, error) {
	switch scheme {
	case SchemeBitcoin, "":
		return NewBitcoinSigner(key)
	case SchemeEVM:
		return NewEVMSigner(key)
	default:
		return nil, errors.Wrapf(ErrUnknownScheme, "%q", scheme)
	}
}

// SchemeOf reports which scheme an address belongs to.
func SchemeOf(address string) (Scheme, bool) {
	switch {
	case isEVMAddress(address):
		return SchemeEVM, true
	case isBitcoinAddress(address):
		return SchemeBitcoin, true
	default:
		return "", false
	}
}

// VerifySignature reports whether signature is a valid signature over message by
// the key behind address. Any decoding problem is reported as false.
func VerifySignature(address string, message []byte, signature string) bool {
	scheme, ok := SchemeOf(address)
	if !ok {
		return false
	}
	switch scheme {
	case SchemeEVM:
		return verifyEVM(address, message, signature)
	default:
		return verifyBitcoin(address, message, signature)
	}
}

// AddressFromPublicKey derives the scheme's address for a serialized secp256k1
// public key (33-byte compressed or 65-byte uncompressed). Bitcoin addresses are
// derived for main net, keeping the key's own serialization form.
func AddressFromPublicKey(scheme Scheme, pubKey []byte) (string, error) {
	switch scheme {
	case SchemeBitcoin, "":
		return bitcoinAddressFromPublicKey(pubKey, MainNet)
	case SchemeEVM:
		return evmAddressFromPublicKey(pubKey)
	default:
		return "", errors.Wrapf(ErrUnknownScheme, "%q", scheme)
	}
}

// EqualAddress compares two addresses. EVM addresses compare case-insensitively
// since EIP-55 casing is only a checksum; bitcoin addresses compare exactly.
func EqualAddress(a, b string) bool {
	if isEVMAddress(a) && isEVMAddress(b) {
		return strings.EqualFold(a, b)
	}
	return a == b
}
