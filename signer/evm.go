package signer

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// EVMSigner signs EIP-191 personal messages and returns 65-byte EVM-compatible
// signatures ([R || S || V], V in {27,28}) as 0x-prefixed hex.
type EVMSigner struct {
	privateKey *ecdsa.PrivateKey
}

// NewEVMSigner decodes a 32-byte hex private key, with or without 0x prefix.
func NewEVMSigner(key string) (*EVMSigner, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "0x")
	if key == "" {
		return nil, ErrEmptyKey
	}

	ecdsaKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidKey, "convert private key to ECDSA: %v", err)
	}
	return &EVMSigner{privateKey: ecdsaKey}, nil
}

func (s *EVMSigner) Scheme() Scheme { return SchemeEVM }

// PublicKey returns the uncompressed public key.
func (s *EVMSigner) PublicKey() []byte {
	if s == nil || s.privateKey == nil {
		return nil
	}
	return crypto.FromECDSAPub(&s.privateKey.PublicKey)
}

// Address returns the EIP-55 checksummed address derived from the public key.
func (s *EVMSigner) Address() string {
	if s == nil || s.privateKey == nil {
		return ""
	}
	return crypto.PubkeyToAddress(s.privateKey.PublicKey).Hex()
}

func (s *EVMSigner) Sign(message []byte) (string, error) {
	if s == nil || s.privateKey == nil {
		return "", ErrEmptyKey
	}

	signature, err := crypto.Sign(accounts.TextHash(message), s.privateKey)
	if err != nil {
		return "", errors.Wrap(err, "sign digest")
	}

	// crypto.Sign returns V in {0,1}; shift to the {27,28} form wallets emit.
	v := signature[64]
	if v >= 27 {
		v -= 27
	}
	signature[64] = (v & 1) + 27
	return hexutil.Encode(signature), nil
}

func verifyEVM(address string, message []byte, signature string) bool {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false
	}

	recoveryID, err := toCompactRecoveryID(sig[64])
	if err != nil {
		return false
	}
	sig[64] = recoveryID

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == common.HexToAddress(address)
}

func evmAddressFromPublicKey(pubKey []byte) (string, error) {
	var (
		pub *ecdsa.PublicKey
		err error
	)
	if len(pubKey) == 33 {
		pub, err = crypto.DecompressPubkey(pubKey)
	} else {
		pub, err = crypto.UnmarshalPubkey(pubKey)
	}
	if err != nil {
		return "", errors.Wrap(err, "parse public key")
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

func isEVMAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

func toCompactRecoveryID(v byte) (byte, error) {
	switch {
	case v <= 1:
		return v, nil
	case v >= 27 && v <= 34:
		return (v - 27) & 1, nil
	default:
		return 0, errors.Errorf("invalid recovery id %d", v)
	}
}
