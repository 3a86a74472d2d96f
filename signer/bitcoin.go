package signer

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

const bitcoinMessageMagic = "Bitcoin Signed Message:\n"

// Network selects the version bytes used for addresses and WIF keys.
type Network int

const (
	MainNet Network = iota
	TestNet
)

const (
	hash160Length    = 20
	privateKeyLength = 32
	compactSigLength = 65
)

func (n Network) params() *chaincfg.Params {
	if n == TestNet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// BitcoinSigner signs with Bitcoin signed-message semantics: the message is
// prefixed with the signed-message magic, double SHA-256 hashed and signed into a
// 65-byte compact recoverable signature, encoded as base64.
type BitcoinSigner struct {
	key        *btcec.PrivateKey
	compressed bool
	network    Network
}

// NewBitcoinSigner decodes a WIF private key, or a 32-byte hex key (optionally
// 0x-prefixed) which is treated as a compressed main net key.
func NewBitcoinSigner(key string) (*BitcoinSigner, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyKey
	}

	if raw, ok := decodeHexKey(key); ok {
		return NewBitcoinSignerFromBytes(raw, true, MainNet)
	}

	raw, compressed, network, err := decodeWIF(key)
	if err != nil {
		return nil, err
	}
	return NewBitcoinSignerFromBytes(raw, compressed, network)
}

// NewBitcoinSignerFromBytes builds a signer from a raw 32-byte scalar.
// compressed selects which public key serialization the address commits to.
func NewBitcoinSignerFromBytes(raw []byte, compressed bool, network Network) (*BitcoinSigner, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyKey
	}
	if len(raw) != privateKeyLength {
		return nil, errors.Wrapf(ErrInvalidKey, "key must be %d bytes, got %d", privateKeyLength, len(raw))
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(raw); overflow || scalar.IsZero() {
		return nil, errors.Wrap(ErrInvalidKey, "key is not a valid secp256k1 scalar")
	}

	privateKey, _ := btcec.PrivKeyFromBytes(raw)
	return &BitcoinSigner{
		key:        privateKey,
		compressed: compressed,
		network:    network,
	}, nil
}

func (s *BitcoinSigner) Scheme() Scheme { return SchemeBitcoin }

// PublicKey returns the serialized public key the address is derived from.
func (s *BitcoinSigner) PublicKey() []byte {
	if s == nil || s.key == nil {
		return nil
	}
	if s.compressed {
		return s.key.PubKey().SerializeCompressed()
	}
	return s.key.PubKey().SerializeUncompressed()
}

// Address returns the P2PKH address of the signer, or "" for an uninitialised
// signer.
func (s *BitcoinSigner) Address() string {
	pub := s.PublicKey()
	if pub == nil {
		return ""
	}
	address, err := bitcoinAddressFromPublicKey(pub, s.network)
	if err != nil {
		return ""
	}
	return address
}

// WIF returns the wallet import format encoding of the key.
func (s *BitcoinSigner) WIF() string {
	if s == nil || s.key == nil {
		return ""
	}
	wif, err := btcutil.NewWIF(s.key, s.network.params(), s.compressed)
	if err != nil {
		return ""
	}
	return wif.String()
}

func (s *BitcoinSigner) Sign(message []byte) (string, error) {
	if s == nil || s.key == nil {
		return "", ErrEmptyKey
	}

	digest, err := bitcoinMessageHash(message)
	if err != nil {
		return "", err
	}

	signature := ecdsa.SignCompact(s.key, digest, s.compressed)
	return base64.StdEncoding.EncodeToString(signature), nil
}

// bitcoinMessageHash returns sha256d(varstr(magic) || varstr(message)).
func bitcoinMessageHash(message []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarString(&buf, 0, bitcoinMessageMagic); err != nil {
		return nil, errors.Wrap(err, "write message magic")
	}
	if err := wire.WriteVarBytes(&buf, 0, message); err != nil {
		return nil, errors.Wrap(err, "write message")
	}
	return chainhash.DoubleHashB(buf.Bytes()), nil
}

func verifyBitcoin(address string, message []byte, signature string) bool {
	wantHash, ok := decodePubKeyHash(address)
	if !ok {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(sig) != compactSigLength {
		return false
	}

	digest, err := bitcoinMessageHash(message)
	if err != nil {
		return false
	}

	pub, compressed, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return false
	}

	serialized := pub.SerializeUncompressed()
	if compressed {
		serialized = pub.SerializeCompressed()
	}
	return bytes.Equal(btcutil.Hash160(serialized), wantHash)
}

func bitcoinAddressFromPublicKey(pubKey []byte, network Network) (string, error) {
	if _, err := btcec.ParsePubKey(pubKey); err != nil {
		return "", errors.Wrap(err, "parse public key")
	}
	address, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pubKey), network.params())
	if err != nil {
		return "", errors.Wrap(err, "p2pkh address")
	}
	return address.EncodeAddress(), nil
}

// decodePubKeyHash returns the hash160 committed to by a main net or test net
// P2PKH address.
func decodePubKeyHash(address string) ([]byte, bool) {
	if address == "" {
		return nil, false
	}
	payload, version, err := base58.CheckDecode(address)
	if err != nil || len(payload) != hash160Length {
		return nil, false
	}
	if version != chaincfg.MainNetParams.PubKeyHashAddrID && version != chaincfg.TestNet3Params.PubKeyHashAddrID {
		return nil, false
	}
	return payload, true
}

func isBitcoinAddress(address string) bool {
	_, ok := decodePubKeyHash(address)
	return ok
}

func decodeWIF(key string) ([]byte, bool, Network, error) {
	wif, err := btcutil.DecodeWIF(key)
	if err != nil {
		return nil, false, MainNet, errors.Wrapf(ErrInvalidKey, "decode WIF: %v", err)
	}

	var network Network
	switch {
	case wif.IsForNet(&chaincfg.MainNetParams):
		network = MainNet
	case wif.IsForNet(&chaincfg.TestNet3Params):
		network = TestNet
	default:
		return nil, false, MainNet, errors.Wrap(ErrInvalidKey, "WIF is not for main net or test net")
	}
	return wif.PrivKey.Serialize(), wif.CompressPubKey, network, nil
}

func decodeHexKey(key string) ([]byte, bool) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(key, "0x"), "0X")
	if len(trimmed) != privateKeyLength*2 {
		return nil, false
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, false
	}
	return raw, true
}
