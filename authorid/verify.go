package authorid

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/trufnetwork/authorid/signer"
)

// Reasons attached to identities that did not verify.
const (
	ReasonAddressMismatch  = "address mismatch"
	ReasonInvalidSignature = "invalid signature"
	ReasonIndexOutOfRange  = "index does not reference an earlier argument"
	ReasonNotFound         = "no attestation at offset"
	ReasonMalformed        = "malformed attestation"
	ReasonChainBroken      = "preceding attestation failed"
	ReasonUnexpected       = "unexpected signer"
)

// anyAddress is how an Any expectation is rendered in result lists.
const anyAddress = "*"

// Expectation constrains which signer an attestation may come from.
// The zero value accepts any signer.
type Expectation struct {
	address string
	exact   bool
}

// Any accepts every signer whose signature checks out.
func Any() Expectation {
	return Expectation{}
}

// Exactly accepts only the given address.
func Exactly(address string) Expectation {
	return Expectation{address: address, exact: true}
}

// ExpectAll turns addresses into Exactly expectations, in order.
func ExpectAll(addresses ...string) []Expectation {
	out := make([]Expectation, len(addresses))
	for i, addr := range addresses {
		out[i] = Exactly(addr)
	}
	return out
}

// ParseExpectation maps "*" and "" to Any and everything else to Exactly.
func ParseExpectation(s string) Expectation {
	if s == "" || s == anyAddress {
		return Any()
	}
	return Exactly(s)
}

// Address returns the required address, and false for Any.
func (e Expectation) Address() (string, bool) {
	return e.address, e.exact
}

// Matches reports whether address satisfies the expectation.
func (e Expectation) Matches(address string) bool {
	return !e.exact || signer.EqualAddress(e.address, address)
}

func (e Expectation) String() string {
	if !e.exact {
		return anyAddress
	}
	return e.address
}

// Identity is the verification outcome for one attestation block.
type Identity struct {
	Offset   int    `json:"offset"`
	Address  string `json:"address"`
	Indexes  []int  `json:"indexes"`
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

// VerificationResult aggregates the identities of a signer chain.
type VerificationResult struct {
	// Verified holds when at least one identity was checked, all of them
	// verified, and no expected signer is missing.
	Verified   bool       `json:"verified"`
	Identities []Identity `json:"identities"`
	// Missing lists expected signers for which no attestation position was given.
	Missing []string `json:"missing,omitempty"`
	// Invalid lists signers whose attestation was found but did not verify.
	Invalid []string `json:"invalid,omitempty"`
}

// Verify checks one block against the current stream. The digest input is
// recomputed from stream, so the result does not depend on how the block was
// produced. A failed check is reported in the returned Identity, never as an
// error.
func Verify(stream [][]byte, b Block, expect Expectation) Identity {
	id := identityOf(b)
	if !expect.Matches(b.Address) {
		id.Reason = ReasonAddressMismatch
		return id
	}
	for _, idx := range b.Indexes {
		if idx < 0 || idx >= b.Offset || idx >= len(stream) {
			id.Reason = ReasonIndexOutOfRange
			return id
		}
	}
	if !signer.VerifySignature(b.Address, digestInput(stream, b.Indexes), b.Signature) {
		id.Reason = ReasonInvalidSignature
		return id
	}

	id.Verified = true
	return id
}

func identityOf(b Block) Identity {
	indexes := slices.Clone(b.Indexes)
	if indexes == nil {
		indexes = []int{}
	}
	return Identity{Offset: b.Offset, Address: b.Address, Indexes: indexes}
}

type orderConfig struct {
	exactCount bool
}

// OrderOption tunes VerifyOrdered.
type OrderOption func(*orderConfig)

// WithExactSignerCount reports attestations beyond the expected list as
// unverified instead of accepting any signer for them.
func WithExactSignerCount() OrderOption {
	return func(c *orderConfig) {
		c.exactCount = true
	}
}

// VerifyOrdered verifies the attestations at positions in order, the i-th one
// against expected[i]. The chain of trust must hold from the start: after the
// first failure every later attestation is reported unverified.
func VerifyOrdered(stream [][]byte, positions []int, expected []Expectation, opts ...OrderOption) VerificationResult {
	var cfg orderConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	result := VerificationResult{Identities: make([]Identity, 0, len(positions))}
	broken := false

	for i, pos := range positions {
		expect, listed := Any(), false
		if i < len(expected) {
			expect, listed = expected[i], true
		}

		var id Identity
		block, err := Parse(stream, pos)
		switch {
		case err != nil:
			id = Identity{Offset: pos, Indexes: []int{}, Reason: parseReason(err)}
		case broken:
			id = identityOf(block)
			id.Reason = ReasonChainBroken
		case !listed && cfg.exactCount:
			id = identityOf(block)
			id.Reason = ReasonUnexpected
		default:
			id = Verify(stream, block, expect)
		}

		if !id.Verified {
			broken = true
			if addr, ok := expect.Address(); ok {
				result.Invalid = append(result.Invalid, addr)
			} else if id.Address != "" {
				result.Invalid = append(result.Invalid, id.Address)
			}
		}
		result.Identities = append(result.Identities, id)
	}

	for i := len(positions); i < len(expected); i++ {
		result.Missing = append(result.Missing, expected[i].String())
	}

	result.Verified = len(result.Identities) > 0 && !broken && len(result.Missing) == 0
	return result
}

func parseReason(err error) string {
	if errors.Is(err, ErrMalformedAttestation) {
		return ReasonMalformed
	}
	return ReasonNotFound
}
