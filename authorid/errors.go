package authorid

import (
	"github.com/pkg/errors"

	"github.com/trufnetwork/authorid/signer"
)

var (
	// ErrNotAnAttestation means the probed position does not hold the protocol
	// marker. It is a probe outcome rather than a failure.
	ErrNotAnAttestation = errors.New("not an attestation")
	// ErrMalformedAttestation means the marker is present but the fields after it
	// are truncated or unparseable.
	ErrMalformedAttestation = errors.New("malformed attestation")
	// ErrIndexOutOfRange means a build-time index references an argument that has
	// not been written yet.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrDuplicateIndex means a build-time index list repeats a position.
	ErrDuplicateIndex = errors.New("duplicate index")

	// ErrEmptyKey and ErrInvalidKey are the signer misuse errors.
	ErrEmptyKey   = signer.ErrEmptyKey
	ErrInvalidKey = signer.ErrInvalidKey
)
