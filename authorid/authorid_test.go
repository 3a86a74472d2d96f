package authorid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trufnetwork/authorid/signer"
)

const (
	aliceKey   = "9a1f5e6b3c2d4e8f7a6b5c4d3e2f1a0b9c8d7e6f5a4b3c2d1e0f9a8b7c6d5e4f"
	bobKey     = "1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f901"
	malloryKey = "7f6e5d4c3b2a19087f6e5d4c3b2a19087f6e5d4c3b2a19087f6e5d4c3b2a1908"
	evmKey     = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
)

func newSigner(t *testing.T, key string) signer.Signer {
	t.Helper()
	s, err := signer.NewBitcoinSigner(key)
	require.NoError(t, err)
	return s
}

func args(values ...string) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out
}

// attach builds a block over indexes and appends it to stream.
func attach(t *testing.T, stream [][]byte, s signer.Signer, indexes ...int) ([][]byte, Block) {
	t.Helper()
	b, err := Build(stream, s, indexes)
	require.NoError(t, err)
	return AppendBlock(stream, b), b
}
