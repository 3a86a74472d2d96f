package authorid

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trufnetwork/authorid/txdecode"
)

func TestFindAll(t *testing.T) {
	alice := newSigner(t, aliceKey)
	bob := newSigner(t, bobKey)

	t.Run("NoAttestations", func(t *testing.T) {
		assert.Empty(t, FindAll(nil))
		assert.Empty(t, FindAll(args("a", "b", "c")))
	})

	t.Run("MultipleBlocksWithSeparators", func(t *testing.T) {
		stream := args("B", "content", "text/plain", Separator)
		stream, a := attach(t, stream, alice, 0, 1, 2)
		stream = append(stream, []byte(Separator))
		stream, b := attach(t, stream, bob, 1)

		found := FindAll(stream)
		require.Len(t, found, 2)
		assert.Equal(t, a, found[0])
		assert.Equal(t, b, found[1])
	})

	t.Run("AdvancesPastBlock", func(t *testing.T) {
		stream := args("data", Marker, "addr", "sig", "0")
		found := FindAll(stream)
		require.Len(t, found, 1)
		assert.Equal(t, 1, found[0].Offset)
		assert.Equal(t, 4, found[0].Len())
	})

	t.Run("SkipsMalformedMarker", func(t *testing.T) {
		garbage := [][]byte{[]byte(Marker), []byte("addr"), []byte("sig"), []byte("not-an-index")}
		stream := append(args("hello", "world"), garbage...)
		stream, good := attach(t, stream, alice, 0, 1)

		found := FindAll(stream)
		require.Len(t, found, 1)
		assert.Equal(t, good, found[0])
		assert.True(t, Verify(stream, found[0], Exactly(alice.Address())).Verified)
	})

	t.Run("SkipsTruncatedMarkerAnywhere", func(t *testing.T) {
		base, good := attach(t, args("hello", "world"), alice, 0, 1)
		for pos := 0; pos <= 2; pos++ {
			stream := make([][]byte, 0, len(base)+2)
			stream = append(stream, base[:pos]...)
			stream = append(stream, []byte(Marker), []byte(Separator))
			stream = append(stream, base[pos:]...)

			found := FindAll(stream)
			require.Len(t, found, 1, "stray marker at %d", pos)
			assert.Equal(t, good.Address, found[0].Address)
			assert.Equal(t, good.Signature, found[0].Signature)
		}

		// A marker as the very last argument.
		found := FindAll(append(cloneStream(base), []byte(Marker)))
		require.Len(t, found, 1)
	})

	t.Run("StrictAbortsOnMalformedMarker", func(t *testing.T) {
		stream := append(args("hello"), []byte(Marker), []byte("addr"))
		_, err := NewScanner(WithStrict()).FindAll(stream)
		assert.True(t, errors.Is(err, ErrMalformedAttestation))

		_, err = NewScanner(WithStrict()).DetectAndVerify(stream)
		assert.True(t, errors.Is(err, ErrMalformedAttestation))
	})

	t.Run("LogsSkippedMarkers", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		scanner := NewScanner(WithLogger(zap.New(core)))

		found, err := scanner.FindAll(args(Marker, "addr", "sig", "x"))
		require.NoError(t, err)
		assert.Empty(t, found)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "skipping malformed attestation", logs.All()[0].Message)
	})
}

func TestDetectAndVerify(t *testing.T) {
	alice := newSigner(t, aliceKey)
	bob := newSigner(t, bobKey)

	stream, _ := attach(t, args("hello", "world"), alice, 0, 1)
	stream, _ = attach(t, stream, bob, 0)

	res := DetectAndVerify(stream, ExpectAll(alice.Address(), bob.Address())...)
	assert.True(t, res.Verified)
	require.Len(t, res.Identities, 2)

	res = DetectAndVerify(stream)
	assert.True(t, res.Verified, "with no expectations any signer is accepted")

	res = DetectAndVerify(stream, ExpectAll(bob.Address())...)
	assert.False(t, res.Verified)

	res = DetectAndVerify(args("plain"))
	assert.False(t, res.Verified)
	assert.Empty(t, res.Identities)
}

func TestFindAllInTransaction(t *testing.T) {
	alice := newSigner(t, aliceKey)
	bob := newSigner(t, bobKey)

	first, a := attach(t, args("hello", "world"), alice, 0, 1)
	second, b := attach(t, args("other"), bob, 0)
	raw := buildTx(t, dataScript(t, first), []byte{txscript.OP_TRUE}, dataScript(t, args("no", "identity")), dataScript(t, second))

	t.Run("GroupsPerOutput", func(t *testing.T) {
		outputs, err := FindAllInTransaction(raw)
		require.NoError(t, err)
		require.Len(t, outputs, 4)

		assert.Equal(t, []Block{a}, outputs[0])
		assert.Empty(t, outputs[1])
		assert.NotNil(t, outputs[1])
		assert.Empty(t, outputs[2])
		assert.Equal(t, []Block{b}, outputs[3])
	})

	t.Run("DetectAndVerifyTransaction", func(t *testing.T) {
		results, err := DetectAndVerifyTransaction(raw)
		require.NoError(t, err)
		require.Len(t, results, 4)

		for i, r := range results {
			assert.Equal(t, i, r.Output)
		}
		assert.True(t, results[0].Result.Verified)
		assert.False(t, results[1].Result.Verified)
		assert.True(t, results[3].Result.Verified)
		assert.Equal(t, bob.Address(), results[3].Result.Identities[0].Address)
	})

	t.Run("DecodeFailure", func(t *testing.T) {
		_, err := FindAllInTransaction([]byte{0xde, 0xad})
		assert.Error(t, err)
	})

	t.Run("CustomDecoder", func(t *testing.T) {
		decoder := TxDecoderFunc(func(raw []byte) ([][][]byte, error) {
			return [][][]byte{first}, nil
		})
		outputs, err := NewScanner(WithDecoder(decoder)).FindAllInTransaction([]byte("ignored"))
		require.NoError(t, err)
		assert.Equal(t, [][]Block{{a}}, outputs)
	})
}

func dataScript(t *testing.T, stream [][]byte) []byte {
	t.Helper()
	script, err := txdecode.DataScript(stream)
	require.NoError(t, err)
	return script
}

func buildTx(t *testing.T, scripts ...[]byte) []byte {
	t.Helper()
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0x02}, 1), nil, nil))
	for _, script := range scripts {
		tx.AddTxOut(wire.NewTxOut(0, script))
	}
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return buf.Bytes()
}
