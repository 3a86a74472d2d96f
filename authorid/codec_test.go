package authorid

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trufnetwork/authorid/signer"
)

func TestBuild(t *testing.T) {
	alice := newSigner(t, aliceKey)

	t.Run("Layout", func(t *testing.T) {
		stream := args("hello", "world")
		b, err := Build(stream, alice, []int{1, 0})
		require.NoError(t, err)

		assert.Equal(t, 2, b.Offset)
		assert.Equal(t, alice.Address(), b.Address)
		assert.Equal(t, []int{1, 0}, b.Indexes)
		assert.Equal(t, 5, b.Len())

		fields := b.Fields()
		require.Len(t, fields, 5)
		assert.Equal(t, Marker, string(fields[0]))
		assert.Equal(t, alice.Address(), string(fields[1]))
		assert.Equal(t, b.Signature, string(fields[2]))
		assert.Equal(t, "1", string(fields[3]))
		assert.Equal(t, "0", string(fields[4]))
	})

	t.Run("SignsConcatenationInIndexOrder", func(t *testing.T) {
		stream := args("hello", "world")
		b, err := Build(stream, alice, []int{1, 0})
		require.NoError(t, err)

		assert.True(t, signer.VerifySignature(alice.Address(), []byte("worldhello"), b.Signature))
		assert.False(t, signer.VerifySignature(alice.Address(), []byte("helloworld"), b.Signature))
	})

	t.Run("EmptyIndexes", func(t *testing.T) {
		b, err := Build(args("data"), alice, nil)
		require.NoError(t, err)
		assert.Empty(t, b.Indexes)
		assert.Equal(t, 3, b.Len())
		assert.True(t, signer.VerifySignature(alice.Address(), nil, b.Signature))
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		_, err := Build(args("a", "b"), alice, []int{0, 2})
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))

		_, err = Build(args("a"), alice, []int{-1})
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))

		_, err = Build(nil, alice, []int{0})
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	})

	t.Run("DuplicateIndex", func(t *testing.T) {
		_, err := Build(args("a", "b"), alice, []int{0, 1, 0})
		assert.True(t, errors.Is(err, ErrDuplicateIndex))
	})

	t.Run("EmptyKey", func(t *testing.T) {
		_, err := Build(args("a"), nil, []int{0})
		assert.True(t, errors.Is(err, ErrEmptyKey))

		var typedNil *signer.BitcoinSigner
		_, err = Build(args("a"), typedNil, []int{0})
		assert.True(t, errors.Is(err, ErrEmptyKey))
	})

	t.Run("Deterministic", func(t *testing.T) {
		stream := args("hello", "world")
		first, err := SignArguments(stream, alice, []int{0, 1})
		require.NoError(t, err)
		second, err := SignArguments(stream, alice, []int{0, 1})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("DoesNotAliasInputs", func(t *testing.T) {
		stream := args("a", "b")
		indexes := []int{0, 1}
		b, err := Build(stream, alice, indexes)
		require.NoError(t, err)

		indexes[0] = 1
		assert.Equal(t, []int{0, 1}, b.Indexes)

		out := AppendBlock(stream, b)
		assert.Len(t, stream, 2)
		assert.Len(t, out, 2+b.Len())
	})
}

func TestParse(t *testing.T) {
	alice := newSigner(t, aliceKey)

	t.Run("RoundTrip", func(t *testing.T) {
		stream, built := attach(t, args("hello", "world"), alice, 0, 1)

		parsed, err := Parse(stream, built.Offset)
		require.NoError(t, err)
		assert.Equal(t, built, parsed)
		assert.Equal(t, len(stream)-built.Offset, parsed.Len())
	})

	t.Run("NotAnAttestation", func(t *testing.T) {
		stream := args("hello", Marker)
		for _, offset := range []int{-1, 0, 5} {
			_, err := Parse(stream, offset)
			assert.True(t, errors.Is(err, ErrNotAnAttestation), "offset %d", offset)
		}
	})

	t.Run("IndexesStopAtSeparator", func(t *testing.T) {
		stream := args("data", Marker, "addr", "sig", "0", Separator, "B", "text")
		b, err := Parse(stream, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{0}, b.Indexes)
		assert.Equal(t, 4, b.Len())
	})

	t.Run("IndexesStopAtNextMarker", func(t *testing.T) {
		stream := args("data", Marker, "a1", "s1", "0", Marker, "a2", "s2", "0", "1")
		first, err := Parse(stream, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{0}, first.Indexes)

		second, err := Parse(stream, 1+first.Len())
		require.NoError(t, err)
		assert.Equal(t, "a2", second.Address)
		assert.Equal(t, []int{0, 1}, second.Indexes)
	})

	t.Run("Malformed", func(t *testing.T) {
		tests := []struct {
			name   string
			stream [][]byte
		}{
			{"marker only", args(Marker)},
			{"missing signature", args(Marker, "addr")},
			{"empty address", args(Marker, "", "sig")},
			{"separator as signature", args(Marker, "addr", Separator)},
			{"negative index", args(Marker, "addr", "sig", "-1")},
			{"signed index", args(Marker, "addr", "sig", "+1")},
			{"non numeric index", args(Marker, "addr", "sig", "0", "zero")},
			{"empty index", args(Marker, "addr", "sig", "")},
			{"overflowing index", args(Marker, "addr", "sig", "99999999999999999999999")},
			{"zero padded index", args(Marker, "addr", "sig", "00")},
			{"leading zero index", args(Marker, "addr", "sig", "1", "07")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Parse(tt.stream, 0)
				assert.True(t, errors.Is(err, ErrMalformedAttestation), "got %v", err)
			})
		}
	})

	t.Run("FieldsReencodeParsedBlock", func(t *testing.T) {
		stream := args(Marker, "addr", "sig", "0", "10", "3", Separator)
		b, err := Parse(stream, 0)
		require.NoError(t, err)
		assert.Equal(t, stream[:b.Len()], b.Fields())
	})
}
