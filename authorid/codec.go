package authorid

import (
	"bytes"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/trufnetwork/authorid/signer"
)

const (
	// Marker is the protocol prefix that opens every attestation block.
	Marker = "15PciHG22SNLQJXMoSUaWVi7WSqc7hCfva"
	// Separator is the protocol separator argument. It terminates an index list
	// and is never part of a block.
	Separator = "|"

	// headerFields counts marker, address and signature.
	headerFields = 3
)

// Block is one attestation block.
//
// Layout inside the argument stream:
//
//	Offset      marker
//	Offset+1    signer address
//	Offset+2    signature
//	Offset+3..  covered argument indexes, decimal ASCII
//
// Offset is the position of the marker. Blocks returned by Build carry the
// position they take when appended directly to the stream they were built from.
type Block struct {
	Offset    int    `json:"offset"`
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Indexes   []int  `json:"indexes"`
}

// Len returns the number of stream slots the block occupies.
func (b Block) Len() int {
	return headerFields + len(b.Indexes)
}

// Fields serializes the block into its argument list.
func (b Block) Fields() [][]byte {
	fields := make([][]byte, 0, b.Len())
	fields = append(fields, []byte(Marker), []byte(b.Address), []byte(b.Signature))
	for _, idx := range b.Indexes {
		fields = append(fields, []byte(strconv.Itoa(idx)))
	}
	return fields
}

// AppendBlock returns a new stream holding stream followed by the block fields.
// The input stream is not modified.
func AppendBlock(stream [][]byte, b Block) [][]byte {
	out := make([][]byte, 0, len(stream)+b.Len())
	out = append(out, stream...)
	return append(out, b.Fields()...)
}

// Build signs the arguments at indexes with s and returns the attestation block
// that would occupy position len(stream). indexes keep their order, must not
// repeat, and must each reference an existing argument. An empty index list
// yields a bare identity announcement that signs nothing.
func Build(stream [][]byte, s signer.Signer, indexes []int) (Block, error) {
	if s == nil {
		return Block{}, ErrEmptyKey
	}
	if err := checkIndexes(indexes, len(stream)); err != nil {
		return Block{}, err
	}

	address := s.Address()
	if address == "" {
		return Block{}, ErrEmptyKey
	}

	signature, err := s.Sign(digestInput(stream, indexes))
	if err != nil {
		return Block{}, errors.Wrap(err, "sign arguments")
	}

	return Block{
		Offset:    len(stream),
		Address:   address,
		Signature: signature,
		Indexes:   slices.Clone(indexes),
	}, nil
}

// SignArguments returns only the signature Build would place in the block.
func SignArguments(stream [][]byte, s signer.Signer, indexes []int) (string, error) {
	b, err := Build(stream, s, indexes)
	if err != nil {
		return "", err
	}
	return b.Signature, nil
}

// Parse decodes the attestation block starting at offset. It returns
// ErrNotAnAttestation when the argument at offset is not the marker, and
// ErrMalformedAttestation when the marker is followed by truncated or
// unparseable fields. On success Block.Len reports the slots consumed.
func Parse(stream [][]byte, offset int) (Block, error) {
	if offset < 0 || offset >= len(stream) || string(stream[offset]) != Marker {
		return Block{}, ErrNotAnAttestation
	}

	cursor := offset + 1
	if len(stream) < cursor+2 {
		return Block{}, errors.Wrapf(ErrMalformedAttestation,
			"attestation at %d truncated: need address and signature, have %d fields", offset, len(stream)-cursor)
	}

	address, signature := string(stream[cursor]), string(stream[cursor+1])
	if address == "" || signature == "" {
		return Block{}, errors.Wrapf(ErrMalformedAttestation, "attestation at %d has empty address or signature", offset)
	}
	if isTerminator(address) || isTerminator(signature) {
		return Block{}, errors.Wrapf(ErrMalformedAttestation, "attestation at %d truncated by a protocol delimiter", offset)
	}
	cursor += 2

	indexes := []int{}
	for ; cursor < len(stream); cursor++ {
		field := string(stream[cursor])
		if isTerminator(field) {
			break
		}
		idx, err := parseIndex(field)
		if err != nil {
			return Block{}, errors.Wrapf(ErrMalformedAttestation, "attestation at %d: field %d: %v", offset, cursor, err)
		}
		indexes = append(indexes, idx)
	}

	return Block{
		Offset:    offset,
		Address:   address,
		Signature: signature,
		Indexes:   indexes,
	}, nil
}

func isTerminator(field string) bool {
	return field == Separator || field == Marker
}

// parseIndex accepts the canonical decimal form of a non-negative int, so a
// parsed block re-encodes to the same bytes.
func parseIndex(field string) (int, error) {
	if field == "" {
		return 0, errors.New("empty index")
	}
	if len(field) > 1 && field[0] == '0' {
		return 0, errors.Errorf("%q has leading zeros", field)
	}
	n, err := strconv.ParseUint(field, 10, strconv.IntSize-1)
	if err != nil {
		return 0, errors.Errorf("%q is not a non-negative integer", field)
	}
	return int(n), nil
}

func checkIndexes(indexes []int, limit int) error {
	for _, idx := range indexes {
		if idx < 0 || idx >= limit {
			return errors.Wrapf(ErrIndexOutOfRange, "index %d, stream has %d arguments", idx, limit)
		}
	}
	if dups := lo.FindDuplicates(indexes); len(dups) > 0 {
		return errors.Wrapf(ErrDuplicateIndex, "index %d repeats", dups[0])
	}
	return nil
}

// digestInput concatenates the arguments at indexes in the given order. Callers
// must have range-checked the indexes.
func digestInput(stream [][]byte, indexes []int) []byte {
	return bytes.Join(lo.Map(indexes, func(idx int, _ int) []byte {
		return stream[idx]
	}), nil)
}
