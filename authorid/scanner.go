package authorid

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/trufnetwork/authorid/txdecode"
)

// TxDecoder splits a raw transaction into one argument stream per output, in
// output order.
type TxDecoder interface {
	Decode(raw []byte) ([][][]byte, error)
}

// TxDecoderFunc adapts a function to TxDecoder.
type TxDecoderFunc func(raw []byte) ([][][]byte, error)

func (f TxDecoderFunc) Decode(raw []byte) ([][][]byte, error) { return f(raw) }

// OutputResult is the detection result for one transaction output.
type OutputResult struct {
	Output int                `json:"output"`
	Result VerificationResult `json:"result"`
}

// Scanner locates attestation blocks at unknown offsets.
//
// By default a marker followed by garbage is skipped like any other argument,
// so a stray marker cannot hide a well-formed attestation that follows it.
// WithStrict turns that case into an error instead.
type Scanner struct {
	strict  bool
	logger  *zap.Logger
	decoder TxDecoder
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithStrict makes a malformed attestation abort the scan.
func WithStrict() ScannerOption {
	return func(s *Scanner) {
		s.strict = true
	}
}

// WithLogger sets the logger used to report skipped markers.
func WithLogger(logger *zap.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDecoder replaces the raw transaction decoder.
func WithDecoder(d TxDecoder) ScannerOption {
	return func(s *Scanner) {
		if d != nil {
			s.decoder = d
		}
	}
}

// NewScanner returns a lenient scanner using the standard transaction decoder.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		logger:  zap.NewNop(),
		decoder: TxDecoderFunc(txdecode.Decode),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScanner = NewScanner()

// FindAll returns every attestation block in stream, in stream order. The cursor
// never probes inside a block it has already parsed.
func (s *Scanner) FindAll(stream [][]byte) ([]Block, error) {
	found := []Block{}
	for cursor := 0; cursor < len(stream); {
		b, err := Parse(stream, cursor)
		switch {
		case err == nil:
			found = append(found, b)
			cursor += b.Len()
		case errors.Is(err, ErrMalformedAttestation):
			if s.strict {
				return nil, err
			}
			s.logger.Debug("skipping malformed attestation",
				zap.Int("offset", cursor), zap.Error(err))
			cursor++
		default:
			cursor++
		}
	}
	return found, nil
}

// FindAllInTransaction decodes raw and runs FindAll on every output. Outputs
// without attestations yield empty lists.
func (s *Scanner) FindAllInTransaction(raw []byte) ([][]Block, error) {
	outputs, err := s.decoder.Decode(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode transaction")
	}

	results := make([][]Block, len(outputs))
	for i, stream := range outputs {
		blocks, err := s.FindAll(stream)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
		results[i] = blocks
	}
	return results, nil
}

// DetectAndVerify finds every attestation in stream and verifies them in order
// against expected. Attestations beyond expected accept any signer.
func (s *Scanner) DetectAndVerify(stream [][]byte, expected ...Expectation) (VerificationResult, error) {
	blocks, err := s.FindAll(stream)
	if err != nil {
		return VerificationResult{}, err
	}
	positions := lo.Map(blocks, func(b Block, _ int) int { return b.Offset })
	return VerifyOrdered(stream, positions, expected), nil
}

// DetectAndVerifyTransaction runs DetectAndVerify on every output of raw and
// returns one result per output, in output order.
func (s *Scanner) DetectAndVerifyTransaction(raw []byte, expected ...Expectation) ([]OutputResult, error) {
	outputs, err := s.decoder.Decode(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode transaction")
	}

	results := make([]OutputResult, len(outputs))
	for i, stream := range outputs {
		res, err := s.DetectAndVerify(stream, expected...)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
		results[i] = OutputResult{Output: i, Result: res}
	}
	return results, nil
}

// FindAll scans stream with the lenient default scanner.
func FindAll(stream [][]byte) []Block {
	found, _ := defaultScanner.FindAll(stream)
	return found
}

// FindAllInTransaction scans every output of raw with the default scanner.
func FindAllInTransaction(raw []byte) ([][]Block, error) {
	return defaultScanner.FindAllInTransaction(raw)
}

// DetectAndVerify detects and verifies with the lenient default scanner.
func DetectAndVerify(stream [][]byte, expected ...Expectation) VerificationResult {
	res, _ := defaultScanner.DetectAndVerify(stream, expected...)
	return res
}

// DetectAndVerifyTransaction detects and verifies every output of raw with the
// default scanner.
func DetectAndVerifyTransaction(raw []byte, expected ...Expectation) ([]OutputResult, error) {
	return defaultScanner.DetectAndVerifyTransaction(raw, expected...)
}
