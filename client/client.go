// Package client fetches raw transactions from the file API and runs author
// identity detection on them.
package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trufnetwork/authorid/authorid"
	"github.com/trufnetwork/authorid/config"
	apierrors "github.com/trufnetwork/authorid/internal/errors"
	"github.com/trufnetwork/authorid/txdecode"
)

const (
	headerAPIKey    = "api_key"
	headerRequestID = "X-Request-Id"

	maxResponseBytes = 32 << 20
	txidHexLength    = 64
)

// ErrTxIDMismatch is returned when the API answers with a transaction whose
// hash is not the requested txid. It is never retried.
var ErrTxIDMismatch = errors.New("raw transaction does not hash to the requested txid")

// StatusError is returned for non-200 responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Client talks to the file API. It is safe for concurrent use.
type Client struct {
	cfg     config.Config
	http    *http.Client
	logger  *zap.Logger
	cache   *lru.Cache[string, []byte]
	scanner *authorid.Scanner
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout takes precedence over
// the configured one.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithScanner replaces the scanner used for detection.
func WithScanner(s *authorid.Scanner) Option {
	return func(c *Client) {
		c.scanner = s
	}
}

// New creates a client from a validated configuration.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []byte](cfg.CacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "create raw transaction cache")
		}
		c.cache = cache
	}

	if c.scanner == nil {
		scanOpts := []authorid.ScannerOption{authorid.WithLogger(c.logger)}
		if cfg.StrictScan {
			scanOpts = append(scanOpts, authorid.WithStrict())
		}
		c.scanner = authorid.NewScanner(scanOpts...)
	}
	return c, nil
}

// GetTxRaw returns the raw bytes of a transaction, retrying transient failures.
func (c *Client) GetTxRaw(ctx context.Context, txid string) ([]byte, error) {
	txid, err := normalizeTxID(txid)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if raw, ok := c.cache.Get(txid); ok {
			return bytes.Clone(raw), nil
		}
	}

	var raw []byte
	operation := func() error {
		fetched, err := c.fetchTxRaw(ctx, txid)
		if err != nil {
			if errors.Is(err, ErrTxIDMismatch) || apierrors.IsNotFoundError(err) || apierrors.IsNonRetryableError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		raw = fetched
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.cfg.MaxRetries)), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("fetch raw transaction failed, retrying",
			zap.String("txid", txid),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, errors.Wrapf(err, "get raw transaction %s", txid)
	}

	if c.cache != nil {
		c.cache.Add(txid, bytes.Clone(raw))
	}
	return raw, nil
}

// DetectAndVerifyTxID fetches a transaction and verifies the attestations of
// every output against expected.
func (c *Client) DetectAndVerifyTxID(ctx context.Context, txid string, expected ...authorid.Expectation) ([]authorid.OutputResult, error) {
	raw, err := c.GetTxRaw(ctx, txid)
	if err != nil {
		return nil, err
	}

	results, err := c.scanner.DetectAndVerifyTransaction(raw, expected...)
	if err != nil {
		return nil, errors.Wrapf(err, "detect identities in %s", txid)
	}
	return results, nil
}

// DetectAndVerifyTxIDs runs DetectAndVerifyTxID for several transactions with
// at most cfg.Concurrency requests in flight. The first failure cancels the
// rest.
func (c *Client) DetectAndVerifyTxIDs(ctx context.Context, txids []string, expected ...authorid.Expectation) (map[string][]authorid.OutputResult, error) {
	var (
		mu      sync.Mutex
		results = make(map[string][]authorid.OutputResult, len(txids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for _, txid := range txids {
		g.Go(func() error {
			res, err := c.DetectAndVerifyTxID(gctx, txid, expected...)
			if err != nil {
				return err
			}
			mu.Lock()
			results[txid] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// txRawResponse is the API envelope for raw transaction lookups.
type txRawResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Result  string `json:"result"`
}

func (c *Client) fetchTxRaw(ctx context.Context, txid string) ([]byte, error) {
	path := "/tx/" + txid + "/raw"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.APIBase, "/")+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "invalid request")
	}

	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set(headerAPIKey, c.cfg.APIKey)
	}

	c.logger.Debug("fetching raw transaction", zap.String("txid", txid), zap.String("request_id", requestID))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Method: http.MethodGet, Path: path, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var envelope txRawResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrapf(err, "decode response of %s", path)
	}
	if !envelope.Success {
		return nil, errors.Errorf("GET %s: api reported failure: %s", path, envelope.Message)
	}

	raw, err := hex.DecodeString(strings.TrimSpace(envelope.Result))
	if err != nil {
		return nil, errors.Wrapf(err, "decode response of %s: raw transaction is not hex", path)
	}

	got, err := txdecode.TxID(raw)
	if err != nil {
		return nil, errors.Wrapf(ErrTxIDMismatch, "%s: %v", path, err)
	}
	if got != txid {
		return nil, errors.Wrapf(ErrTxIDMismatch, "%s: got %s", path, got)
	}
	return raw, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInterval
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func normalizeTxID(txid string) (string, error) {
	txid = strings.ToLower(strings.TrimSpace(txid))
	if len(txid) != txidHexLength {
		return "", errors.Errorf("invalid txid %q: want %d hex characters", txid, txidHexLength)
	}
	if _, err := hex.DecodeString(txid); err != nil {
		return "", errors.Errorf("invalid txid %q: not hex", txid)
	}
	return txid, nil
}
