// Package errors classifies failures of the file-API client so the retry loop
// knows when to give up.
//
// Error Categories:
//
// 1. Non-Retryable Errors (Fatal):
//   - Rejected requests (bad request, unauthorized, forbidden)
//   - Invalid input such as a malformed txid or an undecodable response
//   - Cancelled or expired contexts
//     These stop the retry loop immediately.
//
// 2. Not-Found Errors:
//   - Unknown transaction ids
//     Also final: retrying cannot make a missing transaction appear.
//
// 3. Retryable Errors (Transient):
//   - Everything else: timeouts, connection resets, 5xx responses
//     These are retried with exponential backoff.
//
// Usage:
//
//	if errors.IsNotFoundError(err) || errors.IsNonRetryableError(err) {
//	    return backoff.Permanent(err)
//	}
//	return err
package errors
