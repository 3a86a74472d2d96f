// Package authorid implements the AUTHOR_IDENTITY protocol: identity attestations
// embedded in an ordered stream of data-push arguments, such as the pushes of an
// OP_RETURN output.
//
// An attestation block is a contiguous run of arguments:
//
//	[marker, address, signature, index_0, index_1, ...]
//
// The signature covers the concatenation, in index order, of the arguments at the
// listed indexes. Indexes always point strictly before the block, so a later
// block may cover an earlier one and several parties can endorse the same data
// in sequence (a signer chain).
//
// Key components:
//   - Build / Parse: the attestation codec
//   - Verify / VerifyOrdered: signature checks with signer order enforcement
//   - Scanner: locate every attestation in a stream or a raw transaction
//
// Every operation is synchronous and free of shared state; streams are read,
// never retained.
package authorid
