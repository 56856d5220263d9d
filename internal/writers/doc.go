// Package writers serializes the merge result.
//
// Design:
//   - Writers own all presentation knowledge (merged FASTA, JSON class report).
//   - Nothing reaches the destination until the whole result is known:
//     CommitFile stages into a temporary file and renames on success.
//   - The JSON report goes through pkg/api (v1) for a stable wire format.
package writers
