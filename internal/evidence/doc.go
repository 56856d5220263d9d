// Package evidence models pairwise overlap records produced by an external
// aligner and decodes them from the aligner's text output.
//
// Decoding is line oriented. A line that cannot be decoded is reported as a
// *MalformedRecordError and skipped by Scan; a failure of the stream itself
// (read error, producer exit) is returned to the caller and aborts the run.
package evidence
