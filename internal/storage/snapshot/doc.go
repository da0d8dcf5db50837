// Package snapshot provides the durable snapshot writer for issuemesh.
//
// The whole record store is kept in a single JSON document:
//
//	{ "nextId": 3, "issues": [ ... ] }
//
// The document is rewritten in full on every mutation. Writes go to a temp
// file in the same directory which is fsynced and atomically renamed over
// the target, so a reader sees either the old or the new document.
//
// Recovery Process:
//
//  1. Missing file: initialize and persist an empty document
//  2. Corrupt file: quarantine it as <path>.corrupt-<timestamp> and start
//     empty, or fail when strict loading is enabled
//  3. Out-of-band edits: Reload detects content that differs from the last
//     write by checksum
package snapshot
