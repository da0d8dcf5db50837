// Package domain holds the issuemesh records and the rules that apply to
// them without any I/O.
//
// An Issue carries its Comments and a Status. A Document is the whole
// store (next ID plus issues) as it is written to the snapshot and sent to
// a new observer. Events describe each committed change. DomainError gives
// every failure a stable IM-AREA-NNNN code whose last digits encode the
// HTTP status.
package domain
