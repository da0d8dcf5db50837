// Package memory provides the in-memory record store for issuemesh.
//
// The store holds every issue in creation order with an id index and
// allocates monotonically increasing identifiers.
//
// Thread Safety:
//
// A Store has a single owner. Mutations are staged on a Clone and swapped
// in by the owner once persisted (copy-on-write), which makes a failed
// persistence step a no-op for the in-memory state.
package memory
