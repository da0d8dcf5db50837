// Package hub provides the broadcast hub for issuemesh.
//
// The hub keeps the set of registered observers and fans events out to
// them. It knows nothing about transports: an observer is anything with an
// ID and a Send method. Delivery is best effort. An observer whose Send
// fails is skipped and stays registered until its transport unregisters
// it; there is no retry and no acknowledgment.
//
// Ordering: Broadcast delivers to each observer synchronously, so when a
// single goroutine issues broadcasts, every observer sees them in that
// order.
package hub
