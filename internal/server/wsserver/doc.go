// Package wsserver provides the websocket transport for issuemesh.
//
// Every connection is a domain.Observer registered with the issue service.
// A connection runs two goroutines:
//
//   - read pump: decodes client requests and calls the service synchronously
//   - write pump: drains a bounded send buffer and keeps the peer alive with pings
//
// A client that cannot keep up fills its send buffer and is disconnected;
// it catches up through the init event on reconnect.
//
// Wire format (JSON text frames):
//
//	client -> server  {"type":"create_issue","payload":{...}}
//	server -> client  {"type":"issue_created","issue":{...}}
package wsserver
