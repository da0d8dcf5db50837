// Package tlsroots holds the TLS plumbing shared by issuemesh-server and
// issuemesh-cli.
//
// The server serves from a Keypair that can be reloaded while connections
// are open; issuemesh-server reloads it when fswatch reports the cert or
// key file changed. The CLI trusts a private CA through ClientConfig
// (--ca-file).
package tlsroots
