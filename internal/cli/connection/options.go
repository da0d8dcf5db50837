// Package connection provides connection management for issuemesh-cli.
package connection

import (
	"crypto/tls"
	"net/http"
)

type options struct {
	tlsConfig *tls.Config
}

// Option configures NewHTTPClient and DialWS.
type Option func(*options)

// WithTLSConfig sets the TLS client config for https and wss servers. A
// nil config keeps the Go defaults.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) transport() http.RoundTripper {
	if o.tlsConfig == nil {
		return http.DefaultTransport
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = o.tlsConfig
	return t
}
