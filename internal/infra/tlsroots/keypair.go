package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
)

// Keypair serves a certificate and key that can be swapped while
// connections are accepted. Handshakes in progress keep the pair they
// started with.
type Keypair struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu   sync.RWMutex
	cert *tls.Certificate
}

// LoadKeypair loads certFile and keyFile. Both must be valid now; later
// reload failures keep the previous pair.
func LoadKeypair(certFile, keyFile string, logger *slog.Logger) (*Keypair, error) {
	if logger == nil {
		logger = slog.Default()
	}
	k := &Keypair{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger.With("component", "tls"),
	}
	if err := k.load(); err != nil {
		return nil, err
	}
	return k, nil
}

// CertFile returns the certificate path.
func (k *Keypair) CertFile() string { return k.certFile }

// KeyFile returns the private key path.
func (k *Keypair) KeyFile() string { return k.keyFile }

// Reload reads the files again. On error the current pair stays in use.
func (k *Keypair) Reload() error {
	if err := k.load(); err != nil {
		k.logger.Error("certificate reload failed",
			"cert_file", k.certFile,
			"key_file", k.keyFile,
			"error", err,
		)
		return err
	}
	k.logger.Info("certificate reloaded", "cert_file", k.certFile)
	return nil
}

func (k *Keypair) load() error {
	cert, err := tls.LoadX509KeyPair(k.certFile, k.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}

	k.mu.Lock()
	k.cert = &cert
	k.mu.Unlock()
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (k *Keypair) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.cert, nil
}

// ServerConfig returns a server TLS config backed by this key pair.
func (k *Keypair) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: k.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}
