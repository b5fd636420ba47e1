// Package certutil builds the mTLS trust envelope described in spec.md
// §4.5: every peer connection, inbound or outbound, must present a
// CA-signed certificate and negotiate at least TLS 1.2. Certificate and
// key loading is delegated to github.com/lightningnetwork/lnd/cert, the
// same helper lnd uses to load its own RPC TLS material.
package certutil

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"strings"

	"github.com/btcsuite/btclog"
	"github.com/go-errors/errors"
	"github.com/lightningnetwork/lnd/cert"

	"github.com/ridh7/meshgate/meshlog"
)

var log btclog.Logger = meshlog.Disabled

// UseLogger swaps the package-level logger.
func UseLogger(logger btclog.Logger) { log = logger }

// Material holds the loaded identity certificate and CA pool shared by
// both the server listener and the outbound client factory.
type Material struct {
	Identity tls.Certificate
	CAPool   *x509.CertPool
}

// Load reads the node's certificate/key pair and the CA certificate from
// disk. Multiple certs per file are accepted per spec.md §6; for key files
// with more than one private key block, cert.LoadCert uses the first and
// Load logs a warning.
func Load(certPath, keyPath, caCertPath string) (*Material, error) {
	certificate, _, err := cert.LoadCert(certPath, keyPath)
	if err != nil {
		return nil, errors.Errorf("loading identity cert/key: %v", err)
	}

	keyPEM, _ := os.ReadFile(keyPath)
	keyBlocks := 0
	for block, rest := pem.Decode(keyPEM); block != nil; block, rest = pem.Decode(rest) {
		if strings.HasSuffix(block.Type, "PRIVATE KEY") {
			keyBlocks++
		}
	}
	if keyBlocks > 1 {
		log.Warnf("key file %s holds %d private keys; using the first", keyPath, keyBlocks)
	}

	caBytes, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, errors.Errorf("reading CA cert %s: %v", caCertPath, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, errors.Errorf("no valid certificates found in %s", caCertPath)
	}

	log.Infof("loaded identity cert %s and CA cert %s", certPath, caCertPath)

	return &Material{Identity: certificate, CAPool: pool}, nil
}

// ServerTLSConfig builds a *tls.Config that requires and verifies a
// CA-signed client certificate on every inbound connection, refusing the
// handshake otherwise, per spec.md §4.5.
func (m *Material) ServerTLSConfig() *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{m.Identity},
		ClientCAs:    m.CAPool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}
}

// ClientTLSConfig builds a *tls.Config that presents this node's identity
// certificate and pins the shared CA as the only accepted root for the
// server it dials.
func (m *Material) ClientTLSConfig() *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{m.Identity},
		RootCAs:      m.CAPool,
		MinVersion:   tls.VersionTLS12,
	}
}
