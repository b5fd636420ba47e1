package gateway

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ridh7/meshgate/certutil"
	"github.com/ridh7/meshgate/config"
	"github.com/ridh7/meshgate/transport"
)

// selfSignedMaterial builds a single self-signed cert used as both this
// node's identity and its own trusted CA, enough to exercise a full mTLS
// round trip against itself without a real multi-node CA hierarchy.
func selfSignedMaterial(t *testing.T) *certutil.Material {
	t.Helper()
	dir := t.TempDir()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "node-a"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:         true,
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	certPath := filepath.Join(dir, "node-a.crt")
	keyPath := filepath.Join(dir, "node-a.key")

	certOut, err := os.Create(certPath)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, certOut.Close())

	keyBytes, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	keyOut, err := os.Create(keyPath)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes}))
	require.NoError(t, keyOut.Close())

	material, err := certutil.Load(certPath, keyPath, certPath)
	require.NoError(t, err)
	return material
}

func TestServerServesHealthOverMTLS(t *testing.T) {
	material := selfSignedMaterial(t)
	cfg := &config.Config{NodeID: "A", ListenPort: 0}

	srv, err := New(cfg, material)
	require.NoError(t, err)

	addr := srv.listener.Addr().String()
	require.NoError(t, srv.Start())
	defer srv.Stop()

	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: material.ClientTLSConfig()},
		Timeout:   5 * time.Second,
	}

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = client.Get("https://" + addr + "/health")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body transport.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "A", body.NodeID)
}

func TestServerRejectsClientWithoutCert(t *testing.T) {
	material := selfSignedMaterial(t)
	cfg := &config.Config{NodeID: "A", ListenPort: 0}

	srv, err := New(cfg, material)
	require.NoError(t, err)

	addr := srv.listener.Addr().String()
	require.NoError(t, srv.Start())
	defer srv.Stop()

	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: material.CAPool}},
		Timeout:   5 * time.Second,
	}

	_, err = client.Get("https://" + addr + "/health")
	require.Error(t, err)
}
