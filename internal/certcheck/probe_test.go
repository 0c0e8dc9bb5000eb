package certcheck

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	host, port, err := ParseEndpoint("https://example.com:8443/path")
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, 8443, port)

	host, port, err = ParseEndpoint("https://example.com/path")
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, 443, port)

	host, port, err = ParseEndpoint("HTTPS://Example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, 443, port)

	_, _, err = ParseEndpoint("http://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no https")

	_, _, err = ParseEndpoint("not-a-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no https")

	_, _, err = ParseEndpoint("https://:8443/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hostname")

	_, _, err = ParseEndpoint("https://example.com:bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestProbeRejectsNonHTTPS(t *testing.T) {
	rr := Probe("http://example.com")
	assert.False(t, rr.Status)
	assert.Contains(t, rr.Expire, "no https")

	rr = Probe("")
	assert.False(t, rr.Status)
	assert.Contains(t, rr.Expire, "no https")
}

func TestProbeUnreachableHost(t *testing.T) {
	// grab a port nothing listens on
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	rr := Probe("https://" + addr)
	assert.False(t, rr.Status)
	assert.Contains(t, rr.Expire, "Error: ")
}

func TestProbeLiveCertificate(t *testing.T) {
	notAfter := time.Date(2031, 5, 1, 10, 0, 0, 0, time.UTC)
	endpoint := serveTLS(t, "example.test", []string{"example.test", "alt.example.test"}, notAfter)

	rr := Probe("https://" + endpoint + "/some/path")

	require.True(t, rr.Status, "probe failed: %s", rr.Expire)
	assert.Equal(t, "2031-05-01", rr.Expire)
	assert.Contains(t, rr.Subject, "example.test")
	assert.Contains(t, rr.Issuer, "example.test")
	assert.NotEmpty(t, rr.Serial)
	assert.Equal(t, []string{"example.test"}, rr.CommonNames)
	assert.Equal(t, []string{"example.test", "alt.example.test"}, rr.SANNames)
}

func TestProbeMissingSAN(t *testing.T) {
	endpoint := serveTLS(t, "bare.test", nil, time.Now().Add(24*time.Hour))

	rr := Probe("https://" + endpoint)

	assert.False(t, rr.Status)
	assert.Contains(t, rr.Expire, "no subject alternative name")
}

// serveTLS starts a TLS listener presenting a self-signed certificate and
// returns its host:port. The listener accepts connections until the test
// ends; the probe dials twice.
func serveTLS(t *testing.T, commonName string, sans []string, notAfter time.Time) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1234),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
		DNSNames:     sans,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{der},
			PrivateKey:  key,
		}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				if tc, ok := c.(*tls.Conn); ok {
					_ = tc.Handshake()
				}
			}(conn)
		}
	}()

	return ln.Addr().String()
}
