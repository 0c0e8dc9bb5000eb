package certcheck

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"glpi-notify/internal/models"
)

const (
	defaultHTTPSPort = 443

	// bounds the worst-case run duration when appliances are unreachable
	dialTimeout = 60 * time.Second
)

var oidSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}

// ParseEndpoint extracts the host and port from an appliance URL. The
// endpoint must contain an https:// marker (case-insensitive); the host is
// everything after the marker up to the first '/' or ':', and the port
// defaults to 443 when not given explicitly.
func ParseEndpoint(endpoint string) (string, int, error) {
	lower := strings.ToLower(endpoint)
	idx := strings.Index(lower, "https://")
	if idx < 0 {
		return "", 0, fmt.Errorf("no https string could be found")
	}

	hostport := strings.SplitN(lower[idx+len("https://"):], "/", 2)[0]
	host, portStr, hasPort := strings.Cut(hostport, ":")
	if host == "" {
		return "", 0, fmt.Errorf("no hostname could be extracted")
	}

	port := defaultHTTPSPort
	if hasPort {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return "", 0, fmt.Errorf("invalid port %q", portStr)
		}
		port = p
	}
	return host, port, nil
}

// Probe opens a live TLS handshake against the endpoint and extracts the
// presented certificate's subject, issuer, serial, common name, SANs and
// expiration date. Every failure, from a malformed endpoint to a missing
// SAN extension, is reported as a structured non-success result; nothing
// escapes this boundary.
func Probe(endpoint string) models.ProbeResult {
	host, port, err := ParseEndpoint(endpoint)
	if err != nil {
		return failure(err)
	}

	// Two independent retrievals against the same endpoint: one for the
	// generic identity fields, one for name extraction. Both must succeed.
	cert, err := fetchCertificate(host, port)
	if err != nil {
		return failure(err)
	}

	rr := models.ProbeResult{
		Subject: cert.Subject.String(),
		Issuer:  cert.Issuer.String(),
		Serial:  cert.SerialNumber.String(),
	}

	named, err := fetchCertificate(host, port)
	if err != nil {
		return failure(err)
	}
	if named.Subject.CommonName != "" {
		rr.CommonNames = []string{named.Subject.CommonName}
	}
	if !hasExtension(named, oidSubjectAltName) {
		return failure(fmt.Errorf("no subject alternative name extension"))
	}
	rr.SANNames = named.DNSNames

	rr.Status = true
	rr.Expire = cert.NotAfter.UTC().Format("2006-01-02")
	return rr
}

// fetchCertificate returns the leaf certificate the endpoint presents.
// Verification is skipped on purpose: the point is reading the presented
// certificate, not trusting it.
func fetchCertificate(host string, port int) (*x509.Certificate, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp",
		net.JoinHostPort(host, strconv.Itoa(port)),
		&tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificate presented by %s", host)
	}
	return certs[0], nil
}

func hasExtension(cert *x509.Certificate, oid asn1.ObjectIdentifier) bool {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oid) {
			return true
		}
	}
	return false
}

func failure(err error) models.ProbeResult {
	return models.ProbeResult{
		Status: false,
		Expire: fmt.Sprintf("Error: %v", err),
	}
}
