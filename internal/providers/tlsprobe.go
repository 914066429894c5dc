package providers

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"

	"github.com/GSMS-B/ProjectQR/internal/processing/security"
)

// TLSProber classifies a destination's TLS posture by performing a real
// handshake against port 443.
type TLSProber struct {
	port string
}

func NewTLSProber() *TLSProber {
	return &TLSProber{port: "443"}
}

func (p *TLSProber) CheckCertificate(ctx context.Context, domain string) (security.CertificateResult, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config:    &tls.Config{ServerName: domain},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(domain, p.port))
	if err == nil {
		result := security.CertificateResult{Status: security.CertValid}
		if tlsConn, ok := conn.(*tls.Conn); ok {
			if peers := tlsConn.ConnectionState().PeerCertificates; len(peers) > 0 {
				if orgs := peers[0].Issuer.Organization; len(orgs) > 0 {
					result.Issuer = orgs[0]
				}
				result.Expiry = peers[0].NotAfter
			}
		}
		_ = conn.Close()
		return result, nil
	}

	return classifyHandshakeError(err)
}

func classifyHandshakeError(err error) (security.CertificateResult, error) {
	// The host serves TLS but the chain or hostname is not acceptable.
	var certErr *tls.CertificateVerificationError
	var hostErr x509.HostnameError
	var unknownAuthority x509.UnknownAuthorityError
	var invalidCert x509.CertificateInvalidError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &unknownAuthority) || errors.As(err, &invalidCert) {
		return security.CertificateResult{Status: security.CertInvalid}, nil
	}

	// Nothing listening on 443: plaintext-only destination.
	if errors.Is(err, syscall.ECONNREFUSED) {
		return security.CertificateResult{Status: security.CertAbsent}, nil
	}

	// Timeouts, DNS failures and other network trouble say nothing about
	// the certificate itself.
	return security.CertificateResult{Status: security.CertUnknown}, err
}
