package executor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"

	"github.com/volleyfire/volleyfire/internal/metrics"
)

// Classify maps a transport-level failure onto its reason bucket.
// Timeouts are checked first: a dial that times out is a timeout, not a
// connection error, because the per-request deadline is what fired.
func Classify(err error) metrics.TransportReason {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return metrics.ReasonTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return metrics.ReasonDNS
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return metrics.ReasonTLS
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return metrics.ReasonTLS
	}
	var authErr x509.UnknownAuthorityError
	if errors.As(err, &authErr) {
		return metrics.ReasonTLS
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return metrics.ReasonTLS
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return metrics.ReasonConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return metrics.ReasonConnection
	}

	return metrics.ReasonOther
}
