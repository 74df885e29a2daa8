package service

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"syscall"
)

// Network error codes reported to clients when the target never answered.
const (
	CodeConnRefused = "ECONNREFUSED"
	CodeNotFound    = "ENOTFOUND"
	CodeTimeout     = "ETIMEDOUT"
	CodeConnReset   = "ECONNRESET"
	CodeTLS         = "ERR_TLS"
	CodeNetwork     = "ERR_NETWORK"
)

func classifyNetworkError(err error) string {
	var (
		dnsErr      *net.DNSError
		netErr      net.Error
		unknownCA   x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		certErr     x509.CertificateInvalidError
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
	)

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return CodeConnRefused
	case errors.As(err, &dnsErr) && !dnsErr.IsTimeout:
		return CodeNotFound
	case errors.As(err, &verifyErr), errors.As(err, &unknownCA), errors.As(err, &hostnameErr),
		errors.As(err, &certErr), errors.As(err, &recordErr):
		return CodeTLS
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return CodeTimeout
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return CodeConnReset
	default:
		return CodeNetwork
	}
}
