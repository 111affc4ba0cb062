// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/config"
)

// SetupTLS loads the configured certificate pair. It returns nil when the
// server should speak plain HTTP, typically behind a reverse proxy.
func SetupTLS(cfg *config.Config) (*tls.Config, error) {
	if !cfg.Server.TLS.Enabled() {
		return nil, nil
	}

	certFile := cfg.Server.TLS.CertFile
	keyFile := cfg.Server.TLS.KeyFile

	// Validate that both files are provided
	if certFile == "" || keyFile == "" {
		return nil, config.ErrIncompleteTLS
	}

	if _, err := os.Stat(certFile); err != nil {
		return nil, fmt.Errorf("certificate file not found: %w", err)
	}
	if _, err := os.Stat(keyFile); err != nil {
		return nil, fmt.Errorf("key file not found: %w", err)
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	slog.Info("Using certificate", "cert", certFile, "key", keyFile)
	logCertificate(&cert)

	return createTLSConfig(&cert), nil
}

// logCertificate logs the fingerprint and warns about a certificate that
// expires within 30 days.
func logCertificate(cert *tls.Certificate) {
	if cert.Leaf == nil {
		return
	}
	fingerprint := sha256.Sum256(cert.Leaf.Raw)
	slog.Info("Certificate fingerprint", "sha256", hex.EncodeToString(fingerprint[:]))

	if time.Until(cert.Leaf.NotAfter) < 30*24*time.Hour {
		slog.Warn("Certificate expires soon", "not_after", cert.Leaf.NotAfter)
	}
}

// createTLSConfig creates a TLS config with the given certificate.
func createTLSConfig(cert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
	}
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.TLSServer.Serve(e.TLSListener)
}
