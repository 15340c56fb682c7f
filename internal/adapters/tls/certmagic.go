// Package tls serves the ROI API over HTTPS with certificates managed
// by CertMagic. Challenges run over DNS-01 against Azure DNS, so the
// grid service never needs port 80 reachable from the outside.
package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/libdns/azure"
)

// Config holds TLS configuration for the API server.
type Config struct {
	Enabled  bool
	Domains  []string
	Email    string
	CacheDir string
	Staging  bool // Let's Encrypt staging CA
	DNS      DNSConfig
}

// DNSConfig identifies the Azure DNS zone used for DNS-01 challenges.
type DNSConfig struct {
	SubscriptionID    string
	ResourceGroupName string
	ClientID          string // User Assigned Managed Identity client ID (optional)
}

// Server serves the given handler, with automatic TLS when enabled.
type Server struct {
	config    Config
	handler   http.Handler
	logger    *slog.Logger
	tlsConfig *tls.Config
}

// NewServer builds a server for the handler. With TLS disabled the
// returned server speaks plain HTTP and no ACME setup happens.
func NewServer(cfg Config, handler http.Handler, logger *slog.Logger) (*Server, error) {
	s := &Server{
		config:  cfg,
		handler: handler,
		logger:  logger,
	}
	if !cfg.Enabled {
		return s, nil
	}

	if len(cfg.Domains) == 0 {
		return nil, fmt.Errorf("TLS enabled but no domains specified")
	}
	if cfg.Email == "" {
		return nil, fmt.Errorf("TLS enabled but no email specified")
	}

	tlsConfig, err := manageDomains(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring TLS: %w", err)
	}
	s.tlsConfig = tlsConfig
	return s, nil
}

// manageDomains configures the CertMagic defaults for the service
// domains and returns the resulting TLS config.
func manageDomains(cfg Config) (*tls.Config, error) {
	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = cfg.Email
	if cfg.Staging {
		certmagic.DefaultACME.CA = certmagic.LetsEncryptStagingCA
	}
	if cfg.CacheDir != "" {
		certmagic.Default.Storage = &certmagic.FileStorage{Path: cfg.CacheDir}
	}

	// Empty ClientId selects the System Assigned Managed Identity.
	certmagic.DefaultACME.DNS01Solver = &certmagic.DNS01Solver{
		DNSManager: certmagic.DNSManager{
			DNSProvider: &azure.Provider{
				SubscriptionId:    cfg.DNS.SubscriptionID,
				ResourceGroupName: cfg.DNS.ResourceGroupName,
				ClientId:          cfg.DNS.ClientID,
			},
		},
	}

	return certmagic.TLS(cfg.Domains)
}

// ListenAndServe serves the ROI API on addr, over HTTPS when TLS is
// enabled and plain HTTP otherwise.
func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if !s.config.Enabled {
		s.logger.Info("serving ROI API over HTTP (TLS disabled)", "address", addr)
		return server.ListenAndServe()
	}

	s.logger.Info("serving ROI API over HTTPS",
		"address", addr,
		"domains", s.config.Domains,
	)
	server.TLSConfig = s.tlsConfig
	return server.ListenAndServeTLS("", "")
}

// Shutdown is a no-op: CertMagic cleans up after itself and the HTTP
// listener is torn down by the process exit path.
func (s *Server) Shutdown(_ context.Context) error {
	return nil
}

// TLSConfig returns the TLS configuration, nil when TLS is disabled.
func (s *Server) TLSConfig() *tls.Config {
	return s.tlsConfig
}

// ManageCertificates obtains certificates for the configured domains
// up front instead of on the first handshake.
func (s *Server) ManageCertificates(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.logger.Info("obtaining certificates", "domains", s.config.Domains)
	if err := certmagic.ManageSync(ctx, s.config.Domains); err != nil {
		return fmt.Errorf("managing certificates: %w", err)
	}

	s.logger.Info("certificates obtained")
	return nil
}
