package mtls

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/workloadapi"
	"go.uber.org/zap"
)

type Config struct {
	Enabled    bool   `envconfig:"TLS_ENABLED" default:"false"`
	SocketPath string `envconfig:"SPIRE_SOCKET_PATH" default:"unix:///run/spire/sockets/agent.sock"`
}

// Source serves mTLS certificates issued by the local SPIRE agent.
type Source struct {
	x509   *workloadapi.X509Source
	logger *zap.Logger
}

// NewSource connects to the SPIRE Workload API. It blocks until the first
// SVID is received or ctx is done.
func NewSource(ctx context.Context, cfg Config, logger *zap.Logger) (*Source, error) {
	source, err := workloadapi.NewX509Source(
		ctx,
		workloadapi.WithClientOptions(
			workloadapi.WithAddr(cfg.SocketPath),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create X509Source: %w", err)
	}

	logger.Info("SPIRE TLS configuration loaded",
		zap.String("socket_path", cfg.SocketPath),
		zap.Bool("mtls_enabled", true))

	return &Source{x509: source, logger: logger}, nil
}

// ServerConfig returns an mTLS server config. SPIRE rotates the SVID in the
// source, so the config never needs reloading.
func (s *Source) ServerConfig() *tls.Config {
	cfg := tlsconfig.MTLSServerConfig(s.x509, s.x509, tlsconfig.AuthorizeAny())
	cfg.MinVersion = tls.VersionTLS12
	return cfg
}

// Watch logs the current certificate status every interval until ctx is done.
func (s *Source) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		svid, err := s.x509.GetX509SVID()
		if err != nil {
			s.logger.Error("Failed to get X509 SVID", zap.Error(err))
			continue
		}

		s.logger.Info("Certificate status",
			zap.String("spiffe_id", svid.ID.String()),
			zap.Time("expiry", svid.Certificates[0].NotAfter),
			zap.Duration("ttl", time.Until(svid.Certificates[0].NotAfter)))
	}
}

func (s *Source) Close() error {
	return s.x509.Close()
}
