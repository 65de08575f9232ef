package tls

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/workloadapi"
	"go.uber.org/zap"
)

type TLSConfig struct {
	Enabled    bool   `envconfig:"TLS_ENABLED" default:"false"`
	SocketPath string `envconfig:"SPIRE_SOCKET_PATH" default:"unix:///run/spire/sockets/agent.sock"`
}

// Provider hands out mTLS configs backed by SPIRE workload certificates.
// A nil Provider means TLS is disabled.
type Provider struct {
	source *workloadapi.X509Source
}

func NewProvider(ctx context.Context, cfg TLSConfig, logger *zap.Logger) (*Provider, error) {
	if !cfg.Enabled {
		logger.Info("TLS is disabled")
		return nil, nil
	}

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

	return &Provider{source: source}, nil
}

// ServerConfig returns an mTLS server config. The source rotates
// certificates internally, so the config stays valid across renewals.
func (p *Provider) ServerConfig() *tls.Config {
	if p == nil {
		return nil
	}
	cfg := tlsconfig.MTLSServerConfig(p.source, p.source, tlsconfig.AuthorizeAny())
	cfg.MinVersion = tls.VersionTLS12
	return cfg
}

func (p *Provider) Close() error {
	if p == nil || p.source == nil {
		return nil
	}
	return p.source.Close()
}
