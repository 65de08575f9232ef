package relay

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
)

// Server accepts client connections and hands each one to a Session.
// The framing is newline-delimited JSON over TCP, optionally wrapped in
// mTLS.
type Server struct {
	addr        string
	hub         *Hub
	logger      *zap.Logger
	idleTimeout time.Duration
	tlsConfig   *tls.Config
}

func NewServer(addr string, hub *Hub, logger *zap.Logger, idleTimeout time.Duration, tlsConfig *tls.Config) *Server {
	return &Server{
		addr:        addr,
		hub:         hub,
		logger:      logger,
		idleTimeout: idleTimeout,
		tlsConfig:   tlsConfig,
	}
}

func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.logger.Info("Relay listening", zap.String("addr", s.addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		sess := NewSession(conn, s.hub, s.logger, s.idleTimeout)
		go sess.Run()
	}
}
