// Package server is the datagram-facing dispatcher: it binds the UDP
// socket, verifies each datagram's checksum trailer, and drives the
// request/transaction/response pipeline under a per-datagram timeout.
// Malformed or corrupted datagrams are dropped without a response.
package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/numvault/internal/engine"
	"github.com/danmuck/numvault/internal/observability"
	"github.com/danmuck/numvault/internal/rpc"
	"github.com/danmuck/numvault/internal/rpc/datagram"
	"github.com/danmuck/numvault/internal/store"
)

// Config carries the dispatcher's runtime settings.
type Config struct {
	ListenAddr      string
	AdminListenAddr string
	DataDir         string
	DefaultToken    string
	RequestTimeout  time.Duration
	ReadBufferSize  int
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":9999",
		AdminListenAddr: "",
		DataDir:         "/tmp/numvault",
		DefaultToken:    "default",
		RequestTimeout:  5 * time.Second,
		ReadBufferSize:  datagram.MaxDatagramSize,
	}
}

type outcome struct {
	resp rpc.Response
	send bool
}

// Server owns the UDP socket and shares the connection pool read-only
// across all in-flight datagram tasks.
type Server struct {
	cfg     Config
	pool    *store.Pool
	log     zerolog.Logger
	started time.Time

	addr  net.Addr
	ready chan struct{}

	// invoke runs one verified request body through the pipeline.
	// Swapped out in tests to exercise the timeout path.
	invoke func(body []byte) outcome
}

func New(cfg Config, pool *store.Pool) *Server {
	s := &Server{
		cfg:     cfg,
		pool:    pool,
		log:     log.With().Str("component", "server").Logger(),
		started: time.Now(),
		ready:   make(chan struct{}),
	}
	s.invoke = s.process
	return s
}

// Ready is closed once the UDP socket is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address; valid after Ready.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Run binds the socket and serves until ctx is cancelled. Each datagram
// is handled on its own goroutine; there is no ordering guarantee
// between datagrams and the store's single-key atomicity is the only
// serialization point.
func (s *Server) Run(ctx context.Context) error {
	laddr, err := net.ResolveUDPAddr("udp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	observability.RegisterMetrics()
	s.addr = conn.LocalAddr()
	close(s.ready)
	s.log.Info().
		Str("listen", s.addr.String()).
		Str("data_dir", s.cfg.DataDir).
		Msg("udp server listening")

	if s.cfg.AdminListenAddr != "" {
		go s.serveAdmin(ctx)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, s.cfg.ReadBufferSize)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Info().Msg("udp server stopped")
				return nil
			}
			s.log.Error().Err(err).Msg("udp receive failed")
			continue
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		go s.handle(conn, peer, payload)
	}
}

// handle walks one datagram through the state machine:
// received, decoded, checksum verified, processing, responded,
// exiting to a silent drop on decode or checksum failure and to the
// timeout fallback when processing outlives the deadline.
func (s *Server) handle(conn *net.UDPConn, peer *net.UDPAddr, payload []byte) {
	observability.RecordDatagram()

	body, sum, err := datagram.Split(payload)
	if err != nil {
		observability.RecordDrop("malformed")
		s.log.Debug().Str("peer", peer.String()).Msg("dropping malformed datagram")
		return
	}
	if !datagram.Verify(body, sum) {
		// Fail closed: corrupted or unauthenticated traffic gets no
		// response, so a sender cannot probe server liveness.
		observability.RecordDrop("checksum")
		s.log.Warn().Str("peer", peer.String()).Msg("dropping datagram with checksum mismatch")
		return
	}

	done := make(chan outcome, 1)
	go func() {
		done <- s.invoke(body)
	}()

	timer := time.NewTimer(s.cfg.RequestTimeout)
	defer timer.Stop()

	var out outcome
	var status string
	select {
	case out = <-done:
		if !out.send {
			observability.RecordDrop("unparseable")
			return
		}
		status = "ok"
		if !out.resp.OK() {
			status = "error"
		}
	case <-timer.C:
		// The pipeline is abandoned, not interrupted; store operations
		// are atomic and synchronous so nothing is left half-applied.
		id, ok := rpc.RequestID(body)
		if !ok {
			observability.RecordDrop("timeout")
			s.log.Error().Str("peer", peer.String()).
				Msg("request timed out and its correlation id is unrecoverable")
			return
		}
		out = outcome{resp: failureResponse(errTimeout, id), send: true}
		status = "timeout"
		s.log.Warn().Uint64("id", id).Str("peer", peer.String()).
			Msg("request processing timed out")
	}

	raw, err := out.resp.Encode()
	if err != nil {
		s.log.Error().Err(err).Uint64("id", out.resp.ID).Msg("failed to encode response")
		return
	}
	if _, err := conn.WriteToUDP(raw, peer); err != nil {
		// The transport is unreliable by contract; the client retries.
		observability.RecordSendFailure()
		s.log.Error().Err(err).Uint64("id", out.resp.ID).Str("peer", peer.String()).
			Msg("failed to send response")
		return
	}
	observability.RecordResponse(status)
	s.log.Info().Uint64("id", out.resp.ID).Str("peer", peer.String()).Str("status", status).
		Msg("response sent")
}

// process is the full pipeline for one checksum-verified body.
func (s *Server) process(body []byte) outcome {
	req, err := rpc.ParseRequest(body)
	if err != nil {
		id, ok := rpc.RequestID(body)
		if !ok {
			s.log.Debug().Msg("dropping unparseable request without a correlation id")
			return outcome{}
		}
		return outcome{resp: failureResponse(err, id), send: true}
	}

	m, err := req.ParsedMethod()
	if err != nil {
		return outcome{resp: failureResponse(err, req.ID), send: true}
	}

	st, err := s.pool.User([]byte(s.cfg.DefaultToken))
	if err != nil {
		return outcome{resp: failureResponse(err, req.ID), send: true}
	}

	start := time.Now()
	result, err := engine.Execute(st, m, req.ResolvedParams())
	observability.ObserveTransaction(m.String(), time.Since(start))
	if err != nil {
		return outcome{resp: failureResponse(err, req.ID), send: true}
	}
	if result == nil {
		return outcome{resp: rpc.Success(req.ID), send: true}
	}
	return outcome{resp: rpc.SuccessValue(*result, req.ID), send: true}
}
