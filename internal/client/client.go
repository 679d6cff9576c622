// Package client sends framed JSON-RPC requests over UDP and matches
// checksum-verified responses by correlation id. The transport is
// unreliable and unordered; retry on loss stays with the caller.
package client

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/numvault/internal/rpc"
	"github.com/danmuck/numvault/internal/rpc/datagram"
)

type Client struct {
	conn *net.UDPConn
	log  zerolog.Logger
}

// Dial connects a UDP socket to the server address.
func Dial(serverAddr string) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", serverAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn: conn,
		log:  log.With().Str("component", "client").Logger(),
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends req and blocks until a verified response with the matching
// correlation id arrives or ctx expires. Responses that fail the
// checksum, fail the envelope contract, or carry another id are
// discarded.
func (c *Client) Do(ctx context.Context, req rpc.Request) (rpc.Response, error) {
	payload, err := req.Encode()
	if err != nil {
		return rpc.Response{}, err
	}
	if _, err := c.conn.Write(payload); err != nil {
		return rpc.Response{}, err
	}

	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return rpc.Response{}, err
	}

	buf := make([]byte, datagram.MaxDatagramSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return rpc.Response{}, ctx.Err()
			}
			return rpc.Response{}, err
		}

		body, sum, err := datagram.Split(buf[:n])
		if err != nil || !datagram.Verify(body, sum) {
			c.log.Warn().Msg("discarding datagram with bad framing or checksum")
			continue
		}
		resp, err := rpc.ParseResponse(body)
		if err != nil {
			c.log.Warn().Err(err).Msg("discarding malformed response envelope")
			continue
		}
		if resp.ID != req.ID {
			c.log.Debug().Uint64("got", resp.ID).Uint64("want", req.ID).
				Msg("discarding response for another request")
			continue
		}
		return resp, nil
	}
}
