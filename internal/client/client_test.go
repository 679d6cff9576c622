package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/danmuck/numvault/internal/rpc"
	"github.com/danmuck/numvault/internal/rpc/datagram"
	"github.com/danmuck/numvault/internal/testutil/testlog"
)

// fakeServer answers each datagram with the framed payloads produced by
// respond, in order.
func fakeServer(t *testing.T, respond func(req rpc.Request) [][]byte) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, datagram.MaxDatagramSize)
		for {
			n, peer, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			body, sum, err := datagram.Split(buf[:n])
			if err != nil || !datagram.Verify(body, sum) {
				continue
			}
			req, err := rpc.ParseRequest(body)
			if err != nil {
				continue
			}
			for _, payload := range respond(req) {
				_, _ = conn.WriteToUDP(payload, peer)
			}
		}
	}()
	return conn.LocalAddr().String()
}

func mustEncode(t *testing.T, resp rpc.Response) []byte {
	t.Helper()
	raw, err := resp.Encode()
	if err != nil {
		t.Fatalf("encode response: %v", err)
	}
	return raw
}

func TestDoMatchesCorrelationID(t *testing.T) {
	testlog.Start(t)
	addr := fakeServer(t, func(req rpc.Request) [][]byte {
		return [][]byte{
			mustEncode(t, rpc.Success(req.ID+1)),
			mustEncode(t, rpc.SuccessValue("2.5", req.ID)),
		}
	})

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := c.Do(ctx, rpc.NewRequest(rpc.MethodRead, []string{"k"}, 7))
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if !resp.OK() || resp.ID != 7 || *resp.Result != "2.5" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDoDiscardsCorruptedResponses(t *testing.T) {
	testlog.Start(t)
	addr := fakeServer(t, func(req rpc.Request) [][]byte {
		good := mustEncode(t, rpc.Success(req.ID))
		bad := append([]byte(nil), good...)
		bad[0] ^= 0xFF
		return [][]byte{{0x01}, bad, good}
	})

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := c.Do(ctx, rpc.NewRequest(rpc.MethodDelete, []string{"k"}, 8))
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if !resp.OK() || resp.ID != 8 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDoHonorsContextDeadline(t *testing.T) {
	testlog.Start(t)
	addr := fakeServer(t, func(req rpc.Request) [][]byte {
		return nil
	})

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := c.Do(ctx, rpc.NewRequest(rpc.MethodRead, []string{"k"}, 9)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
