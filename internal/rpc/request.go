package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/danmuck/numvault/internal/rpc/datagram"
)

// ProtocolVersion is the JSON-RPC version tag every request carries.
// Only its presence is checked on receipt; the value is not otherwise
// validated.
const ProtocolVersion = "1.0"

// Request is the JSON-RPC 1.0 request envelope.
type Request struct {
	JSONRPC string   `json:"jsonrpc"`
	Method  string   `json:"method"`
	Params  []string `json:"params"`
	ID      uint64   `json:"id"`
}

func NewRequest(m Method, params []string, id uint64) Request {
	return Request{
		JSONRPC: ProtocolVersion,
		Method:  m.String(),
		Params:  params,
		ID:      id,
	}
}

// ParseRequest decodes body into the request envelope and checks its
// shape. The method string and parameters are resolved separately so a
// caller can still reach the correlation id of a request whose method
// is unknown.
func ParseRequest(body []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrParseEnvelope, err)
	}
	if req.JSONRPC == "" || req.Method == "" {
		return Request{}, ErrParseEnvelope
	}
	return req, nil
}

// RequestID recovers only the correlation id from body. The timeout
// fallback uses it after abandoning the full pipeline; it fails when
// the id cannot be extracted, in which case no response is owed.
func RequestID(body []byte) (uint64, bool) {
	var probe struct {
		ID *uint64 `json:"id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.ID == nil {
		return 0, false
	}
	return *probe.ID, true
}

// ParsedMethod resolves the raw method string against the closed
// vocabulary.
func (r Request) ParsedMethod() (Method, error) {
	return ParseMethod(r.Method)
}

// ResolvedParams maps the raw parameter strings through the key-or-number
// resolution rule.
func (r Request) ResolvedParams() []Param {
	return ResolveParams(r.Params)
}

// Encode serializes the request and frames it with the checksum trailer.
func (r Request) Encode() ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return datagram.Encode(payload)
}
