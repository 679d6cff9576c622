package rpc

import "errors"

var (
	ErrParseEnvelope = errors.New("rpc: malformed request envelope")
	ErrUnknownMethod = errors.New("rpc: unknown method")
	ErrBadResponse   = errors.New("rpc: malformed response envelope")
)
