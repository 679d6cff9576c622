// Package rpc models the JSON-RPC 1.0 envelope carried over the
// datagram transport: the request/response bodies, the closed method
// vocabulary, and the key-or-number parameter resolution rule. Builders
// frame serialized envelopes through the datagram codec so every wire
// payload carries the checksum trailer.
package rpc
