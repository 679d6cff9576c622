// Package datagram frames JSON payloads for the unreliable transport: a
// serialized body followed by a 4-byte little-endian CRC-32/IEEE
// checksum of that body. Receivers must verify the checksum before
// trusting the body bytes.
package datagram

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

const (
	// MaxDatagramSize is the largest datagram the transport delivers.
	MaxDatagramSize = 65536

	checksumSize = 4
)

var (
	ErrTruncated = errors.New("datagram: payload shorter than checksum trailer")
	ErrTooLarge  = errors.New("datagram: payload exceeds maximum datagram size")
)

// Encode appends the checksum trailer to body.
func Encode(body []byte) ([]byte, error) {
	if len(body)+checksumSize > MaxDatagramSize {
		return nil, ErrTooLarge
	}
	out := make([]byte, len(body)+checksumSize)
	copy(out, body)
	binary.LittleEndian.PutUint32(out[len(body):], crc32.ChecksumIEEE(body))
	return out, nil
}

// Split separates the trailing checksum from the body. It neither
// verifies the checksum nor parses the body as JSON.
func Split(raw []byte) (body []byte, sum uint32, err error) {
	if len(raw) < checksumSize {
		return nil, 0, ErrTruncated
	}
	cut := len(raw) - checksumSize
	return raw[:cut], binary.LittleEndian.Uint32(raw[cut:]), nil
}

// Verify recomputes the CRC-32 of body against the transmitted checksum.
func Verify(body []byte, sum uint32) bool {
	return crc32.ChecksumIEEE(body) == sum
}
