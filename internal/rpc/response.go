package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/danmuck/numvault/internal/rpc/datagram"
)

// resultSuccess is the canonical acknowledgment for operations that
// produce no value.
const resultSuccess = "success"

// Response is the JSON-RPC 1.0 response envelope. Exactly one of
// Result and Error is set; the constructors below are the only way the
// server builds one.
type Response struct {
	Result *string `json:"result"`
	Error  *string `json:"error"`
	ID     uint64  `json:"id"`
}

// Success acknowledges a void-result operation.
func Success(id uint64) Response {
	return SuccessValue(resultSuccess, id)
}

// SuccessValue carries the canonical decimal string produced by a read
// or arithmetic operation.
func SuccessValue(value string, id uint64) Response {
	return Response{Result: &value, ID: id}
}

// Failure carries a client-safe error message. Callers are responsible
// for mapping internal errors to a safe string before reaching here.
func Failure(message string, id uint64) Response {
	return Response{Error: &message, ID: id}
}

// OK reports whether the response is a success.
func (r Response) OK() bool {
	return r.Result != nil
}

// ParseResponse decodes body and enforces the exactly-one-of
// result/error contract.
func ParseResponse(body []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if (resp.Result == nil) == (resp.Error == nil) {
		return Response{}, ErrBadResponse
	}
	return resp, nil
}

// Encode serializes the response and frames it with the checksum trailer.
func (r Response) Encode() ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return datagram.Encode(payload)
}
