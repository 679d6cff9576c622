package server

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/numvault/internal/engine"
	"github.com/danmuck/numvault/internal/rpc"
	"github.com/danmuck/numvault/internal/store"
)

var errTimeout = errors.New("server: request processing timed out")

func failureResponse(err error, id uint64) rpc.Response {
	return rpc.Failure(clientMessage(err), id)
}

// clientMessage converts err into the short client-safe string carried
// in the response "error" field. The mapping is total over the error
// taxonomy; anything unrecognized is reported generically and the full
// detail stays in the server log.
func clientMessage(err error) string {
	var (
		missing       *engine.MissingParamError
		notFound      *store.NotFoundError
		updateMissing *store.UpdateMissingError
		corrupt       *store.CorruptValueError
	)
	switch {
	case errors.Is(err, errTimeout):
		return "server timeout."
	case errors.Is(err, rpc.ErrUnknownMethod):
		return "unknown method."
	case errors.Is(err, rpc.ErrParseEnvelope):
		return "failed to parse JSON attributes."
	case errors.As(err, &missing):
		return fmt.Sprintf("missing %d parameter.", missing.Index)
	case errors.Is(err, engine.ErrInvalidKeyParam):
		return "the first parameter must be a key name."
	case errors.Is(err, engine.ErrMissingNumber):
		return "the second parameter must be a decimal number."
	case errors.Is(err, store.ErrKeyExists):
		return "failed to create new key-value pair, the key entry already exists."
	case errors.As(err, &notFound):
		return fmt.Sprintf("[%q] not found.", notFound.Key)
	case errors.As(err, &updateMissing):
		return fmt.Sprintf("[%q] does not exist.", updateMissing.Key)
	case errors.As(err, &corrupt):
		return "failed to parse stored value into decimal number."
	case errors.Is(err, engine.ErrDivision):
		return "division does not yield a finite decimal."
	default:
		log.Error().Err(err).Msg("transaction failed with internal error")
		return "internal storage error."
	}
}
