package service

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/salao-caixa/caixa-backend/internal/domain"
)

// persistAttempts is the number of tries a storage call gets before failing
const persistAttempts = 2

// withRetry runs a storage call, retrying once on failure.
// Not-found and conflict errors are returned as-is.
// A failure that survives the retry is wrapped in a PersistenceError.
func withRetry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return err
		}
		if attempt < persistAttempts {
			log.Warn().
				Err(err).
				Str("op", op).
				Int("attempt", attempt).
				Msg("Storage call failed, retrying")
		}
	}

	log.Error().Err(err).Str("op", op).Msg("Storage call failed after retry")
	return &domain.PersistenceError{Op: op, Err: err}
}
