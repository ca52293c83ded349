package database

import (
	"errors"
	"fmt"

	"github.com/anjiri1684/therapy_booking/services"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// lostRace reports whether err means another transaction got to the row
// first: it held the lock past lock_timeout, or postgres aborted us to let
// it proceed.
func lostRace(err error) bool {
	switch pgCode(err) {
	case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// conflictOr turns a lost race or a unique violation into ErrConflict and
// returns any other error unchanged.
func conflictOr(err error) error {
	if err == nil {
		return nil
	}
	if lostRace(err) || pgCode(err) == codeUniqueViolation {
		return fmt.Errorf("%w: %v", services.ErrConflict, err)
	}
	return err
}
