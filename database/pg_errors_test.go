package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/anjiri1684/therapy_booking/services"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestLostRace(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, true},
		{"wrapped lock timeout", fmt.Errorf("update slot: %w", &pgconn.PgError{Code: "55P03"}), true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"connection refused", errors.New("dial tcp: connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := lostRace(tc.err); got != tc.want {
				t.Fatalf("lostRace(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestConflictOr(t *testing.T) {
	if err := conflictOr(nil); err != nil {
		t.Fatalf("nil became %v", err)
	}

	for _, code := range []string{"23505", "55P03", "40001", "40P01"} {
		err := conflictOr(&pgconn.PgError{Code: code})
		if !errors.Is(err, services.ErrConflict) {
			t.Fatalf("code %s: got %v, want ErrConflict", code, err)
		}
	}

	boom := &pgconn.PgError{Code: "42P01"}
	err := conflictOr(boom)
	if errors.Is(err, services.ErrConflict) || !errors.Is(err, boom) {
		t.Fatalf("undefined table should pass through, got %v", err)
	}
}
