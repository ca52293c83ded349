package jobs

import (
	"testing"

	"github.com/anjiri1684/therapy_booking/database/memstore"
	"go.uber.org/zap"
)

func TestSchedule(t *testing.T) {
	store := memstore.New()
	sweeper := NewExpirySweeper(store, nil, zap.NewNop())
	reminder := NewSessionReminder(store, nil, zap.NewNop(), 0)

	c, err := Schedule(sweeper, "@every 1m", reminder, "*/5 * * * *", zap.NewNop())
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if n := len(c.Entries()); n != 2 {
		t.Fatalf("%d cron entries, want 2", n)
	}

	if _, err := Schedule(sweeper, "every minute", reminder, "*/5 * * * *", zap.NewNop()); err == nil {
		t.Fatalf("expected an invalid sweep schedule to fail")
	}
}
