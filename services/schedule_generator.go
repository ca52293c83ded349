package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WeekTemplate opens the same local hours on each day of one week.
// An empty TimeZone falls back to the therapist's stored zone.
type WeekTemplate struct {
	TherapistID uuid.UUID
	TimeZone    string
	WeekStart   time.Time
	Hours       []int
}

type ScheduleGenerator struct {
	tx      TxManager
	timeout time.Duration
	logger  *zap.Logger
}

func NewScheduleGenerator(tx TxManager, timeout time.Duration, logger *zap.Logger) *ScheduleGenerator {
	return &ScheduleGenerator{tx: tx, timeout: timeout, logger: logger}
}

// GenerateWeek creates the week's slots that do not exist yet and returns
// only those. Running it again for the same week creates nothing.
func (g *ScheduleGenerator) GenerateWeek(ctx context.Context, tpl WeekTemplate) ([]models.Slot, error) {
	hours, err := normalizeHours(tpl.Hours)
	if err != nil {
		return nil, err
	}
	if tpl.WeekStart.Weekday() != time.Monday {
		return nil, validationf("week start %s is not a Monday", tpl.WeekStart.Format(time.DateOnly))
	}

	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	var created []models.Slot
	err = g.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		therapist, err := loadTherapist(ctx, repos.Therapists, tpl.TherapistID)
		if err != nil {
			return err
		}
		zone := tpl.TimeZone
		if zone == "" {
			zone = therapist.TimeZone
		}
		loc, err := loadZone(zone)
		if err != nil {
			return err
		}

		for _, at := range weekInstants(loc, tpl.WeekStart, hours) {
			slot := models.Slot{
				ID:             uuid.New(),
				TherapistID:    therapist.UserID,
				AvailableAtUTC: at,
				Status:         models.SlotAvailable,
			}
			ok, err := repos.Slots.CreateIfAbsent(ctx, &slot)
			if err != nil {
				return fmt.Errorf("create slot at %s: %w", at.Format(time.RFC3339), err)
			}
			if ok {
				created = append(created, slot)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("week generated",
		zap.String("therapist_id", tpl.TherapistID.String()),
		zap.String("week_start", tpl.WeekStart.Format(time.DateOnly)),
		zap.Int("created", len(created)),
	)
	return created, nil
}

// weekInstants lists the UTC instants of the requested local hours over
// seven days, in chronological order. Hours that do not exist locally are
// dropped.
func weekInstants(loc *time.Location, weekStart time.Time, hours []int) []time.Time {
	year, month, day := weekStart.Date()
	instants := make([]time.Time, 0, 7*len(hours))
	for offset := 0; offset < 7; offset++ {
		date := time.Date(year, month, day+offset, 0, 0, 0, 0, time.UTC)
		for _, hour := range hours {
			at, ok := utils.ResolveLocalHour(loc, date.Year(), date.Month(), date.Day(), hour)
			if !ok {
				continue
			}
			instants = append(instants, at)
		}
	}
	return instants
}

func normalizeHours(hours []int) ([]int, error) {
	if len(hours) == 0 {
		return nil, validationf("at least one hour is required")
	}
	seen := make(map[int]bool, len(hours))
	out := make([]int, 0, len(hours))
	for _, h := range hours {
		if h < 0 || h > 23 {
			return nil, validationf("hour %d is outside 0-23", h)
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	sort.Ints(out)
	return out, nil
}

func loadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, validationf("time zone is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, validationf("unknown time zone %q", name)
	}
	return loc, nil
}
