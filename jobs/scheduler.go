package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Schedule registers the background jobs on a new cron; the caller starts
// and stops it.
func Schedule(sweeper *ExpirySweeper, sweepSpec string, reminder *SessionReminder, reminderSpec string, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	if _, err := c.AddFunc(sweepSpec, sweeper.Run); err != nil {
		return nil, fmt.Errorf("schedule expiry sweep %q: %w", sweepSpec, err)
	}
	if reminder != nil {
		if _, err := c.AddFunc(reminderSpec, reminder.Run); err != nil {
			return nil, fmt.Errorf("schedule session reminders %q: %w", reminderSpec, err)
		}
	}

	logger.Info("background jobs scheduled",
		zap.String("sweep", sweepSpec),
		zap.String("reminders", reminderSpec),
	)
	return c, nil
}
