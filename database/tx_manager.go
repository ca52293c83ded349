package database

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/therapy_booking/services"
	"gorm.io/gorm"
)

type GormTxManager struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormTxManager returns a manager whose transactions give up waiting on
// row locks after lockTimeout, so a writer blocked behind a competing slot
// update fails fast instead of queueing.
func NewGormTxManager(db *gorm.DB, lockTimeout time.Duration) *GormTxManager {
	return &GormTxManager{db: db, lockTimeout: lockTimeout}
}

func (m *GormTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos services.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(ctx, Repositories(tx))
	})
}

// Repositories binds every repository to the same handle.
func Repositories(db *gorm.DB) services.Repositories {
	return services.Repositories{
		Slots:      NewSlotRepository(db),
		Prices:     NewPriceRepository(db),
		Orders:     NewOrderRepository(db),
		Therapists: NewTherapistRepository(db),
		Users:      NewUserRepository(db),
	}
}
