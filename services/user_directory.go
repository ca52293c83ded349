package services

import (
	"context"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/google/uuid"
)

// UserDirectory resolves notification recipients, one short read-only
// unit of work per lookup.
type UserDirectory struct {
	tx      TxManager
	timeout time.Duration
}

func NewUserDirectory(tx TxManager, timeout time.Duration) *UserDirectory {
	return &UserDirectory{tx: tx, timeout: timeout}
}

func (d *UserDirectory) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	var user models.User
	err := d.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		user, err = repos.Users.FindByID(ctx, id)
		return err
	})
	return user, err
}
