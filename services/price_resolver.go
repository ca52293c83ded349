package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PriceResolver struct {
	tx      TxManager
	timeout time.Duration
	logger  *zap.Logger
}

func NewPriceResolver(tx TxManager, timeout time.Duration, logger *zap.Logger) *PriceResolver {
	return &PriceResolver{tx: tx, timeout: timeout, logger: logger}
}

// Resolve returns the single current price for the combination.
func (r *PriceResolver) Resolve(ctx context.Context, therapistID uuid.UUID, currency string, sessionType models.SessionType) (models.Price, error) {
	currency, err := normalizeCurrency(currency)
	if err != nil {
		return models.Price{}, err
	}
	if !sessionType.Valid() {
		return models.Price{}, validationf("unknown session type %q", sessionType)
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var price models.Price
	err = r.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		price, err = currentPrice(ctx, repos.Prices, therapistID, currency, sessionType)
		return err
	})
	return price, err
}

// Historical loads any price row, current or not. It exists to explain
// orders that were placed against a since-superseded price.
func (r *PriceResolver) Historical(ctx context.Context, priceID uuid.UUID) (models.Price, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var price models.Price
	err := r.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		price, err = repos.Prices.FindByID(ctx, priceID)
		return err
	})
	return price, err
}

func (r *PriceResolver) List(ctx context.Context, therapistID uuid.UUID) ([]models.Price, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var prices []models.Price
	err := r.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		prices, err = repos.Prices.ListByTherapist(ctx, therapistID)
		return err
	})
	return prices, err
}

type SetPriceRequest struct {
	TherapistID uuid.UUID
	Currency    string
	SessionType models.SessionType
	Amount      float64
	Slug        *string
}

// SetPrice makes a new current price, retiring the one it supersedes.
func (r *PriceResolver) SetPrice(ctx context.Context, req SetPriceRequest) (models.Price, error) {
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return models.Price{}, err
	}
	if !req.SessionType.Valid() {
		return models.Price{}, validationf("unknown session type %q", req.SessionType)
	}
	if req.Amount <= 0 {
		return models.Price{}, validationf("amount must be positive")
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	price := models.Price{
		ID:          uuid.New(),
		TherapistID: req.TherapistID,
		Currency:    currency,
		SessionType: req.SessionType,
		Amount:      req.Amount,
		State:       models.PriceCurrent,
		Slug:        req.Slug,
	}
	err = r.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		if err := requireTherapist(ctx, repos.Therapists, req.TherapistID); err != nil {
			return err
		}

		existing, err := repos.Prices.FindCurrent(ctx, req.TherapistID, currency, req.SessionType)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return fmt.Errorf("load current price: %w", err)
		default:
			retired, err := repos.Prices.Retire(ctx, existing.ID)
			if err != nil {
				return fmt.Errorf("retire price %s: %w", existing.ID, err)
			}
			if !retired {
				return conflictf("price %s was superseded concurrently", existing.ID)
			}
		}

		if err := repos.Prices.Create(ctx, &price); err != nil {
			return fmt.Errorf("create price: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Price{}, err
	}

	r.logger.Info("price set",
		zap.String("therapist_id", price.TherapistID.String()),
		zap.String("currency", price.Currency),
		zap.String("session_type", string(price.SessionType)),
		zap.Float64("amount", price.Amount),
	)
	return price, nil
}

func currentPrice(ctx context.Context, prices PriceRepository, therapistID uuid.UUID, currency string, sessionType models.SessionType) (models.Price, error) {
	price, err := prices.FindCurrent(ctx, therapistID, currency, sessionType)
	if errors.Is(err, ErrNotFound) {
		return models.Price{}, fmt.Errorf("%w for %s/%s", ErrPriceNotConfigured, currency, sessionType)
	}
	if err != nil {
		return models.Price{}, fmt.Errorf("resolve price: %w", err)
	}
	return price, nil
}

func normalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return "", validationf("currency must be a 3-letter code")
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", validationf("currency must be a 3-letter code")
		}
	}
	return currency, nil
}

func requireTherapist(ctx context.Context, therapists TherapistRepository, id uuid.UUID) error {
	_, err := loadTherapist(ctx, therapists, id)
	return err
}

func loadTherapist(ctx context.Context, therapists TherapistRepository, id uuid.UUID) (models.Therapist, error) {
	if id == uuid.Nil {
		return models.Therapist{}, validationf("therapist id is required")
	}
	therapist, err := therapists.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return models.Therapist{}, validationf("unknown therapist %s", id)
	}
	if err != nil {
		return models.Therapist{}, fmt.Errorf("load therapist: %w", err)
	}
	return therapist, nil
}
