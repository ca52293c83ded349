package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestSetPriceSupersedesCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.setPrice(t, "uah", models.SessionIndividual, 1200)
	if first.Currency != "UAH" || first.State != models.PriceCurrent {
		t.Fatalf("unexpected first price: %+v", first)
	}
	second := f.setPrice(t, "UAH", models.SessionIndividual, 1500)
	couple := f.setPrice(t, "UAH", models.SessionCouple, 2000)

	got, err := f.prices.Resolve(ctx, f.therapistID, "UAH", models.SessionIndividual)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != second.ID || got.Amount != 1500 {
		t.Fatalf("resolved %+v, want the newest price", got)
	}

	all, err := f.prices.List(ctx, f.therapistID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	current := map[models.SessionType]int{}
	for _, p := range all {
		if p.State == models.PriceCurrent {
			current[p.SessionType]++
		}
	}
	if len(all) != 3 || current[models.SessionIndividual] != 1 || current[models.SessionCouple] != 1 {
		t.Fatalf("expected one current price per session type among 3 rows, got %+v", all)
	}

	old, err := f.prices.Historical(ctx, first.ID)
	if err != nil {
		t.Fatalf("historical: %v", err)
	}
	if old.State != models.PriceHistorical {
		t.Fatalf("superseded price is %s", old.State)
	}
	if got, err := f.prices.Resolve(ctx, f.therapistID, "UAH", models.SessionCouple); err != nil || got.ID != couple.ID {
		t.Fatalf("couple price: %+v %v", got, err)
	}
}

func TestResolveErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setPrice(t, "USD", models.SessionIndividual, 50)

	if _, err := f.prices.Resolve(ctx, f.therapistID, "EUR", models.SessionIndividual); !errors.Is(err, services.ErrPriceNotConfigured) {
		t.Fatalf("missing currency: got %v", err)
	}
	if _, err := f.prices.Resolve(ctx, f.therapistID, "USD", models.SessionCouple); !errors.Is(err, services.ErrPriceNotConfigured) {
		t.Fatalf("missing session type: got %v", err)
	}
	if _, err := f.prices.Resolve(ctx, f.therapistID, "DOLLARS", models.SessionIndividual); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("bad currency: got %v", err)
	}
	if _, err := f.prices.Resolve(ctx, f.therapistID, "USD", "group"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("bad session type: got %v", err)
	}
	if _, err := f.prices.Historical(ctx, uuid.New()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("unknown price id: got %v", err)
	}
}

func TestSetPriceValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  services.SetPriceRequest
	}{
		{"zero amount", services.SetPriceRequest{TherapistID: f.therapistID, Currency: "USD", SessionType: models.SessionIndividual, Amount: 0}},
		{"bad currency", services.SetPriceRequest{TherapistID: f.therapistID, Currency: "U$D", SessionType: models.SessionIndividual, Amount: 10}},
		{"bad session type", services.SetPriceRequest{TherapistID: f.therapistID, Currency: "USD", SessionType: "group", Amount: 10}},
		{"unknown therapist", services.SetPriceRequest{TherapistID: uuid.New(), Currency: "USD", SessionType: models.SessionIndividual, Amount: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.prices.SetPrice(ctx, tc.req); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
		})
	}
}

// staleReads hides the current price from FindCurrent, as a transaction
// that read before a concurrent SetPrice committed would see it.
type staleReads struct {
	services.TxManager
}

func (s staleReads) WithTx(ctx context.Context, fn func(ctx context.Context, repos services.Repositories) error) error {
	return s.TxManager.WithTx(ctx, func(ctx context.Context, repos services.Repositories) error {
		repos.Prices = noCurrentPrice{repos.Prices}
		return fn(ctx, repos)
	})
}

type noCurrentPrice struct {
	services.PriceRepository
}

func (noCurrentPrice) FindCurrent(context.Context, uuid.UUID, string, models.SessionType) (models.Price, error) {
	return models.Price{}, services.ErrNotFound
}

func TestSetPriceLosingFirstTimeRaceConflicts(t *testing.T) {
	f := newFixture(t)
	winner := f.setPrice(t, "USD", models.SessionIndividual, 50)

	racer := services.NewPriceResolver(staleReads{f.store}, time.Second, zap.NewNop())
	_, err := racer.SetPrice(context.Background(), services.SetPriceRequest{
		TherapistID: f.therapistID,
		Currency:    "USD",
		SessionType: models.SessionIndividual,
		Amount:      60,
	})
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}

	got, err := f.prices.Resolve(context.Background(), f.therapistID, "USD", models.SessionIndividual)
	if err != nil || got.ID != winner.ID {
		t.Fatalf("current price should still be the winner's, got %+v %v", got, err)
	}
}
