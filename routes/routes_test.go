package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/anjiri1684/therapy_booking/database/memstore"
	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type testServer struct {
	app         *fiber.App
	store       *memstore.Store
	therapistID uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memstore.New()
	logger := zap.NewNop()
	therapistID := uuid.New()
	store.AddTherapist(models.Therapist{UserID: therapistID, TimeZone: "Europe/Kyiv"})

	app := fiber.New()
	deps := Deps{
		Coordinator: services.NewBookingCoordinator(store, nil, logger, services.BookingPolicy{
			CancellationCutoff: 24 * time.Hour,
			StorageTimeout:     time.Second,
		}),
		Generator:    services.NewScheduleGenerator(store, time.Second, logger),
		Prices:       services.NewPriceResolver(store, time.Second, logger),
		JWTSecret:    testSecret,
		TimeCapHours: 24,
		Logger:       logger,
	}
	TherapistRoutes(app, deps)
	BookingRoutes(app, deps)

	return &testServer{app: app, store: store, therapistID: therapistID}
}

func token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, out
}

func nextMonday(from time.Time) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	therapist := token(t, s.therapistID, "therapist")
	clientID, rivalID := uuid.New(), uuid.New()
	client, rival := token(t, clientID, "client"), token(t, rivalID, "client")

	code, body := s.do(t, http.MethodPut, "/api/v1/therapist/prices", therapist, fiber.Map{
		"currency": "USD", "session_type": "individual", "amount": 60,
	})
	if code != http.StatusOK {
		t.Fatalf("set price: %d %s", code, body)
	}

	monday := nextMonday(time.Now().UTC().AddDate(0, 0, 7))
	code, body = s.do(t, http.MethodPost, "/api/v1/therapist/schedule/week", therapist, fiber.Map{
		"week_start": monday.Format(time.DateOnly), "hours": []int{10},
	})
	if code != http.StatusCreated {
		t.Fatalf("generate week: %d %s", code, body)
	}

	query := url.Values{}
	query.Set("from", monday.Add(-24*time.Hour).Format(time.RFC3339))
	query.Set("to", monday.AddDate(0, 0, 8).Format(time.RFC3339))
	code, body = s.do(t, http.MethodGet, "/api/v1/therapists/"+s.therapistID.String()+"/slots?"+query.Encode(), "", nil)
	if code != http.StatusOK {
		t.Fatalf("list slots: %d %s", code, body)
	}
	var slots []models.Slot
	if err := json.Unmarshal(body, &slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	if len(slots) != 7 {
		t.Fatalf("listed %d slots, want 7", len(slots))
	}

	booking := fiber.Map{"slot_id": slots[0].ID.String(), "currency": "USD", "session_type": "individual"}
	code, body = s.do(t, http.MethodPost, "/api/v1/bookings", client, booking)
	if code != http.StatusCreated {
		t.Fatalf("book: %d %s", code, body)
	}
	var created struct {
		Order models.Order `json:"order"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	if created.Order.Amount != 60 || created.Order.ClientID != clientID {
		t.Fatalf("unexpected order: %+v", created.Order)
	}

	if code, body = s.do(t, http.MethodPost, "/api/v1/bookings", rival, booking); code != http.StatusConflict {
		t.Fatalf("second booking: %d %s", code, body)
	}

	orderPath := "/api/v1/bookings/" + created.Order.ID.String()
	if code, body = s.do(t, http.MethodGet, orderPath, client, nil); code != http.StatusOK {
		t.Fatalf("get booking as client: %d %s", code, body)
	}
	if code, _ = s.do(t, http.MethodGet, orderPath, rival, nil); code != http.StatusNotFound {
		t.Fatalf("get booking as stranger: %d", code)
	}

	if code, body = s.do(t, http.MethodPost, orderPath+"/cancel", client, nil); code != http.StatusOK {
		t.Fatalf("cancel: %d %s", code, body)
	}
	if code, _ = s.do(t, http.MethodPost, orderPath+"/cancel", client, nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("second cancel: %d", code)
	}
}

func TestAuthAndValidation(t *testing.T) {
	s := newTestServer(t)
	client := token(t, uuid.New(), "client")
	therapist := token(t, s.therapistID, "therapist")

	if code, _ := s.do(t, http.MethodPost, "/api/v1/bookings", "", fiber.Map{}); code != http.StatusBadRequest {
		t.Fatalf("missing token: %d", code)
	}
	if code, _ := s.do(t, http.MethodPost, "/api/v1/therapist/schedule/week", client, fiber.Map{}); code != http.StatusForbidden {
		t.Fatalf("client on therapist route: %d", code)
	}
	if code, _ := s.do(t, http.MethodPost, "/api/v1/bookings", client, fiber.Map{"slot_id": "nope"}); code != http.StatusBadRequest {
		t.Fatalf("invalid booking body: %d", code)
	}
	if code, _ := s.do(t, http.MethodPost, "/api/v1/therapist/schedule/week", therapist, fiber.Map{
		"week_start": "2030-01-01", "hours": []int{25},
	}); code != http.StatusBadRequest {
		t.Fatalf("hour out of range: %d", code)
	}

	slotsPath := "/api/v1/therapists/" + uuid.New().String() + "/slots"
	if code, _ := s.do(t, http.MethodGet, slotsPath, "", nil); code != http.StatusNotFound {
		t.Fatalf("unknown therapist slots: %d", code)
	}
	wide := url.Values{}
	wide.Set("from", "2030-01-01T00:00:00Z")
	wide.Set("to", "2030-04-02T00:00:00Z")
	widePath := "/api/v1/therapists/" + s.therapistID.String() + "/slots?" + wide.Encode()
	if code, _ := s.do(t, http.MethodGet, widePath, "", nil); code != http.StatusBadRequest {
		t.Fatalf("91 day slot range: %d", code)
	}

	pricePath := "/api/v1/therapists/" + s.therapistID.String() + "/price?currency=EUR"
	if code, _ := s.do(t, http.MethodGet, pricePath, "", nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("unconfigured price: %d", code)
	}
}
