package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSlotEvent = "slot:event"

// QueueNotifier hands events to asynq. The task id is the event key, so a
// transition announced twice is queued once.
type QueueNotifier struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewQueueNotifier(client *asynq.Client, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{client: client, logger: logger}
}

func NewSlotEventTask(event Event) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.TaskID(event.Key()),
		asynq.MaxRetry(5),
		asynq.Retention(24 * time.Hour),
	}
	return asynq.NewTask(TypeSlotEvent, b), opts, nil
}

func (q *QueueNotifier) Notify(ctx context.Context, event Event) {
	task, opts, err := NewSlotEventTask(event)
	if err != nil {
		q.logger.Error("encode slot event", zap.String("key", event.Key()), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		_, err := q.client.EnqueueContext(ctx, task, opts...)
		switch {
		case errors.Is(err, asynq.ErrTaskIDConflict):
			q.logger.Debug("slot event already queued", zap.String("key", event.Key()))
		case err != nil:
			q.logger.Error("enqueue slot event", zap.String("key", event.Key()), zap.Error(err))
		}
	}()
}

type Directory interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type Sender interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error
}

// NewSlotEventHandler emails the therapist and, when there is one, the
// client about a slot event.
func NewSlotEventHandler(users Directory, sender Sender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var event Event
		if err := json.Unmarshal(task.Payload(), &event); err != nil {
			logger.Error("invalid slot event payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if sender == nil {
			logger.Debug("email disabled, dropping slot event", zap.String("key", event.Key()))
			return nil
		}

		recipients := []uuid.UUID{event.TherapistID}
		if event.ClientID != nil {
			recipients = append(recipients, *event.ClientID)
		}

		subject, body := render(event)
		for _, id := range recipients {
			user, err := users.FindByID(ctx, id)
			if err != nil {
				logger.Warn("slot event recipient not found", zap.String("user_id", id.String()), zap.Error(err))
				continue
			}
			if err := sender.Send(ctx, user.FullName, user.Email, subject, body); err != nil {
				return err
			}
		}
		return nil
	}
}

func render(event Event) (string, string) {
	at := event.AvailableAtUTC.UTC().Format("Mon 02 Jan 2006 15:04 MST")
	switch event.Type {
	case EventBooked:
		return "Session booked", fmt.Sprintf("<h1>Session Booked</h1><p>The session on %s is booked.</p>", at)
	case EventCancelled:
		return "Session cancelled", fmt.Sprintf("<h1>Session Cancelled</h1><p>The session on %s was cancelled. The payment is eligible for a refund.</p>", at)
	case EventExpired:
		return "Open slot expired", fmt.Sprintf("<p>Your open slot on %s passed without a booking.</p>", at)
	case EventCompleted:
		return "Session closed", fmt.Sprintf("<p>The session on %s was marked %s.</p>", at, event.Status)
	case EventReminder:
		return "Reminder: your session starts in 1 hour", fmt.Sprintf("<h1>Session Reminder</h1><p>Your session starts at %s.</p>", at)
	}
	return string(event.Type), fmt.Sprintf("<p>Slot on %s is now %s.</p>", at, event.Status)
}

func NewWorker(opt asynq.RedisClientOpt, handler asynq.HandlerFunc) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSlotEvent, handler)
	return srv, mux
}
