package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/internal/notify"
	"restaurant-booking/internal/usecase"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const slotLength = time.Hour

// CompletionWorker marks confirmed bookings completed once their slot has
// ended in the restaurant timezone.
type CompletionWorker struct {
	bookings  repository.BookingRepository
	ledger    usecase.Ledger
	events    notify.EventPublisher
	loc       *time.Location
	now       func() time.Time
	scheduler gocron.Scheduler
	log       *zap.Logger
}

func NewCompletionWorker(
	repo *repository.Repository,
	ledger usecase.Ledger,
	events notify.EventPublisher,
	loc *time.Location,
	log *zap.Logger,
) *CompletionWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &CompletionWorker{
		bookings: repo.Booking,
		ledger:   ledger,
		events:   events,
		loc:      loc,
		now:      time.Now,
		log:      log.With(zap.String("worker", "completion")),
	}
}

// Start runs RunOnce every interval until Stop.
func (w *CompletionWorker) Start(every time.Duration) error {
	s, err := gocron.NewScheduler(gocron.WithLocation(w.loc))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), every)
			defer cancel()

			if _, err := w.RunOnce(ctx); err != nil {
				w.log.Error("Completion run failed", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule completion job: %w", err)
	}

	w.scheduler = s
	s.Start()
	w.log.Info("Completion worker started", zap.Duration("every", every))
	return nil
}

func (w *CompletionWorker) Stop() error {
	if w.scheduler == nil {
		return nil
	}
	return w.scheduler.Shutdown()
}

// RunOnce completes every finished booking and returns how many it moved.
func (w *CompletionWorker) RunOnce(ctx context.Context) (int, error) {
	now := w.now().In(w.loc)

	candidates, err := w.bookings.FindConfirmedUntil(ctx, entity.NormalizeDate(now))
	if err != nil {
		return 0, fmt.Errorf("find confirmed bookings: %w", err)
	}

	completed := 0
	for _, b := range candidates {
		if ctx.Err() != nil {
			return completed, ctx.Err()
		}
		if now.Before(w.slotEnd(b)) {
			continue
		}

		booking, err := w.ledger.CompleteBooking(ctx, b.ID)
		if errors.Is(err, usecase.ErrInvalidTransition) {
			// cancelled since we listed it
			continue
		}
		if err != nil {
			w.log.Error("Failed to complete booking", zap.Error(err), zap.String("booking_id", b.ID.String()))
			continue
		}

		completed++
		if err := w.events.Publish(ctx, notify.EventBookingCompleted, notify.BookingEvent{
			BookingID:        booking.ID.String(),
			RestaurantID:     booking.RestaurantID.String(),
			UserID:           booking.UserID.String(),
			Date:             entity.FormatDate(booking.Date),
			Time:             booking.Time.String(),
			Seats:            booking.Seats,
			Status:           string(booking.Status),
			ConfirmationCode: booking.ConfirmationCode,
		}); err != nil {
			w.log.Warn("Failed to publish completion", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		}
	}

	if completed > 0 {
		w.log.Info("Completed past bookings", zap.Int("count", completed))
	}
	return completed, nil
}

func (w *CompletionWorker) slotEnd(b *entity.Booking) time.Time {
	y, m, d := b.Date.Date()
	start := time.Date(y, m, d, b.Time.Hour(), b.Time.Minute(), 0, 0, w.loc)
	return start.Add(slotLength)
}
