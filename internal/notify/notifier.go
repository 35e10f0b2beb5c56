// Package notify delivers booking confirmations and lifecycle events to
// out-of-band consumers. Nothing here may fail a booking: callers log errors
// and move on.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Notification is what a diner receives once a booking is confirmed.
type Notification struct {
	BookingID        string  `json:"booking_id"`
	RestaurantName   string  `json:"restaurant_name"`
	Date             string  `json:"date"`
	Time             string  `json:"time"`
	Seats            int     `json:"seats"`
	TotalAmount      float64 `json:"total_amount"`
	ConfirmationCode string  `json:"confirmation_code"`
	RecipientEmail   string  `json:"recipient_email,omitempty"`
	RecipientName    string  `json:"recipient_name,omitempty"`
}

type Notifier interface {
	BookingConfirmed(ctx context.Context, n Notification) error
}

// LogNotifier only records the notification.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("notifier", "log"))}
}

func (n *LogNotifier) BookingConfirmed(ctx context.Context, msg Notification) error {
	n.log.Info("Booking confirmation",
		zap.String("booking_id", msg.BookingID),
		zap.String("restaurant", msg.RestaurantName),
		zap.String("date", msg.Date),
		zap.String("time", msg.Time),
		zap.Int("seats", msg.Seats),
		zap.String("confirmation_code", msg.ConfirmationCode),
		zap.String("recipient", msg.RecipientEmail),
	)
	return nil
}

// Multi fans a notification out to several notifiers and joins their errors.
type Multi []Notifier

func (m Multi) BookingConfirmed(ctx context.Context, msg Notification) error {
	var errs []error
	for _, n := range m {
		if err := n.BookingConfirmed(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
