package usecase

import (
	"restaurant-booking/internal/data/cache"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/internal/notify"
	"restaurant-booking/pkg/utils"

	"go.uber.org/zap"
)

// Deps are the collaborators the services share. Nil fields fall back to
// in-process implementations.
type Deps struct {
	Locker    cache.SlotLocker
	Drafts    cache.DraftStore
	Notifier  notify.Notifier
	Publisher notify.EventPublisher
}

type Service struct {
	Ledger     Ledger
	Restaurant RestaurantService
	Booking    BookingService
}

func NewService(repo *repository.Repository, deps Deps, config *utils.Config, log *zap.Logger) *Service {
	if deps.Locker == nil {
		deps.Locker = cache.NewMemoryLocker()
	}
	if deps.Drafts == nil {
		deps.Drafts = cache.NewMemoryDraftStore(config.Booking.DraftTTL)
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewLogNotifier(log)
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.NopPublisher{}
	}

	ledger := NewLedger(repo, deps.Locker, log)

	return &Service{
		Ledger:     ledger,
		Restaurant: NewRestaurantService(repo, ledger, log),
		Booking:    NewBookingService(ledger, repo, deps.Drafts, deps.Notifier, deps.Publisher, config, log),
	}
}
