package usecase

import (
	"context"
	"fmt"
	"time"

	"restaurant-booking/internal/data/cache"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/internal/dto/request"
	"restaurant-booking/internal/dto/response"
	"restaurant-booking/internal/notify"
	"restaurant-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const qrCodeSize = 256

// BookingService is the facade clients talk to: it keeps each user's draft,
// prices it, and hands commits to the Ledger.
type BookingService interface {
	// Draft
	GetDraft(ctx context.Context, userID uuid.UUID) (*response.DraftResponse, error)
	SelectRestaurant(ctx context.Context, userID, restaurantID uuid.UUID) (*response.DraftResponse, error)
	SelectDate(ctx context.Context, userID uuid.UUID, date time.Time) (*response.DraftResponse, error)
	SelectTime(ctx context.Context, userID uuid.UUID, t entity.ClockTime) (*response.DraftResponse, error)
	SelectSeats(ctx context.Context, userID uuid.UUID, seats int) (*response.DraftResponse, error)
	UpdateDraft(ctx context.Context, userID uuid.UUID, req *request.UpdateDraftRequest) (*response.DraftResponse, error)
	ClearDraft(ctx context.Context, userID uuid.UUID) error
	ConfirmDraft(ctx context.Context, userID uuid.UUID, req *request.ConfirmDraftRequest) (*response.BookingResponse, error)

	// Bookings
	CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingByCode(ctx context.Context, code string) (*response.BookingResponse, error)
	GetBookingQRCode(ctx context.Context, code string) ([]byte, error)
	CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error)

	// Admin
	CompleteBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)
}

type bookingService struct {
	ledger      Ledger
	restaurants repository.RestaurantRepository
	drafts      cache.DraftStore
	notifier    notify.Notifier
	events      notify.EventPublisher
	config      utils.BookingConfig
	loc         *time.Location
	now         func() time.Time
	log         *zap.Logger
}

func NewBookingService(
	ledger Ledger,
	repo *repository.Repository,
	drafts cache.DraftStore,
	notifier notify.Notifier,
	events notify.EventPublisher,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		ledger:      ledger,
		restaurants: repo.Restaurant,
		drafts:      drafts,
		notifier:    notifier,
		events:      events,
		config:      config.Booking,
		loc:         config.App.Location(),
		now:         time.Now,
		log:         log.With(zap.String("service", "booking")),
	}
}

// ==================== DRAFT ====================

func (s *bookingService) GetDraft(ctx context.Context, userID uuid.UUID) (*response.DraftResponse, error) {
	draft, err := s.loadDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.draftResponse(ctx, draft)
}

func (s *bookingService) SelectRestaurant(ctx context.Context, userID, restaurantID uuid.UUID) (*response.DraftResponse, error) {
	return s.editDraft(ctx, userID, func(d *entity.Draft) error {
		return s.applyRestaurant(ctx, d, restaurantID)
	})
}

func (s *bookingService) SelectDate(ctx context.Context, userID uuid.UUID, date time.Time) (*response.DraftResponse, error) {
	return s.editDraft(ctx, userID, func(d *entity.Draft) error {
		return s.applyDate(d, date)
	})
}

func (s *bookingService) SelectTime(ctx context.Context, userID uuid.UUID, t entity.ClockTime) (*response.DraftResponse, error) {
	return s.editDraft(ctx, userID, func(d *entity.Draft) error {
		return s.applyTime(ctx, d, t)
	})
}

func (s *bookingService) SelectSeats(ctx context.Context, userID uuid.UUID, seats int) (*response.DraftResponse, error) {
	return s.editDraft(ctx, userID, func(d *entity.Draft) error {
		return s.applySeats(d, seats)
	})
}

// UpdateDraft applies the present fields in selection order: restaurant,
// date, time, seats.
func (s *bookingService) UpdateDraft(ctx context.Context, userID uuid.UUID, req *request.UpdateDraftRequest) (*response.DraftResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update draft validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s: %w", utils.FormatValidationErrors(errs), ErrInvalidInput)
	}

	return s.editDraft(ctx, userID, func(d *entity.Draft) error {
		if req.RestaurantID != nil {
			id, err := uuid.Parse(*req.RestaurantID)
			if err != nil {
				return fmt.Errorf("invalid restaurant id %s: %w", *req.RestaurantID, ErrInvalidInput)
			}
			if err := s.applyRestaurant(ctx, d, id); err != nil {
				return err
			}
		}
		if req.Date != nil {
			date, err := entity.ParseDate(*req.Date)
			if err != nil {
				return fmt.Errorf("%v: %w", err, ErrInvalidInput)
			}
			if err := s.applyDate(d, date); err != nil {
				return err
			}
		}
		if req.Time != nil {
			t, err := entity.ParseClock(*req.Time)
			if err != nil {
				return fmt.Errorf("%v: %w", err, ErrInvalidSlot)
			}
			if err := s.applyTime(ctx, d, t); err != nil {
				return err
			}
		}
		if req.Seats != nil {
			if err := s.applySeats(d, *req.Seats); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *bookingService) ClearDraft(ctx context.Context, userID uuid.UUID) error {
	if err := s.drafts.Delete(ctx, userID); err != nil {
		s.log.Error("Failed to clear draft", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// ConfirmDraft commits the draft and clears it. The draft survives a failed
// commit so the user can pick another slot.
func (s *bookingService) ConfirmDraft(ctx context.Context, userID uuid.UUID, req *request.ConfirmDraftRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Confirm draft validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s: %w", utils.FormatValidationErrors(errs), ErrInvalidInput)
	}

	draft, err := s.loadDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !draft.Complete() {
		return nil, fmt.Errorf("draft needs restaurant, date, time and seats: %w", ErrInvalidInput)
	}

	booking, err := s.commit(ctx, commitInput{
		userID:        userID,
		restaurantID:  *draft.RestaurantID,
		date:          *draft.Date,
		time:          *draft.Time,
		seats:         draft.Seats,
		paymentStatus: entity.PaymentStatus(req.PaymentStatus),
		contactName:   req.ContactName,
		contactEmail:  req.ContactEmail,
	})
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, userID); err != nil {
		s.log.Warn("Failed to clear confirmed draft", zap.Error(err), zap.String("user_id", userID.String()))
	}

	return booking, nil
}

func (s *bookingService) loadDraft(ctx context.Context, userID uuid.UUID) (*entity.Draft, error) {
	draft, err := s.drafts.Get(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load draft", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if draft == nil {
		draft = entity.NewDraft(userID)
	}
	return draft, nil
}

func (s *bookingService) editDraft(ctx context.Context, userID uuid.UUID, edit func(*entity.Draft) error) (*response.DraftResponse, error) {
	draft, err := s.loadDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := edit(draft); err != nil {
		return nil, err
	}

	draft.UpdatedAt = s.now()
	if err := s.drafts.Save(ctx, draft); err != nil {
		s.log.Error("Failed to save draft", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return s.draftResponse(ctx, draft)
}

func (s *bookingService) draftResponse(ctx context.Context, draft *entity.Draft) (*response.DraftResponse, error) {
	var restaurant *entity.Restaurant
	if draft.RestaurantID != nil {
		r, err := s.restaurants.FindByID(ctx, *draft.RestaurantID)
		if err != nil {
			return nil, fmt.Errorf("get restaurant %s: %w", *draft.RestaurantID, err)
		}
		restaurant = r
	}
	return response.NewDraftResponse(draft, restaurant), nil
}

func (s *bookingService) applyRestaurant(ctx context.Context, d *entity.Draft, restaurantID uuid.UUID) error {
	if _, err := s.getRestaurant(ctx, restaurantID); err != nil {
		return err
	}
	if d.RestaurantID == nil || *d.RestaurantID != restaurantID {
		d.Time = nil
	}
	d.RestaurantID = &restaurantID
	return nil
}

func (s *bookingService) applyDate(d *entity.Draft, date time.Time) error {
	date = entity.NormalizeDate(date)
	if err := s.checkWindow(date); err != nil {
		return err
	}
	if d.Date == nil || !d.Date.Equal(date) {
		d.Time = nil
	}
	d.Date = &date
	return nil
}

func (s *bookingService) applyTime(ctx context.Context, d *entity.Draft, t entity.ClockTime) error {
	if d.RestaurantID == nil {
		return fmt.Errorf("select a restaurant before a time: %w", ErrInvalidInput)
	}
	restaurant, err := s.getRestaurant(ctx, *d.RestaurantID)
	if err != nil {
		return err
	}
	if !restaurant.HasSlot(t) {
		return fmt.Errorf("%s is not a slot of %s: %w", t, restaurant.Name, ErrInvalidSlot)
	}
	d.Time = &t
	return nil
}

func (s *bookingService) applySeats(d *entity.Draft, seats int) error {
	if err := s.checkSeats(seats); err != nil {
		return err
	}
	d.Seats = seats
	return nil
}

// ==================== BOOKINGS ====================

func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s: %w", utils.FormatValidationErrors(errs), ErrInvalidInput)
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("invalid restaurant id %s: %w", req.RestaurantID, ErrInvalidInput)
	}

	date, err := entity.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	t, err := entity.ParseClock(req.Time)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidSlot)
	}

	return s.commit(ctx, commitInput{
		userID:        userID,
		restaurantID:  restaurantID,
		date:          date,
		time:          t,
		seats:         req.Seats,
		paymentStatus: entity.PaymentStatus(req.PaymentStatus),
		contactName:   req.ContactName,
		contactEmail:  req.ContactEmail,
	})
}

type commitInput struct {
	userID        uuid.UUID
	restaurantID  uuid.UUID
	date          time.Time
	time          entity.ClockTime
	seats         int
	paymentStatus entity.PaymentStatus
	contactName   string
	contactEmail  string
}

// commit applies the facade's booking rules, prices the booking and commits
// it through the Ledger. Notification and event failures are only logged.
func (s *bookingService) commit(ctx context.Context, in commitInput) (*response.BookingResponse, error) {
	if err := s.checkSeats(in.seats); err != nil {
		return nil, err
	}
	date := entity.NormalizeDate(in.date)
	if err := s.checkWindow(date); err != nil {
		return nil, err
	}
	if err := s.checkNotStarted(date, in.time); err != nil {
		return nil, err
	}
	if in.paymentStatus != entity.PaymentStatusPaid && in.paymentStatus != entity.PaymentStatusSkipped {
		return nil, fmt.Errorf("payment status must be paid or skipped, got %q: %w", in.paymentStatus, ErrInvalidInput)
	}

	restaurant, err := s.getRestaurant(ctx, in.restaurantID)
	if err != nil {
		return nil, err
	}

	booking, err := s.ledger.CommitBooking(ctx, CommitParams{
		RestaurantID:  restaurant.ID,
		UserID:        in.userID,
		Date:          date,
		Time:          in.time,
		Seats:         in.seats,
		PaymentStatus: in.paymentStatus,
		Amount:        float64(in.seats) * restaurant.PricePerSeat,
	})
	if err != nil {
		s.log.Warn("Booking rejected",
			zap.Error(err),
			zap.String("user_id", in.userID.String()),
			zap.String("restaurant_id", restaurant.ID.String()),
			zap.String("date", entity.FormatDate(date)),
			zap.String("time", in.time.String()),
			zap.Int("seats", in.seats),
		)
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("confirmation_code", booking.ConfirmationCode),
		zap.String("user_id", in.userID.String()),
		zap.Float64("total_amount", booking.TotalAmount),
	)

	msg := notify.Notification{
		BookingID:        booking.ID.String(),
		RestaurantName:   restaurant.Name,
		Date:             entity.FormatDate(booking.Date),
		Time:             booking.Time.String(),
		Seats:            booking.Seats,
		TotalAmount:      booking.TotalAmount,
		ConfirmationCode: booking.ConfirmationCode,
		RecipientEmail:   in.contactEmail,
		RecipientName:    in.contactName,
	}
	if err := s.notifier.BookingConfirmed(ctx, msg); err != nil {
		s.log.Error("Failed to send booking confirmation",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
	s.publish(ctx, notify.EventBookingConfirmed, booking)

	out := response.NewBookingResponse(booking, restaurant.Name)
	return &out, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.ledger.ListBookingsForUser(ctx, userID)
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, err
	}

	total := int64(len(bookings))
	start, end := utils.PageBounds(req.Offset(), req.Limit(), len(bookings))
	page := bookings[start:end]

	names := make(map[uuid.UUID]string)
	items := make([]response.BookingResponse, len(page))
	for i, b := range page {
		name, ok := names[b.RestaurantID]
		if !ok {
			if r, err := s.restaurants.FindByID(ctx, b.RestaurantID); err == nil && r != nil {
				name = r.Name
			}
			names[b.RestaurantID] = name
		}
		items[i] = response.NewBookingResponse(b, name)
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetBookingByCode(ctx context.Context, code string) (*response.BookingResponse, error) {
	booking, err := s.ledger.GetBookingByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.bookingResponse(ctx, booking), nil
}

// GetBookingQRCode renders the confirmation code as a PNG for the door.
func (s *bookingService) GetBookingQRCode(ctx context.Context, code string) ([]byte, error) {
	booking, err := s.ledger.GetBookingByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	png, err := utils.GenerateQRCode(booking.ConfirmationCode, qrCodeSize)
	if err != nil {
		s.log.Error("Failed to render QR code", zap.Error(err), zap.String("code", code))
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

// CancelBooking lets a user cancel their own booking.
func (s *bookingService) CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id %s: %w", bookingID, ErrInvalidInput)
	}

	existing, err := s.ledger.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		s.log.Warn("Cancel attempt on another user's booking",
			zap.String("booking_id", bookingID),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("booking %s belongs to another user: %w", bookingID, ErrForbidden)
	}

	wasCancelled := existing.Status == entity.BookingStatusCancelled
	booking, err := s.ledger.CancelBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !wasCancelled {
		s.publish(ctx, notify.EventBookingCancelled, booking)
	}

	return s.bookingResponse(ctx, booking), nil
}

func (s *bookingService) CompleteBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id %s: %w", bookingID, ErrInvalidInput)
	}

	booking, err := s.ledger.CompleteBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.EventBookingCompleted, booking)

	return s.bookingResponse(ctx, booking), nil
}

// ==================== HELPERS ====================

func (s *bookingService) getRestaurant(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error) {
	restaurant, err := s.restaurants.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", id, err)
	}
	if restaurant == nil {
		return nil, fmt.Errorf("restaurant %s: %w", id, ErrNotFound)
	}
	return restaurant, nil
}

func (s *bookingService) bookingResponse(ctx context.Context, b *entity.Booking) *response.BookingResponse {
	var name string
	if r, err := s.restaurants.FindByID(ctx, b.RestaurantID); err == nil && r != nil {
		name = r.Name
	}
	out := response.NewBookingResponse(b, name)
	return &out
}

func (s *bookingService) checkSeats(seats int) error {
	if seats < 1 || (s.config.MaxSeats > 0 && seats > s.config.MaxSeats) {
		return fmt.Errorf("seats must be between 1 and %d, got %d: %w", s.config.MaxSeats, seats, ErrInvalidInput)
	}
	return nil
}

// checkWindow keeps dates between today and today+WindowDays in the
// restaurant timezone.
func (s *bookingService) checkWindow(date time.Time) error {
	today := entity.NormalizeDate(s.now().In(s.loc))
	if date.Before(today) {
		return fmt.Errorf("date %s is in the past: %w", entity.FormatDate(date), ErrInvalidInput)
	}
	if s.config.WindowDays > 0 && date.After(today.AddDate(0, 0, s.config.WindowDays)) {
		return fmt.Errorf("date %s is more than %d days ahead: %w", entity.FormatDate(date), s.config.WindowDays, ErrInvalidInput)
	}
	return nil
}

func (s *bookingService) checkNotStarted(date time.Time, t entity.ClockTime) error {
	now := s.now().In(s.loc)
	if !date.Equal(entity.NormalizeDate(now)) {
		return nil
	}
	if t <= entity.Clock(now.Hour(), now.Minute()) {
		return fmt.Errorf("slot %s today has already started: %w", t, ErrInvalidSlot)
	}
	return nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *entity.Booking) {
	event := notify.BookingEvent{
		BookingID:        b.ID.String(),
		RestaurantID:     b.RestaurantID.String(),
		UserID:           b.UserID.String(),
		Date:             entity.FormatDate(b.Date),
		Time:             b.Time.String(),
		Seats:            b.Seats,
		Status:           string(b.Status),
		ConfirmationCode: b.ConfirmationCode,
	}
	if err := s.events.Publish(ctx, eventType, event); err != nil {
		s.log.Error("Failed to publish booking event",
			zap.Error(err),
			zap.String("event_type", eventType),
			zap.String("booking_id", event.BookingID),
		)
	}
}
