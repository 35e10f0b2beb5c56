package wire

import (
	"restaurant-booking/internal/adaptor"
	"restaurant-booking/pkg/middleware"
	"restaurant-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== USER ROUTES (require X-User-ID) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/bookings - Book a slot in one step
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// DELETE /api/bookings/{id} - Cancel one of the caller's bookings
		r.Delete("/api/bookings/{id}", bookingHandler.CancelBooking)

		// GET /api/user/bookings - Caller's bookings, newest first
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})

	// ==================== PUBLIC ROUTES ====================
	// Anyone holding the confirmation code may view it
	r.Get("/api/bookings/code/{code}", bookingHandler.GetBookingByCode)
	r.Get("/api/bookings/code/{code}/qrcode", bookingHandler.GetBookingQRCode)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.Admin(config.App.AdminKey, log))

		// PUT /api/admin/bookings/{id}/complete - Mark a booking honoured
		r.Put("/{id}/complete", bookingHandler.CompleteBooking)
	})
}

func wireDraft(r chi.Router, draftHandler *adaptor.DraftHandler, log *zap.Logger) {
	r.Route("/api/booking/draft", func(r chi.Router) {
		r.Use(middleware.Identity(log))

		r.Get("/", draftHandler.GetDraft)
		r.Put("/", draftHandler.UpdateDraft)
		r.Delete("/", draftHandler.ClearDraft)
		r.Post("/confirm", draftHandler.ConfirmDraft)
	})
}
