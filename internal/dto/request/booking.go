package request

// CreateBookingRequest commits a booking in one step.
type CreateBookingRequest struct {
	RestaurantID  string `json:"restaurant_id" validate:"required,uuid"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"required,clock"`
	Seats         int    `json:"seats" validate:"required,min=1"`
	PaymentStatus string `json:"payment_status" validate:"required,oneof=paid skipped"`
	ContactName   string `json:"contact_name,omitempty" validate:"omitempty,max=100"`
	ContactEmail  string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

// UpdateDraftRequest changes only the fields that are present. Changing the
// restaurant or date clears the chosen time.
type UpdateDraftRequest struct {
	RestaurantID *string `json:"restaurant_id,omitempty" validate:"omitempty,uuid"`
	Date         *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time         *string `json:"time,omitempty" validate:"omitempty,clock"`
	Seats        *int    `json:"seats,omitempty" validate:"omitempty,min=1"`
}

type ConfirmDraftRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=paid skipped"`
	ContactName   string `json:"contact_name,omitempty" validate:"omitempty,max=100"`
	ContactEmail  string `json:"contact_email,omitempty" validate:"omitempty,email"`
}
