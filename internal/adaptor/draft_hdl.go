package adaptor

import (
	"encoding/json"
	"net/http"

	"restaurant-booking/internal/dto/request"
	"restaurant-booking/internal/usecase"
	"restaurant-booking/pkg/utils"

	"go.uber.org/zap"
)

// DraftHandler serves the reservation in progress of the calling user.
type DraftHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewDraftHandler(service usecase.BookingService, log *zap.Logger) *DraftHandler {
	return &DraftHandler{
		service: service,
		log:     log.With(zap.String("handler", "draft")),
	}
}

// GetDraft handles GET /api/booking/draft
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "User identity required")
		return
	}

	draft, err := h.service.GetDraft(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get draft")
		return
	}

	utils.ResponseSuccess(w, "success", draft)
}

// UpdateDraft handles PUT /api/booking/draft
func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "User identity required")
		return
	}

	var req request.UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	draft, err := h.service.UpdateDraft(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update draft")
		return
	}

	utils.ResponseSuccess(w, "success", draft)
}

// ClearDraft handles DELETE /api/booking/draft
func (h *DraftHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "User identity required")
		return
	}

	if err := h.service.ClearDraft(r.Context(), userID); err != nil {
		handleServiceError(w, h.log, err, "clear draft")
		return
	}

	utils.ResponseSuccess(w, "Draft cleared", nil)
}

// ConfirmDraft handles POST /api/booking/draft/confirm
func (h *DraftHandler) ConfirmDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "User identity required")
		return
	}

	var req request.ConfirmDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.ConfirmDraft(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "confirm draft")
		return
	}

	utils.ResponseCreated(w, "Booking confirmed", booking)
}
