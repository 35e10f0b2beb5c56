package adaptor

import (
	"errors"
	"net/http"

	"restaurant-booking/internal/data/cache"
	"restaurant-booking/internal/usecase"
	"restaurant-booking/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps usecase errors onto HTTP responses. Anything not
// recognised is logged and answered with a generic 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	fields := []zap.Field{zap.Error(err), zap.String("operation", operation)}

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", fields...)
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidInput), errors.Is(err, usecase.ErrInvalidSlot):
		log.Warn("Invalid input for "+operation, fields...)
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrCapacityExceeded):
		log.Warn(operation+" failed - not enough seats", fields...)
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidTransition):
		log.Warn(operation+" failed - invalid state", fields...)
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", fields...)
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, cache.ErrLockTimeout):
		log.Warn(operation+" failed - slot busy", fields...)
		utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Slot is busy, please retry", nil, nil)

	default:
		log.Error(operation+" failed", fields...)
		utils.ResponseInternalError(w, "Internal server error")
	}
}
