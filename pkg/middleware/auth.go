package middleware

import (
	"crypto/subtle"
	"net/http"

	"restaurant-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderAdminKey = "X-Admin-Key"
)

// Identity reads the caller's user id from X-User-ID and puts it in the
// request context.
func Identity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderUserID)
			if raw == "" {
				utils.ResponseUnauthorized(w, "Missing "+HeaderUserID+" header")
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				logger.Warn("Invalid user id header", zap.String("value", raw))
				utils.ResponseUnauthorized(w, "Invalid "+HeaderUserID+" header")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, utils.RoleCustomer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin requires X-Admin-Key to match the configured key. An empty key
// disables the admin routes.
func Admin(adminKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(HeaderAdminKey)
			if adminKey == "" || subtle.ConstantTimeCompare([]byte(given), []byte(adminKey)) != 1 {
				logger.Warn("Admin check: rejected",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			ctx := r.Context()
			if userID, ok := utils.GetUserIDFromContext(ctx); ok {
				ctx = utils.SetUserContext(ctx, userID, utils.RoleAdmin)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
