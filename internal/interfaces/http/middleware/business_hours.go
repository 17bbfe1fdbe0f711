package middleware

import (
	"net/http"
	"time"

	"github.com/aquagest/backend/internal/domain/identity"
	"github.com/aquagest/backend/internal/infrastructure/config"
	"github.com/aquagest/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BusinessHours rejects mutating requests outside the configured opening
// hours. Read-only requests (GET) always pass, as do all requests when
// enforcement is disabled, and admins bypass the gate entirely. The window
// is evaluated in the configured timezone; an invalid timezone falls back
// to UTC.
func BusinessHours(cfg config.BusinessHoursConfig) gin.HandlerFunc {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		location = time.UTC
	}
	open, openErr := time.Parse("15:04", cfg.Open)
	close_, closeErr := time.Parse("15:04", cfg.Close)

	return func(c *gin.Context) {
		if !cfg.Enforced || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if GetJWTRole(c) == identity.RoleAdmin.String() {
			c.Next()
			return
		}
		if openErr != nil || closeErr != nil {
			c.Next()
			return
		}

		now := time.Now().In(location)
		minutes := now.Hour()*60 + now.Minute()
		openMin := open.Hour()*60 + open.Minute()
		closeMin := close_.Hour()*60 + close_.Minute()

		if minutes < openMin || minutes >= closeMin {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeClosed,
					"Operation not allowed outside business hours",
					GetRequestID(c)))
			return
		}
		c.Next()
	}
}
