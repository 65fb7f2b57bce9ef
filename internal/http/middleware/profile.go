package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gigworks/billing-service/internal/model"
	"github.com/gigworks/billing-service/internal/service"
)

// HeaderProfileID carries the caller's identity. It is a stand-in for real
// authentication: the id is trusted as given.
const HeaderProfileID = "profile_id"

const profileContextKey = "billing.profile"

type ProfileResolver interface {
	ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// Profile resolves the profile_id header into a Profile and stores it on
// the request context. Requests without a known profile are rejected.
func Profile(resolver ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderProfileID))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing profile_id header"})
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid profile_id header"})
			return
		}

		profile, err := resolver.ProfileByID(c.Request.Context(), id)
		if errors.Is(err, service.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown profile"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(profileContextKey, *profile)
		c.Next()
	}
}

// MustProfile returns the profile resolved by the Profile middleware.
func MustProfile(c *gin.Context) (model.Profile, bool) {
	value, ok := c.Get(profileContextKey)
	if !ok {
		return model.Profile{}, false
	}
	profile, ok := value.(model.Profile)
	return profile, ok
}
