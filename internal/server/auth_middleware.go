package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/auth"
	profiledomain "github.com/railzwaylabs/pricecalc/internal/profile/domain"
)

const (
	contextOwnerIDKey = "owner_id"
	contextProfileKey = "profile"
)

// Authenticated verifies the bearer token, makes sure the caller has a
// profile and syncs the caller's role from it.
func (s *Server) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, auth.ErrMissingToken)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, auth.ErrInvalidToken)
			return
		}

		ctx := c.Request.Context()
		identity, err := s.verifier.Verify(ctx, parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		profile, err := s.profileSvc.Ensure(ctx, identity.OwnerID, identity.FullName)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if err := s.authz.SyncRoles(ctx, identity.OwnerID.String(), profile.IsAdmin); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextOwnerIDKey, identity.OwnerID)
		c.Set(contextProfileKey, profile)
		c.Request = c.Request.WithContext(auth.WithIdentity(ctx, identity))
		c.Next()
	}
}

// RequirePermission enforces a casbin permission for the authenticated caller.
func (s *Server) RequirePermission(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := ownerIDFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authz.Authorize(c.Request.Context(), ownerID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func ownerIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(contextOwnerIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func profileFrom(c *gin.Context) (*profiledomain.Profile, bool) {
	v, ok := c.Get(contextProfileKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*profiledomain.Profile)
	return p, ok && p != nil
}
