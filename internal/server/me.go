package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/auth"
)

type meResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email,omitempty"`
	FullName      *string   `json:"full_name"`
	IsAdmin       bool      `json:"is_admin"`
	DefaultAEName string    `json:"default_ae_csm_name"`
}

// @Summary      Current user
// @Description  The caller's profile and the AE/CSM name new quotes default to
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DataResponse
// @Router       /api/me [get]
func (s *Server) GetMe(c *gin.Context) {
	profile, ok := profileFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	resp := meResponse{
		ID:            profile.ID,
		FullName:      profile.FullName,
		IsAdmin:       profile.IsAdmin,
		DefaultAEName: profile.DefaultAEName(),
	}
	if identity, ok := auth.IdentityFromContext(c.Request.Context()); ok {
		resp.Email = identity.Email
	}
	respondData(c, resp)
}
