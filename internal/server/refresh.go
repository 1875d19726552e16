package server

import (
	"github.com/gin-gonic/gin"
)

// @Summary      Trigger pricing refresh
// @Description  Ask the pricing pipeline to re-fetch prices. Rejected with 429 and Retry-After while cooling down.
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DataResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /api/catalog/refresh [post]
func (s *Server) TriggerRefresh(c *gin.Context) {
	ownerID, _ := ownerIDFrom(c)
	res, err := s.refreshSvc.Trigger(c.Request.Context(), ownerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, res)
}

// @Summary      Pricing refresh status
// @Description  Whether a refresh cooldown is running and how long is left
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DataResponse
// @Router       /api/catalog/refresh [get]
func (s *Server) GetRefreshStatus(c *gin.Context) {
	status, err := s.refreshSvc.Status(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, status)
}
