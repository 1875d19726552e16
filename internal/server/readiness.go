package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReadinessState string

const (
	ReadinessStateReady    ReadinessState = "ready"
	ReadinessStateNotReady ReadinessState = "not_ready"
	ReadinessStateOptional ReadinessState = "optional"
)

type ReadinessIssue struct {
	ID     string         `json:"id"`
	Status ReadinessState `json:"status"`
	Detail string         `json:"detail,omitempty"`
}

type ReadinessResponse struct {
	SystemState ReadinessState   `json:"system_state"`
	Issues      []ReadinessIssue `json:"issues"`
}

// @Summary      Health check
// @Description  Database, schema and cache readiness
// @Tags         ops
// @Produce      json
// @Success      200  {object}  ReadinessResponse
// @Failure      503  {object}  ReadinessResponse
// @Router       /healthz [get]
func (s *Server) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := ReadinessResponse{SystemState: ReadinessStateReady}
	check := func(id string, required bool, err error) {
		issue := ReadinessIssue{ID: id, Status: ReadinessStateReady}
		if err != nil {
			issue.Detail = err.Error()
			if required {
				issue.Status = ReadinessStateNotReady
				resp.SystemState = ReadinessStateNotReady
			} else {
				issue.Status = ReadinessStateOptional
			}
			s.log.Warn("readiness check failed", zap.String("check", id), zap.Error(err))
		}
		resp.Issues = append(resp.Issues, issue)
	}

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	check("database", true, err)
	check("schema", true, s.schemaGate.Check(ctx))
	if s.redis != nil {
		check("redis", false, s.redis.Ping(ctx).Err())
	}

	status := http.StatusOK
	if resp.SystemState != ReadinessStateReady {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
