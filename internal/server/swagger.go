package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/railzwaylabs/pricecalc/docs"
	"github.com/swaggo/swag"
)

// SwaggerDoc serves the registered OpenAPI document.
func (s *Server) SwaggerDoc(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
