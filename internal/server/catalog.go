package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/pricing"
)

type catalogResponse struct {
	Items  []catalogdomain.Item  `json:"items"`
	Groups []pricing.ModuleGroup `json:"groups"`
}

// @Summary      List catalog
// @Description  Catalog items ordered by module and feature, plus the grouped view
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DataResponse
// @Router       /api/catalog [get]
func (s *Server) ListCatalog(c *gin.Context) {
	items, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []catalogdomain.Item{}
	}
	respondData(c, catalogResponse{Items: items, Groups: pricing.GroupByModule(items)})
}

// @Summary      Import catalog
// @Description  Replace the catalog from a CSV file. Accepts a text/csv body or a multipart "file" field.
// @Tags         catalog
// @Accept       text/csv
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  false  "CSV file"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /api/catalog/import [post]
func (s *Server) ImportCatalog(c *gin.Context) {
	limit := s.cfg.HTTP.MaxUploadBytes
	if limit > 0 {
		// room for multipart framing; the service enforces the exact limit
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+64<<10)
	}

	body, closeBody, err := importBody(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			AbortWithError(c, catalogdomain.ErrImportTooLarge)
			return
		}
		AbortWithError(c, err)
		return
	}
	defer closeBody()

	var actor *uuid.UUID
	if id, ok := ownerIDFrom(c); ok {
		actor = &id
	}

	res, err := s.catalogSvc.Import(c.Request.Context(), catalogdomain.ImportRequest{
		Actor:  actor,
		Source: catalogdomain.SourceCSV,
		Body:   body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, res)
}

func importBody(c *gin.Context) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType != "multipart/form-data" {
		return c.Request.Body, func() {}, nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, newValidationError("missing_file", "multipart field \"file\" is required")
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, invalidRequestError()
	}
	return f, func() { _ = f.Close() }, nil
}

// @Summary      List catalog imports
// @Description  Most recent catalog imports first
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Limit (default 20, max 100)"
// @Success      200  {object}  DataResponse
// @Router       /api/catalog/imports [get]
func (s *Server) ListCatalogImports(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("invalid_limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	imports, err := s.catalogSvc.ListImports(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if imports == nil {
		imports = []catalogdomain.Import{}
	}
	respondData(c, imports)
}
