package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/pricecalc/internal/draft"
	"github.com/railzwaylabs/pricecalc/internal/pricing"
	quotedomain "github.com/railzwaylabs/pricecalc/internal/quote/domain"
	"github.com/railzwaylabs/pricecalc/pkg/db/pagination"
)

type saveQuoteResponse struct {
	Quote          quotedomain.Quote  `json:"quote"`
	Items          []quotedomain.Item `json:"items"`
	IgnoredItemIDs []snowflake.ID     `json:"ignored_item_ids,omitempty"`
}

type loadQuoteResponse struct {
	Quote         quotedomain.Quote          `json:"quote"`
	Items         []quotedomain.Item         `json:"items"`
	Draft         draft.Payload              `json:"draft"`
	Summary       summaryResponse            `json:"summary"`
	DetachedItems int                        `json:"detached_items"`
	Warnings      []quotedomain.StaleWarning `json:"warnings"`
}

// @Summary      Calculate quote
// @Description  Price a draft against the current catalog without saving it
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body draft.Payload true "Draft"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /api/quotes/calculate [post]
func (s *Server) CalculateQuote(c *gin.Context) {
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	if err := d.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}

	catalog, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, s.summaryView(pricing.Summarize(catalog, d)))
}

// @Summary      List quotes
// @Description  Quotes owned by the caller, most recently updated first
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        page_token  query  string  false  "Page Token"
// @Param        page_size   query  int     false  "Page Size"
// @Success      200  {object}  ListResponse
// @Router       /api/quotes [get]
func (s *Server) ListQuotes(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	ownerID, _ := ownerIDFrom(c)

	resp, err := s.quoteSvc.ListForOwner(c.Request.Context(), ownerID, quotedomain.ListRequest{
		PageToken: query.PageToken,
		PageSize:  clampPageSize(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Quotes, &resp.PageInfo)
}

// clampPageSize bounds the query value before narrowing it to int32.
func clampPageSize(n int) int32 {
	switch {
	case n < 0:
		return 0
	case n > quotedomain.MaxPageSize:
		return quotedomain.MaxPageSize
	}
	return int32(n)
}

// @Summary      Create quote
// @Description  Save the draft as a new named quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header  string  false  "Idempotency Key"
// @Param        request body draft.Payload true "Draft"
// @Success      201  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /api/quotes [post]
func (s *Server) CreateQuote(c *gin.Context) {
	s.saveQuote(c, 0)
}

// @Summary      Update quote
// @Description  Replace a saved quote with the draft
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Quote ID"
// @Param        request body draft.Payload true "Draft"
// @Success      200  {object}  DataResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/quotes/{id} [put]
func (s *Server) UpdateQuote(c *gin.Context) {
	id, ok := quoteIDParam(c)
	if !ok {
		return
	}
	s.saveQuote(c, id)
}

func (s *Server) saveQuote(c *gin.Context, quoteID snowflake.ID) {
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	ownerID, _ := ownerIDFrom(c)

	res, err := s.quoteSvc.Save(c.Request.Context(), quotedomain.SaveRequest{
		OwnerID:        ownerID,
		QuoteID:        quoteID,
		Draft:          d.WithQuoteID(quoteID),
		IdempotencyKey: idempotencyKeyFromHeader(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := saveQuoteResponse{Quote: res.Quote, Items: res.Items, IgnoredItemIDs: res.Ignored}
	if quoteID == 0 {
		respondCreated(c, body)
		return
	}
	respondData(c, body)
}

// @Summary      Load quote
// @Description  Load a saved quote as a draft, priced on the current catalog, with stale item warnings
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Quote ID"
// @Success      200  {object}  DataResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/quotes/{id} [get]
func (s *Server) GetQuote(c *gin.Context) {
	id, ok := quoteIDParam(c)
	if !ok {
		return
	}
	ownerID, _ := ownerIDFrom(c)
	ctx := c.Request.Context()

	res, err := s.quoteSvc.Load(ctx, ownerID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	warnings := res.Warnings
	if warnings == nil {
		warnings = []quotedomain.StaleWarning{}
	}
	respondData(c, loadQuoteResponse{
		Quote:         res.Quote,
		Items:         res.Items,
		Draft:         draft.ToPayload(res.Draft),
		Summary:       s.summaryView(pricing.Summarize(res.Catalog, res.Draft)),
		DetachedItems: res.Detached,
		Warnings:      warnings,
	})
}

// @Summary      Delete quote
// @Tags         quotes
// @Security     BearerAuth
// @Param        id  path  string  true  "Quote ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /api/quotes/{id} [delete]
func (s *Server) DeleteQuote(c *gin.Context) {
	id, ok := quoteIDParam(c)
	if !ok {
		return
	}
	ownerID, _ := ownerIDFrom(c)

	if err := s.quoteSvc.Delete(c.Request.Context(), ownerID, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Export quote
// @Description  Download a saved quote as CSV or PDF
// @Tags         quotes
// @Produce      text/csv
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id      path   string  true   "Quote ID"
// @Param        format  query  string  false  "csv or pdf"
// @Success      200
// @Failure      400  {object}  ErrorResponse
// @Router       /api/quotes/{id}/export [get]
func (s *Server) ExportQuote(c *gin.Context) {
	id, ok := quoteIDParam(c)
	if !ok {
		return
	}
	ownerID, _ := ownerIDFrom(c)
	format := quotedomain.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv"))))

	file, err := s.quoteSvc.Export(c.Request.Context(), ownerID, id, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func bindDraft(c *gin.Context) (draft.Draft, bool) {
	var req draft.Payload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return draft.Draft{}, false
	}
	d, err := req.Build()
	if err != nil {
		AbortWithError(c, err)
		return draft.Draft{}, false
	}
	return d, true
}

func quoteIDParam(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		AbortWithError(c, quotedomain.ErrInvalidID)
		return 0, false
	}
	return id, true
}

func idempotencyKeyFromHeader(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}
