package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/draft"
	"github.com/railzwaylabs/pricecalc/pkg/db/pagination"
)

type Service interface {
	Save(ctx context.Context, req SaveRequest) (*SaveResult, error)
	Load(ctx context.Context, ownerID uuid.UUID, quoteID snowflake.ID) (*LoadResult, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID, req ListRequest) (ListResponse, error)
	Delete(ctx context.Context, ownerID uuid.UUID, quoteID snowflake.ID) error
	Export(ctx context.Context, ownerID uuid.UUID, quoteID snowflake.ID, format ExportFormat) (*ExportFile, error)
}

// SaveRequest saves Draft as a new quote when QuoteID is zero, otherwise
// replaces the stored quote with that id.
type SaveRequest struct {
	OwnerID        uuid.UUID
	QuoteID        snowflake.ID
	Draft          draft.Draft
	IdempotencyKey string
}

type SaveResult struct {
	Quote Quote
	Items []Item
	// Ignored lists selected ids that are not in the catalog.
	Ignored []snowflake.ID
}

type LoadResult struct {
	Quote    Quote
	Items    []Item
	Draft    draft.Draft
	Detached int
	Warnings []StaleWarning
	// Catalog is the snapshot the warnings were computed against; price the
	// draft with it.
	Catalog []catalogdomain.Item
}

// MaxPageSize caps ListRequest.PageSize.
const MaxPageSize = 200

type ListRequest struct {
	PageToken string
	PageSize  int32
}

type ListResponse struct {
	PageInfo pagination.PageInfo `json:"page_info"`
	Quotes   []Summary           `json:"quotes"`
}

// Summary is a sidebar entry; items are not fetched for it.
type Summary struct {
	ID        snowflake.ID `json:"id"`
	Name      string       `json:"name"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}
