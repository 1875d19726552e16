package domain

import (
	"context"
	"io"

	"github.com/google/uuid"
)

type Service interface {
	List(ctx context.Context) ([]Item, error)
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)
	ListImports(ctx context.Context, limit int) ([]Import, error)
	Reload(ctx context.Context) error
}

type ImportRequest struct {
	Actor  *uuid.UUID
	Source string
	Body   io.Reader
}

type ImportResult struct {
	ImportID      string         `json:"import_id"`
	Inserted      int            `json:"inserted"`
	Retained      int            `json:"retained"`
	Removed       int64          `json:"removed"`
	Skipped       int            `json:"skipped"`
	SkippedStages map[string]int `json:"skipped_stages,omitempty"`
}
