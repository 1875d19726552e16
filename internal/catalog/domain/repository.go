package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]Item, error)
	Upsert(ctx context.Context, db *gorm.DB, items []Item) error
	DeleteExcept(ctx context.Context, db *gorm.DB, keep []snowflake.ID) (int64, error)
	DetachQuoteItems(ctx context.Context, db *gorm.DB, keep []snowflake.ID) error
	CreateImport(ctx context.Context, db *gorm.DB, record *Import) error
	ListImports(ctx context.Context, db *gorm.DB, limit int) ([]Import, error)
}

// Cache holds a snapshot of the full catalog.
type Cache interface {
	Get(ctx context.Context) ([]Item, bool, error)
	Set(ctx context.Context, items []Item) error
	Invalidate(ctx context.Context) error
}
