package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, quote *Quote) error
	UpdateHeader(ctx context.Context, db *gorm.DB, quote *Quote) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, key string) (*Quote, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, page pagination.Pagination) ([]*Quote, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	ListItems(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]Item, error)
	DeleteItems(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) error
	InsertItems(ctx context.Context, db *gorm.DB, items []Item) error
}
