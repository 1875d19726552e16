package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 200

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Item, error) {
	var items []domain.Item
	err := db.WithContext(ctx).
		Order("module asc, feature asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"monthly_price", "increment", "release_stage", "created_by", "updated_at",
			}),
		}).
		CreateInBatches(items, upsertBatchSize).Error
}

func (r *repo) DeleteExcept(ctx context.Context, db *gorm.DB, keep []snowflake.ID) (int64, error) {
	stmt := db.WithContext(ctx)
	if len(keep) > 0 {
		stmt = stmt.Where("id NOT IN ?", keep)
	} else {
		stmt = stmt.Where("1 = 1")
	}
	result := stmt.Delete(&domain.Item{})
	return result.RowsAffected, result.Error
}

// DetachQuoteItems clears catalog links on saved quote lines whose catalog
// row is about to be removed. Postgres does this through the foreign key; the
// explicit update keeps sqlite and mysql in line.
func (r *repo) DetachQuoteItems(ctx context.Context, db *gorm.DB, keep []snowflake.ID) error {
	stmt := db.WithContext(ctx).
		Table("quote_items").
		Where("catalog_item_id IS NOT NULL")
	if len(keep) > 0 {
		stmt = stmt.Where("catalog_item_id NOT IN ?", keep)
	}
	return stmt.Update("catalog_item_id", nil).Error
}

func (r *repo) CreateImport(ctx context.Context, db *gorm.DB, record *domain.Import) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) ListImports(ctx context.Context, db *gorm.DB, limit int) ([]domain.Import, error) {
	var records []domain.Import
	stmt := db.WithContext(ctx).Order("created_at desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
