package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/quote/domain"
	"github.com/railzwaylabs/pricecalc/pkg/db/option"
	"github.com/railzwaylabs/pricecalc/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Create(quote).Error
}

// UpdateHeader rewrites every editable header column, including ones the
// draft has cleared.
func (r *repo) UpdateHeader(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	if quote == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ? AND owner_id = ?", quote.ID, quote.OwnerID).
		Updates(map[string]any{
			"name":                        quote.Name,
			"implementation_fee_percent":  quote.ImplementationFeePercent,
			"annual_discount_percent":     quote.AnnualDiscountPercent,
			"ae_csm_name":                 quote.AECSMName,
			"champion":                    quote.Champion,
			"economic_buyer":              quote.EconomicBuyer,
			"sector":                      quote.Sector,
			"ftes":                        quote.FTEs,
			"vacancies":                   quote.Vacancies,
			"applications":                quote.Applications,
			"recruitment_marketing_spend": quote.RecruitmentMarketingSpend,
			"staffing_agency_spend":       quote.StaffingAgencySpend,
			"updated_at":                  quote.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	var q domain.Quote
	err := db.WithContext(ctx).Where("id = ?", id).Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repo) FindByIdempotencyKey(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, key string) (*domain.Quote, error) {
	var q domain.Quote
	err := db.WithContext(ctx).
		Where("owner_id = ? AND idempotency_key = ?", ownerID, key).
		Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, page pagination.Pagination) ([]*domain.Quote, error) {
	var items []*domain.Quote
	stmt := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("owner_id = ?", ownerID)

	stmt = option.ApplyPagination(page, "updated_at").Apply(stmt)
	stmt = stmt.Order("updated_at desc, id desc")

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Quote{}).Error
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]domain.Item, error) {
	var items []domain.Item
	err := db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("module asc, feature asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) error {
	return db.WithContext(ctx).Where("quote_id = ?", quoteID).Delete(&domain.Item{}).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}
