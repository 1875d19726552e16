package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/profile/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) CreateIfAbsent(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p).Error
}

func (r *repo) UpdateFullName(ctx context.Context, db *gorm.DB, id uuid.UUID, fullName *string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{"full_name": fullName, "updated_at": at}).Error
}

func (r *repo) SetAdmin(ctx context.Context, db *gorm.DB, id uuid.UUID, admin bool, at time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_admin": admin, "updated_at": at})
	return result.RowsAffected, result.Error
}
