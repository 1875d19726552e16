package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	"gorm.io/gorm"
)

// Profile mirrors an identity provider account inside the service.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FullName  *string   `json:"full_name" gorm:"type:varchar(255)"`
	IsAdmin   bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Profile) TableName() string { return "profiles" }

// DefaultAEName is used to prefill the AE/CSM metric on new quotes.
func (p Profile) DefaultAEName() string {
	if p.FullName == nil {
		return ""
	}
	return *p.FullName
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Profile, error)
	CreateIfAbsent(ctx context.Context, db *gorm.DB, p *Profile) error
	UpdateFullName(ctx context.Context, db *gorm.DB, id uuid.UUID, fullName *string, at time.Time) error
	SetAdmin(ctx context.Context, db *gorm.DB, id uuid.UUID, admin bool, at time.Time) (int64, error)
}

type Service interface {
	// Ensure returns the profile for id, creating it on first sight.
	Ensure(ctx context.Context, id uuid.UUID, fullName *string) (*Profile, error)
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error
}

var ErrNotFound = apperror.New(apperror.KindNotFound, "profile_not_found", "profile not found")
