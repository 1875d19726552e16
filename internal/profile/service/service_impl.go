package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/railzwaylabs/pricecalc/internal/profile/domain"
	"github.com/railzwaylabs/pricecalc/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("profile.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Ensure(ctx context.Context, id uuid.UUID, fullName *string) (*domain.Profile, error) {
	name := trimmed(fullName)

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, db.Classify(err)
	}
	if existing != nil {
		if existing.FullName == nil && name != nil {
			now := s.clock.Now(ctx).UTC()
			if err := s.repo.UpdateFullName(ctx, s.db, id, name, now); err != nil {
				return nil, db.Classify(err)
			}
			existing.FullName = name
			existing.UpdatedAt = now
		}
		return existing, nil
	}

	now := s.clock.Now(ctx).UTC()
	p := &domain.Profile{
		ID:        id,
		FullName:  name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateIfAbsent(ctx, s.db, p); err != nil {
		return nil, db.Classify(err)
	}

	// A concurrent request may have created the row first.
	created, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, db.Classify(err)
	}
	if created == nil {
		return nil, domain.ErrNotFound
	}
	s.log.Info("profile created", zap.String("profile_id", id.String()))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, db.Classify(err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	affected, err := s.repo.SetAdmin(ctx, s.db, id, admin, s.clock.Now(ctx).UTC())
	if err != nil {
		return db.Classify(err)
	}
	if affected == 0 {
		// mysql reports zero rows when the flag is unchanged
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}
	s.log.Info("profile admin flag updated",
		zap.String("profile_id", id.String()),
		zap.Bool("is_admin", admin),
	)
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
