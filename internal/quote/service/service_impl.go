package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/railzwaylabs/pricecalc/internal/draft"
	"github.com/railzwaylabs/pricecalc/internal/observability"
	"github.com/railzwaylabs/pricecalc/internal/pricing"
	"github.com/railzwaylabs/pricecalc/internal/quote/domain"
	"github.com/railzwaylabs/pricecalc/pkg/db"
	"github.com/railzwaylabs/pricecalc/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Cfg     config.Config
	Repo    domain.Repository
	Catalog catalogdomain.Service
	Metrics *observability.Metrics
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	catalog   catalogdomain.Service
	metrics   *observability.Metrics
	formatter pricing.Formatter
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("quote.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		catalog:   p.Catalog,
		metrics:   p.Metrics,
		formatter: pricing.NewFormatter(p.Cfg.Currency.Symbol),
	}
}

func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.SaveResult, error) {
	mode := "create"
	if req.QuoteID != 0 {
		mode = "update"
	}
	result, err := s.save(ctx, req)
	outcome := "success"
	if err != nil {
		outcome = string(apperror.KindOf(err))
	}
	s.metrics.QuotesSaved.WithLabelValues(mode, outcome).Inc()
	return result, err
}

func (s *Service) save(ctx context.Context, req domain.SaveRequest) (*domain.SaveResult, error) {
	if req.OwnerID == uuid.Nil {
		return nil, apperror.ErrUnauthenticated
	}
	d := req.Draft
	name := strings.TrimSpace(d.Name())
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	quantities := d.Quantities()
	selected := pricing.SelectedItems(catalog, quantities)
	if len(selected) == 0 {
		return nil, domain.ErrEmptyQuote
	}
	ignored := unknownIDs(catalog, d.SelectedIDs())

	idempotencyKey := strings.TrimSpace(req.IdempotencyKey)
	if idempotencyKey != "" && req.QuoteID == 0 {
		existing, err := s.repo.FindByIdempotencyKey(ctx, s.db, req.OwnerID, idempotencyKey)
		if err != nil {
			return nil, db.Classify(err)
		}
		if existing != nil {
			return s.replay(ctx, existing, ignored)
		}
	}

	now := s.clock.Now(ctx).UTC()
	header := domain.Quote{
		ID:                       req.QuoteID,
		OwnerID:                  req.OwnerID,
		Name:                     name,
		ImplementationFeePercent: d.FeePercent(),
		AnnualDiscountPercent:    d.DiscountPercent(),
		Metrics:                  d.Metrics(),
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if idempotencyKey != "" && req.QuoteID == 0 {
		header.IdempotencyKey = &idempotencyKey
	}

	var items []domain.Item
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if header.ID == 0 {
			header.ID = s.genID.Generate()
			if err := s.repo.Create(ctx, tx, &header); err != nil {
				return err
			}
		} else {
			existing, err := s.repo.FindByID(ctx, tx, header.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ErrNotFound
			}
			if existing.OwnerID != req.OwnerID {
				return domain.ErrNotOwner
			}
			header.CreatedAt = existing.CreatedAt
			header.IdempotencyKey = existing.IdempotencyKey
			if err := s.repo.UpdateHeader(ctx, tx, &header); err != nil {
				return err
			}
			if err := s.repo.DeleteItems(ctx, tx, header.ID); err != nil {
				return err
			}
		}

		items = make([]domain.Item, 0, len(selected))
		for _, c := range selected {
			catalogID := c.ID
			items = append(items, domain.Item{
				ID:            s.genID.Generate(),
				QuoteID:       header.ID,
				CatalogItemID: &catalogID,
				Module:        c.Module,
				Feature:       c.Feature,
				Unit:          c.Unit,
				MonthlyPrice:  c.MonthlyPrice,
				Quantity:      quantities[c.ID],
				CreatedAt:     now,
			})
		}
		return s.repo.InsertItems(ctx, tx, items)
	})
	if err != nil {
		if idempotencyKey != "" && req.QuoteID == 0 && errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.repo.FindByIdempotencyKey(ctx, s.db, req.OwnerID, idempotencyKey)
			if findErr == nil && existing != nil {
				return s.replay(ctx, existing, ignored)
			}
		}
		if !apperror.IsKind(err, apperror.KindNotFound) && !apperror.IsKind(err, apperror.KindAuthorization) {
			s.log.Error("quote save failed",
				zap.String("owner_id", req.OwnerID.String()),
				zap.String("quote_id", header.ID.String()),
				zap.Error(err),
			)
		}
		return nil, db.Classify(err)
	}

	if len(ignored) > 0 {
		s.log.Warn("quote saved without unknown catalog items",
			zap.String("quote_id", header.ID.String()),
			zap.Int("ignored", len(ignored)),
		)
	}
	s.log.Info("quote saved",
		zap.String("quote_id", header.ID.String()),
		zap.String("owner_id", req.OwnerID.String()),
		zap.Int("items", len(items)),
	)
	return &domain.SaveResult{Quote: header, Items: items, Ignored: ignored}, nil
}

func (s *Service) replay(ctx context.Context, existing *domain.Quote, ignored []snowflake.ID) (*domain.SaveResult, error) {
	items, err := s.repo.ListItems(ctx, s.db, existing.ID)
	if err != nil {
		return nil, db.Classify(err)
	}
	return &domain.SaveResult{Quote: *existing, Items: items, Ignored: ignored}, nil
}

// Load fetches everything before building the draft, so a failure leaves the
// caller's current draft as it was.
func (s *Service) Load(ctx context.Context, ownerID uuid.UUID, quoteID snowflake.ID) (*domain.LoadResult, error) {
	q, items, err := s.fetchOwned(ctx, ownerID, quoteID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	loaded := draft.LoadFrom(domain.Snapshot(*q, items))
	warnings := domain.DetectStale(items, catalog)

	s.metrics.QuotesLoaded.Inc()
	for _, w := range warnings {
		s.metrics.StaleWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
	if len(warnings) > 0 {
		s.log.Info("loaded quote references stale catalog items",
			zap.String("quote_id", q.ID.String()),
			zap.Int("warnings", len(warnings)),
		)
	}

	return &domain.LoadResult{
		Quote:    *q,
		Items:    items,
		Draft:    loaded.Draft,
		Detached: loaded.Detached,
		Warnings: warnings,
		Catalog:  catalog,
	}, nil
}

func (s *Service) fetchOwned(ctx context.Context, ownerID uuid.UUID, quoteID snowflake.ID) (*domain.Quote, []domain.Item, error) {
	if ownerID == uuid.Nil {
		return nil, nil, apperror.ErrUnauthenticated
	}
	if quoteID == 0 {
		return nil, nil, domain.ErrInvalidID
	}
	q, err := s.repo.FindByID(ctx, s.db, quoteID)
	if err != nil {
		return nil, nil, db.Classify(err)
	}
	if q == nil {
		return nil, nil, domain.ErrNotFound
	}
	if q.OwnerID != ownerID {
		return nil, nil, domain.ErrNotOwner
	}
	items, err := s.repo.ListItems(ctx, s.db, q.ID)
	if err != nil {
		return nil, nil, db.Classify(err)
	}
	return q, items, nil
}

func (s *Service) ListForOwner(ctx context.Context, ownerID uuid.UUID, req domain.ListRequest) (domain.ListResponse, error) {
	if ownerID == uuid.Nil {
		return domain.ListResponse{}, apperror.ErrUnauthenticated
	}

	pageSize := req.PageSize
	if pageSize < 0 {
		pageSize = 0
	} else if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	items, err := s.repo.ListByOwner(ctx, s.db, ownerID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if errors.Is(err, pagination.ErrInvalidCursor) {
		return domain.ListResponse{}, apperror.WithMessage(domain.ErrInvalidID, "invalid page token")
	}
	if err != nil {
		return domain.ListResponse{}, db.Classify(err)
	}

	var pageInfo *pagination.PageInfo
	if pageSize > 0 {
		pageInfo = pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.Quote) string {
			token, err := pagination.EncodeCursor(pagination.Cursor{
				ID:        item.ID.String(),
				CreatedAt: item.UpdatedAt.UTC().Format(time.RFC3339Nano),
			})
			if err != nil {
				return ""
			}
			return token
		})
		if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
			items = items[:pageSize]
		}
	}

	resp := make([]domain.Summary, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		resp = append(resp, domain.Summary{
			ID:        item.ID,
			Name:      item.Name,
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	out := domain.ListResponse{Quotes: resp}
	if pageInfo != nil {
		out.PageInfo = *pageInfo
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, ownerID uuid.UUID, quoteID snowflake.ID) error {
	if ownerID == uuid.Nil {
		return apperror.ErrUnauthenticated
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.repo.FindByID(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.ErrNotFound
		}
		if q.OwnerID != ownerID {
			return domain.ErrNotOwner
		}
		if err := s.repo.DeleteItems(ctx, tx, quoteID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, quoteID)
	})
	if err != nil {
		return db.Classify(err)
	}
	s.log.Info("quote deleted", zap.String("quote_id", quoteID.String()))
	return nil
}

func unknownIDs(catalog []catalogdomain.Item, selected []snowflake.ID) []snowflake.ID {
	known := make(map[snowflake.ID]struct{}, len(catalog))
	for _, item := range catalog {
		known[item.ID] = struct{}{}
	}
	var out []snowflake.ID
	for _, id := range selected {
		if _, ok := known[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
