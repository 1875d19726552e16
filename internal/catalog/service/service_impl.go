package service

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	"github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/railzwaylabs/pricecalc/internal/observability"
	"github.com/railzwaylabs/pricecalc/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
	Cache   domain.Cache
	Metrics *observability.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	cache   domain.Cache
	metrics *observability.Metrics

	releaseStage   string
	maxImportBytes int64
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("catalog.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		cache:          p.Cache,
		metrics:        p.Metrics,
		releaseStage:   p.Cfg.Catalog.ReleaseStage,
		maxImportBytes: p.Cfg.HTTP.MaxUploadBytes,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Item, error) {
	items, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn("catalog cache read failed, using database", zap.Error(err))
	}
	if ok {
		return items, nil
	}
	return s.loadAndCache(ctx)
}

func (s *Service) loadAndCache(ctx context.Context) ([]domain.Item, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, apperror.Wrap(domain.ErrCatalogNotReady, db.Classify(err))
	}
	if err := s.cache.Set(ctx, items); err != nil {
		s.log.Warn("catalog cache write failed", zap.Error(err))
	}
	s.metrics.CatalogRows.Set(float64(len(items)))
	return items, nil
}

func (s *Service) Reload(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
	items, err := s.loadAndCache(ctx)
	if err != nil {
		return err
	}
	s.log.Info("catalog reloaded", zap.Int("items", len(items)))
	return nil
}

func (s *Service) ListImports(ctx context.Context, limit int) ([]domain.Import, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records, err := s.repo.ListImports(ctx, s.db, limit)
	if err != nil {
		return nil, db.Classify(err)
	}
	return records, nil
}

func (s *Service) Import(ctx context.Context, req domain.ImportRequest) (*domain.ImportResult, error) {
	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source != domain.SourceCSV && source != domain.SourceCLI {
		return nil, domain.ErrInvalidSource
	}
	if req.Body == nil {
		return nil, domain.ErrEmptyImport
	}

	result, err := s.importCSV(ctx, req, source)
	outcome := "success"
	if err != nil {
		outcome = string(apperror.KindOf(err))
	}
	s.metrics.CatalogImports.WithLabelValues(source, outcome).Inc()
	return result, err
}

func (s *Service) importCSV(ctx context.Context, req domain.ImportRequest, source string) (*domain.ImportResult, error) {
	body := req.Body
	if s.maxImportBytes > 0 {
		body = io.LimitReader(body, s.maxImportBytes+1)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, apperror.WithMessage(domain.ErrInvalidRow, "read upload: %v", err)
	}
	if s.maxImportBytes > 0 && int64(len(raw)) > s.maxImportBytes {
		return nil, domain.ErrImportTooLarge
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, domain.ErrEmptyImport
	}

	parsed, err := parseCatalogCSV(bytes.NewReader(raw), s.releaseStage)
	if err != nil {
		return nil, err
	}
	if len(parsed.rows) == 0 {
		return nil, apperror.WithMessage(domain.ErrNoAcceptedRows, "no rows have release stage %q (%d skipped)", s.releaseStage, parsed.skipped)
	}

	now := s.clock.Now(ctx).UTC()
	result := &domain.ImportResult{
		Skipped:       parsed.skipped,
		SkippedStages: parsed.skippedStages,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.List(ctx, tx)
		if err != nil {
			return err
		}
		byKey := make(map[domain.Key]domain.Item, len(existing))
		for _, item := range existing {
			byKey[item.Key()] = item
		}

		items := make([]domain.Item, 0, len(parsed.rows))
		keep := make([]snowflake.ID, 0, len(parsed.rows))
		for _, row := range parsed.rows {
			item := domain.Item{
				Module:       row.Module,
				Feature:      row.Feature,
				Unit:         row.Unit,
				MonthlyPrice: row.MonthlyPrice,
				Increment:    row.Increment,
				ReleaseStage: row.ReleaseStage,
				CreatedBy:    req.Actor,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if prev, ok := byKey[row.Key()]; ok {
				item.ID = prev.ID
				item.CreatedAt = prev.CreatedAt
				keep = append(keep, prev.ID)
				result.Retained++
			} else {
				item.ID = s.genID.Generate()
			}
			items = append(items, item)
		}

		if err := s.repo.DetachQuoteItems(ctx, tx, keep); err != nil {
			return err
		}
		removed, err := s.repo.DeleteExcept(ctx, tx, keep)
		if err != nil {
			return err
		}
		result.Removed = removed

		if err := s.repo.Upsert(ctx, tx, items); err != nil {
			return err
		}
		result.Inserted = len(items)

		record := &domain.Import{
			ID:        s.genID.Generate(),
			Source:    source,
			CreatedBy: req.Actor,
			Inserted:  result.Inserted,
			Retained:  result.Retained,
			Skipped:   result.Skipped,
			CreatedAt: now,
		}
		if len(parsed.skippedStages) > 0 {
			stages := make(map[string]any, len(parsed.skippedStages))
			for stage, n := range parsed.skippedStages {
				stages[stage] = n
			}
			record.Metadata = datatypes.JSONMap{"skipped_stages": stages}
		}
		if err := s.repo.CreateImport(ctx, tx, record); err != nil {
			return err
		}
		result.ImportID = record.ID.String()
		return nil
	})
	if err != nil {
		s.log.Error("catalog import failed", zap.String("source", source), zap.Error(err))
		return nil, db.Classify(err)
	}

	if err := s.Reload(ctx); err != nil {
		s.log.Warn("catalog import committed but reload failed", zap.Error(err))
	}

	s.log.Info("catalog imported",
		zap.String("import_id", result.ImportID),
		zap.String("source", source),
		zap.Int("inserted", result.Inserted),
		zap.Int("retained", result.Retained),
		zap.Int64("removed", result.Removed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
