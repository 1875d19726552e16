package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/railzwaylabs/pricecalc/internal/draft"
	"github.com/railzwaylabs/pricecalc/internal/migration"
	"github.com/railzwaylabs/pricecalc/internal/observability"
	"github.com/railzwaylabs/pricecalc/internal/quote/domain"
	"github.com/railzwaylabs/pricecalc/internal/quote/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	seatsID   snowflake.ID = 1001
	storageID snowflake.ID = 1002
	supportID snowflake.ID = 1003
)

// catalogStub serves a fixed catalog that tests can swap between calls.
type catalogStub struct {
	items []catalogdomain.Item
	err   error
}

func (c *catalogStub) List(context.Context) ([]catalogdomain.Item, error) {
	return c.items, c.err
}
func (c *catalogStub) Import(context.Context, catalogdomain.ImportRequest) (*catalogdomain.ImportResult, error) {
	return nil, nil
}
func (c *catalogStub) ListImports(context.Context, int) ([]catalogdomain.Import, error) {
	return nil, nil
}
func (c *catalogStub) Reload(context.Context) error { return nil }

func defaultCatalog() []catalogdomain.Item {
	return []catalogdomain.Item{
		{ID: seatsID, Module: "Core", Feature: "Seats", Unit: "seat", MonthlyPrice: 10, Increment: 1, ReleaseStage: catalogdomain.GeneralAvailability},
		{ID: storageID, Module: "Core", Feature: "Storage", Unit: "GB", MonthlyPrice: 0.5, Increment: 10, ReleaseStage: catalogdomain.GeneralAvailability},
		{ID: supportID, Module: "Services", Feature: "Support", Unit: "hour", MonthlyPrice: 90, Increment: 1, ReleaseStage: catalogdomain.GeneralAvailability},
	}
}

type testEnv struct {
	db      *gorm.DB
	clock   *clock.Fake
	catalog *catalogStub
	svc     domain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.AutoMigrate(context.Background(), conn))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	cfg := config.Config{}
	cfg.Currency.Symbol = "£"

	fake := clock.NewFake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	stub := &catalogStub{items: defaultCatalog()}
	svc := New(Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   fake,
		Cfg:     cfg,
		Repo:    repository.Provide(),
		Catalog: stub,
		Metrics: observability.NewMetrics(),
	})
	return &testEnv{db: conn, clock: fake, catalog: stub, svc: svc}
}

func ptr[T any](v T) *T { return &v }

func sampleDraft() draft.Draft {
	return draft.New().
		SetName("Acme Renewal").
		SetQuantity(seatsID, 3).
		SetQuantity(storageID, 20).
		SetFeePercent(ptr(50.0)).
		SetDiscountPercent(ptr(10.0)).
		SetMetrics(draft.Metrics{Sector: ptr("Retail"), FTEs: ptr(100.0)})
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft()})
	require.NoError(t, err)
	require.NotZero(t, saved.Quote.ID)
	assert.Equal(t, "Acme Renewal", saved.Quote.Name)
	require.Len(t, saved.Items, 2)
	assert.Empty(t, saved.Ignored)

	loaded, err := env.svc.Load(ctx, owner, saved.Quote.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Warnings)
	assert.Equal(t, 0, loaded.Detached)

	d := loaded.Draft
	assert.Equal(t, saved.Quote.ID, d.QuoteID())
	assert.Equal(t, "Acme Renewal", d.Name())
	assert.Equal(t, map[snowflake.ID]int{seatsID: 3, storageID: 20}, d.Quantities())
	assert.Equal(t, ptr(50.0), d.FeePercent())
	assert.Equal(t, ptr(10.0), d.DiscountPercent())
	assert.Equal(t, ptr("Retail"), d.Metrics().Sector)
	assert.Equal(t, ptr(100.0), d.Metrics().FTEs)
	assert.Nil(t, d.Metrics().Champion)
}

func TestSaveUpdateReplacesItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft()})
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	edited := sampleDraft().
		SetName("Acme Renewal v2").
		SetQuantity(storageID, 0).
		SetQuantity(supportID, 4).
		SetFeePercent(nil)
	updated, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, QuoteID: saved.Quote.ID, Draft: edited})
	require.NoError(t, err)
	assert.Equal(t, saved.Quote.ID, updated.Quote.ID)
	assert.Equal(t, saved.Quote.CreatedAt, updated.Quote.CreatedAt)

	loaded, err := env.svc.Load(ctx, owner, saved.Quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Renewal v2", loaded.Quote.Name)
	assert.Nil(t, loaded.Quote.ImplementationFeePercent, "cleared fee is persisted")
	assert.Equal(t, map[snowflake.ID]int{seatsID: 3, supportID: 4}, loaded.Draft.Quantities())
	assert.Equal(t, int64(2), countRows(t, env.db, &domain.Item{}))
}

func TestSaveUpdateRollsBackWhenItemInsertFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft()})
	require.NoError(t, err)

	boom := errors.New("item insert failed")
	require.NoError(t, env.db.Callback().Create().Before("gorm:create").Register("test:fail_quote_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "quote_items" {
			_ = tx.AddError(boom)
		}
	}))

	env.clock.Advance(time.Hour)
	changed := sampleDraft().
		SetName("Renamed").
		SetQuantity(storageID, 0).
		SetQuantity(supportID, 2)
	_, err = env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, QuoteID: saved.Quote.ID, Draft: changed})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, apperror.KindTransient, apperror.KindOf(err))

	require.NoError(t, env.db.Callback().Create().Remove("test:fail_quote_items"))

	// Header update and item delete ran inside the same transaction.
	var header domain.Quote
	require.NoError(t, env.db.First(&header, "id = ?", saved.Quote.ID).Error)
	assert.Equal(t, "Acme Renewal", header.Name)
	assert.True(t, header.UpdatedAt.Equal(saved.Quote.UpdatedAt))

	var items []domain.Item
	require.NoError(t, env.db.Where("quote_id = ?", saved.Quote.ID).Find(&items).Error)
	got := map[snowflake.ID]int{}
	for _, it := range items {
		require.NotNil(t, it.CatalogItemID)
		got[*it.CatalogItemID] = it.Quantity
	}
	assert.Equal(t, map[snowflake.ID]int{seatsID: 3, storageID: 20}, got)
}

// savedLine is a quote item without the fields a re-save is allowed to change.
type savedLine struct {
	CatalogItemID snowflake.ID
	Module        string
	Feature       string
	Unit          string
	MonthlyPrice  float64
	Quantity      int
}

func savedLines(t *testing.T, items []domain.Item) map[snowflake.ID]savedLine {
	t.Helper()
	out := make(map[snowflake.ID]savedLine, len(items))
	for _, it := range items {
		require.NotNil(t, it.CatalogItemID)
		out[*it.CatalogItemID] = savedLine{
			CatalogItemID: *it.CatalogItemID,
			Module:        it.Module,
			Feature:       it.Feature,
			Unit:          it.Unit,
			MonthlyPrice:  it.MonthlyPrice,
			Quantity:      it.Quantity,
		}
	}
	return out
}

func TestSaveUnchangedDraftTwiceOnlyMovesUpdatedAt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft()})
	require.NoError(t, err)
	first, err := env.svc.Load(ctx, owner, saved.Quote.ID)
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	_, err = env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, QuoteID: saved.Quote.ID, Draft: first.Draft})
	require.NoError(t, err)
	second, err := env.svc.Load(ctx, owner, saved.Quote.ID)
	require.NoError(t, err)

	assert.True(t, second.Quote.UpdatedAt.After(first.Quote.UpdatedAt))

	before, after := first.Quote, second.Quote
	before.UpdatedAt, after.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, before, after)

	assert.Equal(t, savedLines(t, first.Items), savedLines(t, second.Items))
	assert.Equal(t, int64(2), countRows(t, env.db, &domain.Item{}))
}

func TestSaveRejectsInvalidDrafts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	cases := map[string]struct {
		draft draft.Draft
		want  error
	}{
		"no items":        {draft: draft.New().SetName("Empty"), want: domain.ErrEmptyQuote},
		"unknown items":   {draft: draft.New().SetName("Ghost").SetQuantity(9999, 2), want: domain.ErrEmptyQuote},
		"no name":         {draft: draft.New().SetQuantity(seatsID, 1), want: domain.ErrNameRequired},
		"discount at 100": {draft: sampleDraft().SetDiscountPercent(ptr(100.0)), want: draft.ErrInvalidDiscount},
		"negative fee":    {draft: sampleDraft().SetFeePercent(ptr(-1.0)), want: draft.ErrInvalidFee},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: tc.draft})
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, countRows(t, env.db, &domain.Quote{}), "rejected saves write nothing")
	assert.Zero(t, countRows(t, env.db, &domain.Item{}))

	_, err := env.svc.Save(ctx, domain.SaveRequest{Draft: sampleDraft()})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestSaveReportsIgnoredIds(t *testing.T) {
	env := newTestEnv(t)
	saved, err := env.svc.Save(context.Background(), domain.SaveRequest{
		OwnerID: uuid.New(),
		Draft:   sampleDraft().SetQuantity(9999, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{9999}, saved.Ignored)
	assert.Len(t, saved.Items, 2)
}

func TestSaveIsIdempotentPerKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	req := domain.SaveRequest{OwnerID: owner, Draft: sampleDraft(), IdempotencyKey: "click-1"}

	first, err := env.svc.Save(ctx, req)
	require.NoError(t, err)
	second, err := env.svc.Save(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.Quote.ID, second.Quote.ID)
	assert.Len(t, second.Items, 2)
	assert.Equal(t, int64(1), countRows(t, env.db, &domain.Quote{}))

	// The same key from another user is a different request.
	other, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: uuid.New(), Draft: sampleDraft(), IdempotencyKey: "click-1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Quote.ID, other.Quote.ID)
}

func TestQuotesAreOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft()})
	require.NoError(t, err)
	id := saved.Quote.ID

	_, err = env.svc.Load(ctx, stranger, id)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = env.svc.Save(ctx, domain.SaveRequest{OwnerID: stranger, QuoteID: id, Draft: sampleDraft()})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.ErrorIs(t, env.svc.Delete(ctx, stranger, id), domain.ErrNotOwner)
	_, err = env.svc.Export(ctx, stranger, id, domain.ExportFormatCSV)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = env.svc.Load(ctx, owner, 424242)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.svc.Load(ctx, owner, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	list, err := env.svc.ListForOwner(ctx, stranger, domain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Quotes)
}

func TestLoadWarnsAboutStaleCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft()})
	require.NoError(t, err)

	// Seats got more expensive and storage left the catalog.
	catalog := defaultCatalog()
	catalog[0].MonthlyPrice = 12
	env.catalog.items = []catalogdomain.Item{catalog[0], catalog[2]}
	require.NoError(t, env.db.Model(&domain.Item{}).
		Where("catalog_item_id = ?", storageID).
		Update("catalog_item_id", nil).Error)

	loaded, err := env.svc.Load(ctx, owner, saved.Quote.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Detached)
	assert.Equal(t, map[snowflake.ID]int{seatsID: 3}, loaded.Draft.Quantities())

	require.Len(t, loaded.Warnings, 2)
	kinds := map[string]domain.StaleKind{}
	for _, w := range loaded.Warnings {
		kinds[w.Feature] = w.Kind
	}
	assert.Equal(t, domain.StalePriceChanged, kinds["Seats"])
	assert.Equal(t, domain.StaleRemoved, kinds["Storage"])
	assert.Equal(t, env.catalog.items, loaded.Catalog)
}

func TestLoadFailureIsReported(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft()})
	require.NoError(t, err)

	env.catalog.err = catalogdomain.ErrCatalogNotReady
	_, err = env.svc.Load(ctx, owner, saved.Quote.ID)
	assert.Equal(t, apperror.KindTransient, apperror.KindOf(err))
}

func TestListForOwnerPaginatesByRecency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	var ids []snowflake.ID
	for _, name := range []string{"First", "Second", "Third"} {
		saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft().SetName(name)})
		require.NoError(t, err)
		ids = append(ids, saved.Quote.ID)
		env.clock.Advance(time.Minute)
	}

	page, err := env.svc.ListForOwner(ctx, owner, domain.ListRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Quotes, 2)
	assert.Equal(t, "Third", page.Quotes[0].Name)
	assert.Equal(t, "Second", page.Quotes[1].Name)
	require.True(t, page.PageInfo.HasMore)

	rest, err := env.svc.ListForOwner(ctx, owner, domain.ListRequest{PageSize: 2, PageToken: page.PageInfo.NextPageToken})
	require.NoError(t, err)
	require.Len(t, rest.Quotes, 1)
	assert.Equal(t, ids[0], rest.Quotes[0].ID)
	assert.False(t, rest.PageInfo.HasMore)

	all, err := env.svc.ListForOwner(ctx, owner, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Quotes, 3)

	_, err = env.svc.ListForOwner(ctx, owner, domain.ListRequest{PageSize: 2, PageToken: "not-a-token"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestDeleteRemovesQuoteAndItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft()})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, owner, saved.Quote.ID))
	assert.Zero(t, countRows(t, env.db, &domain.Quote{}))
	assert.Zero(t, countRows(t, env.db, &domain.Item{}))

	assert.ErrorIs(t, env.svc.Delete(ctx, owner, saved.Quote.ID), domain.ErrNotFound)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{
		OwnerID: owner,
		Draft:   draft.New().SetName("Acme Renewal").SetQuantity(seatsID, 3).SetFeePercent(ptr(50.0)).SetDiscountPercent(ptr(10.0)),
	})
	require.NoError(t, err)

	// Exports price the saved snapshot even after the catalog moves on.
	env.catalog.items = nil

	file, err := env.svc.Export(ctx, owner, saved.Quote.ID, domain.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "acme-renewal.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)

	r := csv.NewReader(bytes.NewReader(file.Data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"module", "feature", "unit", "quantity", "monthly_price", "line_monthly"}, records[0])
	assert.Equal(t, []string{"Core", "Seats", "seat", "3", "10.00", "30.00"}, records[1])

	totals := map[string]string{}
	for _, rec := range records[2:] {
		if len(rec) == 2 {
			totals[rec[0]] = rec[1]
		}
	}
	assert.Equal(t, map[string]string{
		"monthly_cost":       "30.00",
		"base_annual_cost":   "360.00",
		"discount_amount":    "36.00",
		"annual_cost":        "324.00",
		"implementation_fee": "162.00",
		"total_cost":         "486.00",
	}, totals)
}

func TestExportPDF(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	saved, err := env.svc.Save(ctx, domain.SaveRequest{OwnerID: owner, Draft: sampleDraft()})
	require.NoError(t, err)

	file, err := env.svc.Export(ctx, owner, saved.Quote.ID, domain.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "acme-renewal.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))

	_, err = env.svc.Export(ctx, owner, saved.Quote.ID, "xlsx")
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
}
