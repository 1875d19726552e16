package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/railzwaylabs/pricecalc/internal/observability"
	"github.com/railzwaylabs/pricecalc/internal/refresh/domain"
	"github.com/railzwaylabs/pricecalc/internal/refresh/domain/mock_domain"
	"github.com/railzwaylabs/pricecalc/internal/refresh/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type catalogMock struct {
	mock.Mock
}

func (m *catalogMock) List(ctx context.Context) ([]catalogdomain.Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]catalogdomain.Item)
	return items, args.Error(1)
}

func (m *catalogMock) Import(ctx context.Context, req catalogdomain.ImportRequest) (*catalogdomain.ImportResult, error) {
	return nil, nil
}

func (m *catalogMock) ListImports(ctx context.Context, limit int) ([]catalogdomain.Import, error) {
	return nil, nil
}

func (m *catalogMock) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fixture struct {
	svc      domain.Service
	lc       *fxtest.Lifecycle
	clk      *clock.Fake
	notifier *mock_domain.MockNotifier
	catalog  *catalogMock
}

func setup(t *testing.T, webhookURL string, refetchDelay time.Duration) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	clk := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	lc := fxtest.NewLifecycle(t)

	f := &fixture{
		lc:       lc,
		clk:      clk,
		notifier: mock_domain.NewMockNotifier(ctrl),
		catalog:  &catalogMock{},
	}

	var cfg config.Config
	cfg.Refresh.WebhookURL = webhookURL
	cfg.Refresh.Cooldown = time.Minute
	cfg.Refresh.RefetchDelay = refetchDelay
	cfg.Refresh.RequestTimeout = time.Second

	f.svc = New(Params{
		Lc:       lc,
		Log:      zap.NewNop(),
		Clock:    clk,
		Cfg:      cfg,
		Gate:     gate.NewMemory(clk),
		Notifier: f.notifier,
		Catalog:  f.catalog,
		Metrics:  observability.NewMetrics(),
	})
	lc.RequireStart()
	return f
}

func TestTriggerCallsWebhookAndRefetches(t *testing.T) {
	f := setup(t, "http://pipeline.local/hook", 10*time.Millisecond)
	defer f.lc.RequireStop()

	reloaded := make(chan struct{})
	f.notifier.EXPECT().Notify(gomock.Any()).Return(nil).Times(1)
	f.catalog.On("Reload", mock.Anything).Run(func(mock.Arguments) { close(reloaded) }).Return(nil).Once()

	res, err := f.svc.Trigger(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, res.TriggeredAt.Add(time.Minute), res.CooldownUntil)
	assert.Equal(t, res.TriggeredAt.Add(10*time.Millisecond), res.RefetchAt)

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("catalog was not re-fetched")
	}
	f.catalog.AssertExpectations(t)
}

func TestTriggerDuringCooldownSkipsWebhook(t *testing.T) {
	f := setup(t, "http://pipeline.local/hook", time.Hour)
	defer f.lc.RequireStop()
	ctx := context.Background()

	f.notifier.EXPECT().Notify(gomock.Any()).Return(nil).Times(2)

	_, err := f.svc.Trigger(ctx, uuid.New())
	require.NoError(t, err)

	f.clk.Advance(15 * time.Second)
	_, err = f.svc.Trigger(ctx, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCooldownActive)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 45*time.Second, appErr.RetryAfter)

	status, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Cooling)
	assert.Equal(t, int64(45), status.RetryAfter)

	f.clk.Advance(45 * time.Second)
	status, err = f.svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Cooling)

	_, err = f.svc.Trigger(ctx, uuid.New())
	require.NoError(t, err)
}

func TestTriggerWebhookFailureKeepsCooldown(t *testing.T) {
	f := setup(t, "http://pipeline.local/hook", time.Hour)
	defer f.lc.RequireStop()
	ctx := context.Background()

	f.notifier.EXPECT().Notify(gomock.Any()).Return(errors.New("connection refused")).Times(1)

	_, err := f.svc.Trigger(ctx, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWebhookFailed)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))

	_, err = f.svc.Trigger(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrCooldownActive)
	f.catalog.AssertNotCalled(t, "Reload", mock.Anything)
}

func TestTriggerWithoutWebhookURL(t *testing.T) {
	f := setup(t, "", time.Hour)
	defer f.lc.RequireStop()

	_, err := f.svc.Trigger(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrWebhookNotConfigured)
	assert.Equal(t, apperror.KindConfiguration, apperror.KindOf(err))

	status, err := f.svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Cooling, "a rejected trigger does not arm the gate")
}

func TestStopCancelsPendingRefetch(t *testing.T) {
	f := setup(t, "http://pipeline.local/hook", time.Hour)

	f.notifier.EXPECT().Notify(gomock.Any()).Return(nil)
	_, err := f.svc.Trigger(context.Background(), uuid.New())
	require.NoError(t, err)

	f.lc.RequireStop()
	f.catalog.AssertNotCalled(t, "Reload", mock.Anything)
}
