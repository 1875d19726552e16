// Package domain defines the pricing refresh trigger: a cooldown gate in
// front of an outbound webhook that starts the external pricing pipeline.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
)

//go:generate mockgen -source=domain.go -destination=mock_domain/mock_notifier.go -package=mock_domain Notifier

// Gate serializes refresh triggers. At most one trigger is accepted per
// cooldown window.
type Gate interface {
	// Arm opens a window of the given length when none is running. When one
	// is running it reports armed=false and the time left in it.
	Arm(ctx context.Context, window time.Duration) (remaining time.Duration, armed bool, err error)
	// Remaining is zero when the gate is idle.
	Remaining(ctx context.Context) (time.Duration, error)
}

// Notifier tells the external pipeline to re-fetch prices.
type Notifier interface {
	Notify(ctx context.Context) error
}

type Service interface {
	Trigger(ctx context.Context, actor uuid.UUID) (*TriggerResult, error)
	Status(ctx context.Context) (*Status, error)
}

type TriggerResult struct {
	TriggeredAt   time.Time `json:"triggered_at"`
	CooldownUntil time.Time `json:"cooldown_until"`
	RefetchAt     time.Time `json:"refetch_at"`
}

type Status struct {
	Cooling       bool       `json:"cooling"`
	RetryAfter    int64      `json:"retry_after_seconds"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
}

var (
	ErrCooldownActive       = apperror.New(apperror.KindCooldown, "cooldown_active", "pricing refresh is cooling down, try again shortly")
	ErrWebhookNotConfigured = apperror.New(apperror.KindConfiguration, "webhook_not_configured", "pricing refresh webhook is not configured")
	ErrWebhookFailed        = apperror.New(apperror.KindUpstream, "webhook_failed", "pricing refresh webhook call failed")
)

// CooldownError carries the time left in the running window.
func CooldownError(remaining time.Duration) error {
	err := *ErrCooldownActive
	err.RetryAfter = remaining
	return &err
}
