package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/railzwaylabs/pricecalc/internal/refresh/domain"
)

// Webhook posts an empty JSON request to the pricing pipeline.
type Webhook struct {
	client *http.Client
	url    string
}

func New(cfg config.Config) domain.Notifier {
	return NewWebhook(cfg.Refresh.WebhookURL, cfg.Refresh.RequestTimeout)
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (w *Webhook) Notify(ctx context.Context) error {
	if w.url == "" {
		return domain.ErrWebhookNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("pricing webhook: status=%d", resp.StatusCode)
	}
	return nil
}
