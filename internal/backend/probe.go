package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// ProbeConfig holds configuration for the startup readiness probe.
type ProbeConfig struct {
	// InitialInterval of the probe backoff. Default: 500ms.
	InitialInterval time.Duration

	// MaxInterval of the probe backoff. Default: 10 seconds.
	MaxInterval time.Duration

	// MaxElapsedTime bounds the whole wait. Default: 1 minute.
	MaxElapsedTime time.Duration
}

// WaitReady polls the backend health endpoint with exponential backoff
// until it answers or the bound elapses. This is the only place the
// client retries: resource fetches are single-attempt with
// user-initiated retry.
func (c *Client) WaitReady(ctx context.Context, cfg ProbeConfig, log zerolog.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	if bo.InitialInterval == 0 {
		bo.InitialInterval = 500 * time.Millisecond
	}
	bo.MaxInterval = cfg.MaxInterval
	if bo.MaxInterval == 0 {
		bo.MaxInterval = 10 * time.Second
	}
	bo.MaxElapsedTime = cfg.MaxElapsedTime
	if bo.MaxElapsedTime == 0 {
		bo.MaxElapsedTime = time.Minute
	}

	attempt := 0
	operation := func() error {
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathHealth, http.NoBody)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Debug().Int("attempt", attempt).Err(err).Msg("backend not ready")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			log.Debug().Int("attempt", attempt).Int("status", resp.StatusCode).Msg("backend not ready")
			return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
		}

		// Any non-5xx answer means the backend is up; older
		// deployments without a health route 404 here.
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("backend readiness: %w", err)
	}

	log.Info().Int("attempts", attempt).Msg("insight backend reachable")
	return nil
}
