package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/guttosm/freightrates/internal/metrics"
	"github.com/shopspring/decimal"
)

// HTTPSource fetches the latest rate table from a JSON endpoint shaped like
// {"base":"USD","rates":{"EUR":0.91,...}}. The app id, when set, is sent as
// the app_id query parameter.
type HTTPSource struct {
	client         *http.Client
	endpoint       string
	appID          string
	maxElapsedTime time.Duration
	initialBackoff time.Duration
}

// NewHTTPSource bounds each attempt by timeout and retries 429/5xx responses
// with exponential backoff for at most three timeouts overall.
func NewHTTPSource(endpoint, appID string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		client:         &http.Client{Timeout: timeout},
		endpoint:       endpoint,
		appID:          appID,
		maxElapsedTime: 3 * timeout,
		initialBackoff: backoff.DefaultInitialInterval,
	}
}

type latestResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Rates implements RateSource. Every failure wraps ErrUpstreamUnavailable.
func (s *HTTPSource) Rates(ctx context.Context) (RateTable, error) {
	target, err := s.url()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		start := time.Now()
		resp, err := s.client.Do(req)
		metrics.ExchangeRateLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ExchangeRateLookupsTotal.WithLabelValues("upstream", "transport_error").Inc()
			return backoff.Permanent(fmt.Errorf("fetch rates: %w", err))
		}
		defer resp.Body.Close()

		metrics.ExchangeRateLookupsTotal.WithLabelValues("upstream", strconv.Itoa(resp.StatusCode)).Inc()
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("fetch rates: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch rates: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.initialBackoff
	bo.MaxElapsedTime = s.maxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	table, err := decodeRates(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return table, nil
}

func (s *HTTPSource) url() (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if s.appID != "" {
		q := u.Query()
		q.Set("app_id", s.appID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func decodeRates(body []byte) (RateTable, error) {
	var data latestResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if len(data.Rates) == 0 {
		return nil, fmt.Errorf("no rates in response")
	}

	table := make(RateTable, len(data.Rates))
	for code, rate := range data.Rates {
		table[strings.ToUpper(code)] = rate
	}
	if data.Base != "" {
		if _, ok := table[strings.ToUpper(data.Base)]; !ok {
			table[strings.ToUpper(data.Base)] = decimal.NewFromInt(1)
		}
	}
	return table, nil
}
