package sportradar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	BaseURL                = "https://api.sportradar.us/mlb-t6"
	DefaultRequestInterval = 1050 * time.Millisecond
	DefaultTimeout         = 15 * time.Second
)

// ErrAPIKeyMissing is returned when no API key is configured.
var ErrAPIKeyMissing = errors.New("sportradar api key is not set")

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL         string
	APIKey          string
	RequestInterval time.Duration
	Timeout         time.Duration
	BreakerTimeout  time.Duration
}

// Client talks to the Sportradar MLB API. Every request waits on a shared
// limiter, so consecutive calls are at least RequestInterval apart.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	log        *logrus.Entry
}

// NewClient creates a Sportradar client.
func NewClient(cfg ClientConfig, log *logrus.Entry) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAPIKeyMissing
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = DefaultRequestInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sportradar",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		breaker:    breaker,
		log:        log,
	}, nil
}

// FetchSchedule returns the game IDs scheduled on date.
func (c *Client) FetchSchedule(ctx context.Context, date time.Time) ([]string, error) {
	var schedule Schedule
	if err := c.get(ctx, c.scheduleURL(date), &schedule); err != nil {
		return nil, fmt.Errorf("fetch schedule %s: %w", date.Format("2006-01-02"), err)
	}

	ids := make([]string, 0, len(schedule.Games))
	for _, g := range schedule.Games {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// FetchGameSummary returns the box score summary of one game.
func (c *Client) FetchGameSummary(ctx context.Context, gameID string) (*Summary, error) {
	var summary Summary
	if err := c.get(ctx, c.summaryURL(gameID), &summary); err != nil {
		return nil, fmt.Errorf("fetch game summary %s: %w", gameID, err)
	}
	return &summary, nil
}

func (c *Client) scheduleURL(date time.Time) string {
	return fmt.Sprintf("%s/games/%s/schedule.json?api_key=%s",
		c.baseURL, date.Format("2006/01/02"), url.QueryEscape(c.apiKey))
}

func (c *Client) summaryURL(gameID string) string {
	return fmt.Sprintf("%s/games/%s/summary.json?api_key=%s",
		c.baseURL, url.PathEscape(gameID), url.QueryEscape(c.apiKey))
}

func (c *Client) get(ctx context.Context, rawURL string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
