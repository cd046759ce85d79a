package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const (
	// UserAgent for page loads
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// RosterSelector is present once the roster grid has rendered.
	RosterSelector = `div.Bd`

	defaultPageTimeout = 45 * time.Second
)

// Client renders Yahoo fantasy pages in a headless browser.
type Client struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	log      *logrus.Entry
}

// NewClient starts a headless Chrome allocator. Close releases it.
func NewClient(log *logrus.Entry) *Client {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  defaultPageTimeout,
		log:      log,
	}
}

// Close releases resources
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchRosterPage returns the rendered HTML of a league's rosters page.
func (c *Client) FetchRosterPage(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, c.timeout)
	defer cancel()

	// stop the browser when the caller gives up
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	c.log.WithField("url", url).Info("loading roster page")

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(RosterSelector, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}
	if html == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}
	return html, nil
}
