package realm

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/httpclient"
	"github.com/rotmg-stash/stash-helper/internal/metrics"
	"github.com/rotmg-stash/stash-helper/internal/rate"
	"github.com/rotmg-stash/stash-helper/pkg/model"
)

const (
	verifyPath   = "/account/verify"
	charListPath = "/char/list"

	// rateLimitedText is the <Error> text the service sends when a client must back off.
	rateLimitedText = "Try again later"
)

// Client talks to the game web service.
type Client struct {
	logger    *zap.Logger
	exec      *httpclient.Executor
	baseURL   string
	guard     *rate.Guard
	guardKey  string
	extractor FieldExtractor
}

// NewClient creates a Client for baseURL. guard may be nil to disable cooldowns.
func NewClient(logger *zap.Logger, exec *httpclient.Executor, baseURL string, guard *rate.Guard) *Client {
	key := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		key = u.Host
	}
	return &Client{
		logger:    logger,
		exec:      exec,
		baseURL:   baseURL,
		guard:     guard,
		guardKey:  key,
		extractor: NewRegexExtractor(),
	}
}

// SetExtractor swaps the tag extraction strategy.
func (c *Client) SetExtractor(ex FieldExtractor) {
	c.extractor = ex
}

// ServiceError returns the text of the first <Error> tag in body, if any.
func (c *Client) ServiceError(body string) (string, bool) {
	return c.extractor.ExtractTaggedField(body, TagError)
}

// checkCooldown fails fast while the service has asked us to back off.
func (c *Client) checkCooldown(ctx context.Context) error {
	if c.guard == nil {
		return nil
	}
	if remaining := c.guard.Check(ctx, c.guardKey); remaining > 0 {
		c.logger.Warn("realm.cooldown_active", zap.Duration("remaining", remaining))
		return model.NewError(model.KindRateLimited, nil)
	}
	return nil
}

// observeRateLimit trips the cooldown when body carries the back-off error.
func (c *Client) observeRateLimit(ctx context.Context, body string) bool {
	msg, ok := c.ServiceError(body)
	if !ok || msg != rateLimitedText {
		return false
	}
	metrics.RateLimitTrips.Inc()
	if c.guard != nil {
		c.guard.Trip(ctx, c.guardKey)
	}
	return true
}
