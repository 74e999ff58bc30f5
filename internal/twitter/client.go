// Package twitter extracts crisis-related tweets via the v2 search API.
package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/models"
	"github.com/crisiswatch/crisiswatch/internal/ratelimit"
	"github.com/crisiswatch/crisiswatch/pkg/config"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
	"github.com/crisiswatch/crisiswatch/pkg/telemetry"
)

// bearerAuthorizer adds the bearer token to outbound API requests
type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// recentSearcher is the slice of the Twitter API the client uses
type recentSearcher interface {
	TweetRecentSearch(ctx context.Context, query string, opts twitter.TweetRecentSearchOpts) (*twitter.TweetRecentSearchResponse, error)
}

// Client searches recent tweets for the configured crisis keywords,
// throttled by the rate limiter and retried on rate-limit signals.
type Client struct {
	api     recentSearcher
	limiter *ratelimit.Limiter
	backoff ratelimit.Backoff
	cfg     config.TwitterConfig
	retries int
	logger  *zap.Logger
	sleep   func(time.Duration)
}

// New creates a Twitter client. Missing credentials are an error so the
// caller can skip this platform without aborting the run.
func New(cfg *config.TwitterConfig, rl *config.RateLimitConfig) (*Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("twitter bearer token is missing")
	}

	logger := logging.WithComponent("twitter-client")

	api := &twitter.Client{
		Authorizer: bearerAuthorizer{token: cfg.BearerToken},
		Client:     &http.Client{Timeout: 30 * time.Second},
		Host:       "https://api.twitter.com",
	}

	client := &Client{
		api: api,
		limiter: ratelimit.New(ratelimit.Config{
			Window:      rl.Window,
			MaxCalls:    rl.MaxCalls,
			MinInterval: rl.MinInterval,
		}),
		backoff: ratelimit.Backoff{Base: rl.BackoffBase, Cap: rl.BackoffCap},
		cfg:     *cfg,
		retries: rl.MaxRetries,
		logger:  logger,
		sleep:   time.Sleep,
	}

	logger.Info("Twitter client initialized",
		zap.Int("keywords", len(cfg.Keywords)),
		zap.Int("max_results", cfg.MaxResults))

	return client, nil
}

// Platform identifies this extractor's source
func (c *Client) Platform() models.Platform {
	return models.PlatformTwitter
}

// Search fetches recent tweets for one query, retrying on rate-limit
// signals up to the retry ceiling.
func (c *Client) Search(ctx context.Context, query string) ([]models.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "twitter.search")
	defer span.End()

	opts := twitter.TweetRecentSearchOpts{
		MaxResults: c.cfg.MaxResults,
		TweetFields: []twitter.TweetField{
			twitter.TweetFieldCreatedAt,
			twitter.TweetFieldPublicMetrics,
			twitter.TweetFieldLanguage,
		},
		Expansions: []twitter.Expansion{twitter.ExpansionAuthorID},
		UserFields: []twitter.UserField{
			twitter.UserFieldUserName,
			twitter.UserFieldLocation,
		},
	}

	for attempt := 0; attempt < c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		res, err := c.api.TweetRecentSearch(ctx, query, opts)
		if err == nil {
			return mapTweets(res), nil
		}

		wait, rateLimited := c.rateLimitWait(err, attempt)
		if !rateLimited {
			return nil, fmt.Errorf("searching tweets for %q: %w", query, err)
		}

		c.logger.Warn("Rate limit exceeded, backing off",
			zap.String("query", query),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait))
		c.sleep(wait)
	}

	return nil, fmt.Errorf("max retries (%d) exceeded for query %q", c.retries, query)
}

// rateLimitWait inspects an API error and, for HTTP 429, returns how
// long to wait: the server-provided reset when usable, exponential
// backoff otherwise.
func (c *Client) rateLimitWait(err error, attempt int) (time.Duration, bool) {
	var apiErr *twitter.ErrorResponse
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		return 0, false
	}

	var reset time.Time
	if apiErr.RateLimit != nil {
		reset = apiErr.RateLimit.Reset.Time()
	}
	return c.backoff.Until(reset, time.Now(), attempt), true
}

// Extract runs the keyword searches and collects all results. A failed
// keyword is logged and skipped; only context cancellation aborts.
func (c *Client) Extract(ctx context.Context) ([]models.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "twitter.extract")
	defer span.End()

	var all []models.Record
	for i, keyword := range c.cfg.Keywords {
		records, err := c.Search(ctx, keyword)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			c.logger.Error("Keyword search failed, skipping",
				zap.String("keyword", keyword),
				zap.Error(err))
			continue
		}

		c.logger.Info("Keyword search complete",
			zap.String("keyword", keyword),
			zap.Int("tweets", len(records)))
		all = append(all, records...)

		// Spread keyword searches out beyond the per-call limit
		if i < len(c.cfg.Keywords)-1 && c.cfg.KeywordDelay > 0 {
			c.sleep(c.cfg.KeywordDelay)
		}
	}

	return all, nil
}

// mapTweets converts an API response into records, validating optional
// fields at the boundary.
func mapTweets(res *twitter.TweetRecentSearchResponse) []models.Record {
	if res == nil || res.Raw == nil {
		return nil
	}

	users := make(map[string]*twitter.UserObj)
	if res.Raw.Includes != nil {
		for _, u := range res.Raw.Includes.Users {
			if u != nil {
				users[u.ID] = u
			}
		}
	}

	records := make([]models.Record, 0, len(res.Raw.Tweets))
	for _, tweet := range res.Raw.Tweets {
		if tweet == nil || tweet.ID == "" {
			continue
		}

		rec := models.Record{
			ID:       tweet.ID,
			Platform: models.PlatformTwitter,
			Text:     tweet.Text,
			Language: tweet.Language,
		}
		if ts, err := time.Parse(time.RFC3339, tweet.CreatedAt); err == nil {
			rec.CreatedAt = ts.UTC()
		}
		if m := tweet.PublicMetrics; m != nil {
			rec.Likes = m.Likes
			rec.Reposts = m.Retweets
			rec.Replies = m.Replies
			rec.Quotes = m.Quotes
		}
		if user, ok := users[tweet.AuthorID]; ok {
			rec.Author = user.UserName
			rec.AuthorLocation = user.Location
		}

		records = append(records, rec)
	}

	return records
}
