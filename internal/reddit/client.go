// Package reddit extracts crisis-related posts from configured subreddits.
package reddit

import (
	"context"
	"fmt"
	"strings"

	reddit "github.com/vartanbeno/go-reddit/v2/reddit"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/models"
	"github.com/crisiswatch/crisiswatch/pkg/config"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
	"github.com/crisiswatch/crisiswatch/pkg/telemetry"
)

// subredditSearcher is the slice of the Reddit API the client uses
type subredditSearcher interface {
	SearchPosts(ctx context.Context, query, subreddit string, opts *reddit.ListPostSearchOptions) ([]*reddit.Post, *reddit.Response, error)
}

// Client searches the configured subreddits for crisis keywords.
type Client struct {
	api    subredditSearcher
	cfg    config.RedditConfig
	logger *zap.Logger
}

// New creates a Reddit client. Missing credentials are an error so the
// caller can skip this platform without aborting the run.
func New(cfg *config.RedditConfig) (*Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("reddit client id or secret is missing")
	}

	logger := logging.WithComponent("reddit-client")

	var (
		api *reddit.Client
		err error
	)
	if cfg.Username != "" && cfg.Password != "" {
		api, err = reddit.NewClient(reddit.Credentials{
			ID:       cfg.ClientID,
			Secret:   cfg.ClientSecret,
			Username: cfg.Username,
			Password: cfg.Password,
		}, reddit.WithUserAgent(cfg.UserAgent))
	} else {
		// App-only access: search only needs the public read API
		api, err = reddit.NewReadonlyClient(reddit.WithUserAgent(cfg.UserAgent))
	}
	if err != nil {
		return nil, fmt.Errorf("creating reddit client: %w", err)
	}

	logger.Info("Reddit client initialized",
		zap.Int("subreddits", len(cfg.Subreddits)),
		zap.Int("keywords", len(cfg.Keywords)),
		zap.String("time_filter", cfg.TimeFilter))

	return &Client{api: api.Subreddit, cfg: *cfg, logger: logger}, nil
}

// Platform identifies this extractor's source
func (c *Client) Platform() models.Platform {
	return models.PlatformReddit
}

// searchQuery joins the crisis keywords into a single OR search
func (c *Client) searchQuery() string {
	return strings.Join(c.cfg.Keywords, " OR ")
}

// Search fetches matching posts from one subreddit
func (c *Client) Search(ctx context.Context, subreddit string) ([]models.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "reddit.search")
	defer span.End()

	opts := &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: c.cfg.Limit},
			Time:        c.cfg.TimeFilter,
		},
		Sort: "relevance",
	}

	posts, _, err := c.api.SearchPosts(ctx, c.searchQuery(), subreddit, opts)
	if err != nil {
		return nil, fmt.Errorf("searching r/%s: %w", subreddit, err)
	}

	return mapPosts(posts), nil
}

// Extract searches every configured subreddit and collects all results.
// A failed subreddit is logged and skipped; only context cancellation
// aborts.
func (c *Client) Extract(ctx context.Context) ([]models.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "reddit.extract")
	defer span.End()

	var all []models.Record
	for _, subreddit := range c.cfg.Subreddits {
		records, err := c.Search(ctx, subreddit)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			c.logger.Error("Subreddit search failed, skipping",
				zap.String("subreddit", subreddit),
				zap.Error(err))
			continue
		}

		c.logger.Info("Subreddit search complete",
			zap.String("subreddit", subreddit),
			zap.Int("posts", len(records)))
		all = append(all, records...)
	}

	return all, nil
}

// mapPosts converts API posts into records
func mapPosts(posts []*reddit.Post) []models.Record {
	records := make([]models.Record, 0, len(posts))
	for _, post := range posts {
		if post == nil || post.ID == "" {
			continue
		}

		rec := models.Record{
			ID:        post.ID,
			Platform:  models.PlatformReddit,
			Title:     post.Title,
			Text:      post.Body,
			Subreddit: post.SubredditName,
			Author:    post.Author,
			Score:     post.Score,
			Comments:  post.NumberOfComments,
			URL:       post.URL,
		}
		if post.Created != nil {
			rec.CreatedAt = post.Created.Time.UTC()
		}

		records = append(records, rec)
	}

	return records
}
