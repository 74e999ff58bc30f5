package reddit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	reddit "github.com/vartanbeno/go-reddit/v2/reddit"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/models"
	"github.com/crisiswatch/crisiswatch/pkg/config"
)

type fakeSearcher struct {
	posts      map[string][]*reddit.Post
	errs       map[string]error
	subreddits []string
	queries    []string
	limits     []int
}

func (f *fakeSearcher) SearchPosts(ctx context.Context, query, subreddit string, opts *reddit.ListPostSearchOptions) ([]*reddit.Post, *reddit.Response, error) {
	f.subreddits = append(f.subreddits, subreddit)
	f.queries = append(f.queries, query)
	if opts != nil {
		f.limits = append(f.limits, opts.Limit)
	}
	if err := f.errs[subreddit]; err != nil {
		return nil, nil, err
	}
	return f.posts[subreddit], nil, nil
}

func newTestClient(api subredditSearcher, subreddits []string) *Client {
	return &Client{
		api: api,
		cfg: config.RedditConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			Subreddits:   subreddits,
			Keywords:     []string{"depressed", "anxiety", "crisis"},
			Limit:        50,
			TimeFilter:   "month",
		},
		logger: zap.NewNop(),
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(&config.RedditConfig{ClientID: "id"})
	if err == nil {
		t.Fatal("expected error when client secret is missing")
	}
}

func TestSearchQuery(t *testing.T) {
	client := newTestClient(nil, nil)
	want := "depressed OR anxiety OR crisis"
	if got := client.searchQuery(); got != want {
		t.Errorf("searchQuery() = %q, want %q", got, want)
	}
}

func TestSearchPassesOptions(t *testing.T) {
	api := &fakeSearcher{posts: map[string][]*reddit.Post{}}
	client := newTestClient(api, nil)

	if _, err := client.Search(context.Background(), "depression"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(api.subreddits) != 1 || api.subreddits[0] != "depression" {
		t.Errorf("subreddits = %v, want [depression]", api.subreddits)
	}
	if !strings.Contains(api.queries[0], " OR ") {
		t.Errorf("query = %q, want OR-joined keywords", api.queries[0])
	}
	if len(api.limits) != 1 || api.limits[0] != 50 {
		t.Errorf("limit = %v, want [50]", api.limits)
	}
}

func TestExtractSkipsFailedSubreddits(t *testing.T) {
	created := reddit.Timestamp{Time: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	api := &fakeSearcher{
		posts: map[string][]*reddit.Post{
			"anxiety": {
				{
					ID:               "abc",
					Title:            "feeling overwhelmed",
					Body:             "can't cope lately",
					SubredditName:    "anxiety",
					Author:           "throwaway",
					Score:            12,
					NumberOfComments: 4,
					URL:              "https://reddit.com/r/anxiety/abc",
					Created:          &created,
				},
			},
		},
		errs: map[string]error{"depression": errors.New("boom")},
	}
	client := newTestClient(api, []string{"depression", "anxiety"})

	records, err := client.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Extract() returned %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Platform != models.PlatformReddit {
		t.Errorf("Platform = %q, want reddit", rec.Platform)
	}
	if rec.ID != "abc" || rec.Subreddit != "anxiety" || rec.Score != 12 || rec.Comments != 4 {
		t.Errorf("unexpected record mapping: %+v", rec)
	}
	if !rec.CreatedAt.Equal(created.Time) {
		t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, created.Time)
	}
	if got := rec.FullText(); got != "feeling overwhelmed can't cope lately" {
		t.Errorf("FullText() = %q", got)
	}
}

func TestMapPostsSkipsBlank(t *testing.T) {
	records := mapPosts([]*reddit.Post{nil, {ID: ""}, {ID: "x", Title: "ok"}})
	if len(records) != 1 || records[0].ID != "x" {
		t.Fatalf("mapPosts() = %+v, want single record x", records)
	}
}
