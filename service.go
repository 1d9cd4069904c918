package xfeed

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Service wires the client to the four list views and the per-tweet detail
// states. Views are fully independent; a mutation is broadcast to each one
// separately because each owns its own copy of the tweet.
type Service struct {
	client *Client

	Home      *View
	Following *View
	Bookmarks *View
	Likes     *View

	mu      sync.Mutex
	details map[string]*DetailState
}

// NewService builds the view graph over client, subscribing every view to
// credential changes on store.
func NewService(store *CredentialStore, client *Client) *Service {
	s := &Service{
		client:  client,
		details: make(map[string]*DetailState),
	}
	s.Home = NewView(store, func(ctx context.Context, count int, cursor string, seen []string) (*TimelinePage, error) {
		return client.HomeTimeline(ctx, count, cursor, seen)
	})
	s.Following = NewView(store, func(ctx context.Context, count int, cursor string, seen []string) (*TimelinePage, error) {
		return client.HomeLatestTimeline(ctx, count, cursor, seen)
	})
	s.Bookmarks = NewView(store, func(ctx context.Context, count int, cursor string, _ []string) (*TimelinePage, error) {
		return client.Bookmarks(ctx, count, cursor)
	})
	s.Likes = NewView(store, func(ctx context.Context, count int, cursor string, _ []string) (*TimelinePage, error) {
		return client.Likes(ctx, count, cursor)
	})
	return s
}

// RefreshAll refreshes the four list views concurrently. The views share no
// state, so no ordering between them is guaranteed or needed.
func (s *Service) RefreshAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, v := range []*View{s.Home, s.Following, s.Bookmarks, s.Likes} {
		g.Go(func() error { return v.Refresh(ctx) })
	}
	return g.Wait()
}

// Detail returns the detail state for a tweet id, creating it on first use.
// One state exists per opened tweet id.
func (s *Service) Detail(tweetID string) *DetailState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.details[tweetID]; ok {
		return d
	}
	d := &DetailState{client: s.client, tweetID: tweetID}
	s.details[tweetID] = d
	return d
}

// CloseDetail forgets the detail state for a tweet id. An in-flight load on
// the dropped state completes harmlessly against its own instance.
func (s *Service) CloseDetail(tweetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.details, tweetID)
}

// Like likes a tweet upstream, then flips the local flag everywhere.
func (s *Service) Like(ctx context.Context, tweetID string) error {
	if err := s.client.Like(ctx, tweetID); err != nil {
		return err
	}
	s.broadcast(tweetID, func(t *Tweet) { t.Liked = true })
	return nil
}

// Unlike removes a like and drops the tweet from the likes view.
func (s *Service) Unlike(ctx context.Context, tweetID string) error {
	if err := s.client.Unlike(ctx, tweetID); err != nil {
		return err
	}
	s.broadcast(tweetID, func(t *Tweet) { t.Liked = false })
	s.Likes.Remove(tweetID)
	return nil
}

// Bookmark saves a tweet and flips the local flag everywhere.
func (s *Service) Bookmark(ctx context.Context, tweetID string) error {
	if err := s.client.Bookmark(ctx, tweetID); err != nil {
		return err
	}
	s.broadcast(tweetID, func(t *Tweet) { t.Bookmarked = true })
	return nil
}

// RemoveBookmark unsaves a tweet and drops it from the bookmarks view.
func (s *Service) RemoveBookmark(ctx context.Context, tweetID string) error {
	if err := s.client.RemoveBookmark(ctx, tweetID); err != nil {
		return err
	}
	s.broadcast(tweetID, func(t *Tweet) { t.Bookmarked = false })
	s.Bookmarks.Remove(tweetID)
	return nil
}

func (s *Service) broadcast(tweetID string, mutate func(*Tweet)) {
	for _, v := range []*View{s.Home, s.Following, s.Bookmarks, s.Likes} {
		v.apply(tweetID, mutate)
	}

	s.mu.Lock()
	open := make([]*DetailState, 0, len(s.details))
	for _, d := range s.details {
		open = append(open, d)
	}
	s.mu.Unlock()

	for _, d := range open {
		d.apply(tweetID, mutate)
	}
}

// apply clones the matching tweet, mutates the clone, and swaps it in place.
func (v *View) apply(tweetID string, mutate func(*Tweet)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, t := range v.tweets {
		if t.ID == tweetID {
			clone := *t
			mutate(&clone)
			v.tweets[i] = &clone
			return
		}
	}
}

// DetailState is the pagination state of one open tweet-detail surface.
type DetailState struct {
	client  *Client
	tweetID string

	mu      sync.Mutex
	detail  *TweetDetail
	loading bool
	errMsg  string
}

// Load fetches the conversation, replacing any previous detail. Concurrent
// calls while loading are no-ops.
func (d *DetailState) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.loading {
		d.mu.Unlock()
		return nil
	}
	d.loading = true
	d.errMsg = ""
	d.mu.Unlock()

	detail, err := d.client.TweetDetail(ctx, d.tweetID)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.errMsg = err.Error()
		return err
	}
	d.detail = detail
	return nil
}

// LoadMoreReplies appends the next reply page. It is a no-op while loading,
// before the first Load, or once the thread is exhausted. An empty page
// collapses the cursor, preventing a "load more" dead end.
func (d *DetailState) LoadMoreReplies(ctx context.Context) error {
	d.mu.Lock()
	if d.loading || d.detail == nil || !d.detail.HasMoreReplies {
		d.mu.Unlock()
		return nil
	}
	d.loading = true
	d.errMsg = ""
	cursor := d.detail.RepliesCursor
	d.mu.Unlock()

	page, err := d.client.MoreReplies(ctx, d.tweetID, cursor)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.errMsg = err.Error()
		return err
	}
	if d.detail == nil {
		// The owning surface was torn down mid-flight; drop the result.
		return nil
	}

	if len(page.Replies) == 0 {
		d.detail.RepliesCursor = ""
		d.detail.HasMoreReplies = false
		return nil
	}
	d.detail.Replies = append(d.detail.Replies, page.Replies...)
	d.detail.RepliesCursor = page.Cursor
	d.detail.HasMoreReplies = page.Cursor != ""
	return nil
}

// Detail returns the loaded conversation, nil before the first Load.
func (d *DetailState) Detail() *TweetDetail {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detail
}

// Loading reports whether a fetch is in flight.
func (d *DetailState) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// Err returns the message of the last failed fetch, "" after success.
func (d *DetailState) Err() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}

func (d *DetailState) apply(tweetID string, mutate func(*Tweet)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.detail == nil {
		return
	}
	if d.detail.ID == tweetID {
		mutate(&d.detail.Tweet)
	}
	if d.detail.ReplyToTweet != nil && d.detail.ReplyToTweet.ID == tweetID {
		clone := *d.detail.ReplyToTweet
		mutate(&clone)
		d.detail.ReplyToTweet = &clone
	}
	for i, r := range d.detail.Replies {
		if r.ID == tweetID {
			clone := *r
			mutate(&clone)
			d.detail.Replies[i] = &clone
		}
	}
}
