package xfeed

import (
	"context"
	"sync"
)

const defaultPageSize = 20

// FetchFunc loads one timeline page. seenIDs carries the ids returned by the
// previous fetch for endpoints that server-side de-duplicate; fetchers that
// don't support it ignore the argument.
type FetchFunc func(ctx context.Context, count int, cursor string, seenIDs []string) (*TimelinePage, error)

// View is the pagination state of one timeline surface (home, following,
// bookmarks, likes). Each view owns its item list and cursor outright; there
// is no shared store across views.
//
// At most one fetch is in flight per view: a Refresh or LoadMore issued while
// loading is a silent no-op for the redundant caller, never an error. An
// in-flight fetch is never cancelled; its completion re-checks state under
// the lock.
type View struct {
	fetch FetchFunc

	mu      sync.Mutex
	tweets  []*Tweet
	cursor  string
	seenIDs []string
	loading bool
	errMsg  string
}

// NewView creates a view over fetch. When store is non-nil the view
// invalidates itself on every credential change; the UI decides when to
// refetch.
func NewView(store *CredentialStore, fetch FetchFunc) *View {
	v := &View{fetch: fetch}
	if store != nil {
		store.OnChange(v.Invalidate)
	}
	return v
}

// Refresh re-fetches and REPLACES the item list. The current cursor is passed
// through deliberately: refresh continues from the same window rather than
// restarting at the newest items.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.loading {
		v.mu.Unlock()
		return nil
	}
	v.loading = true
	v.errMsg = ""
	cursor, seen := v.cursor, v.seenIDs
	v.mu.Unlock()

	page, err := v.fetch(ctx, defaultPageSize, cursor, seen)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.errMsg = err.Error()
		return err
	}

	v.tweets = page.Tweets
	v.seenIDs = tweetIDs(page.Tweets)
	if page.Cursor != "" {
		v.cursor = page.Cursor
	}
	return nil
}

// LoadMore appends the next page and advances the cursor. It is a no-op when
// a fetch is already running or no cursor is known.
func (v *View) LoadMore(ctx context.Context) error {
	v.mu.Lock()
	if v.loading || v.cursor == "" {
		v.mu.Unlock()
		return nil
	}
	v.loading = true
	v.errMsg = ""
	cursor, seen := v.cursor, v.seenIDs
	v.mu.Unlock()

	page, err := v.fetch(ctx, defaultPageSize, cursor, seen)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.errMsg = err.Error()
		return err
	}

	v.tweets = append(v.tweets, page.Tweets...)
	v.seenIDs = tweetIDs(page.Tweets)
	// An empty cursor here means the timeline is exhausted.
	v.cursor = page.Cursor
	return nil
}

// Update replaces the tweet with the same id in place. Tweets not in the list
// are ignored, never appended.
func (v *View) Update(t *Tweet) {
	if t == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.tweets {
		if existing.ID == t.ID {
			v.tweets[i] = t
			return
		}
	}
}

// Remove drops the tweet with the given id, if present.
func (v *View) Remove(tweetID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.tweets {
		if existing.ID == tweetID {
			v.tweets = append(v.tweets[:i], v.tweets[i+1:]...)
			return
		}
	}
}

// Invalidate clears items, cursor and error state. Loading is left alone: an
// in-flight fetch will complete against the cleared state.
func (v *View) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tweets = nil
	v.cursor = ""
	v.seenIDs = nil
	v.errMsg = ""
}

// Tweets returns a snapshot of the current item list.
func (v *View) Tweets() []*Tweet {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*Tweet, len(v.tweets))
	copy(out, v.tweets)
	return out
}

// Cursor returns the current pagination token, "" when exhausted or unknown.
func (v *View) Cursor() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor
}

// Loading reports whether a fetch is in flight.
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Err returns the message of the last failed fetch, "" after success.
func (v *View) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func tweetIDs(tweets []*Tweet) []string {
	ids := make([]string, 0, len(tweets))
	for _, t := range tweets {
		ids = append(ids, t.ID)
	}
	return ids
}
