package xfeed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchRecord struct {
	count   int
	cursor  string
	seenIDs []string
}

// fakeFetcher records fetch arguments and replays queued pages.
type fakeFetcher struct {
	mu    sync.Mutex
	calls []fetchRecord
	pages []*TimelinePage
	err   error
	block chan struct{}
}

func (f *fakeFetcher) fetch(ctx context.Context, count int, cursor string, seenIDs []string) (*TimelinePage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchRecord{count: count, cursor: cursor, seenIDs: seenIDs})
	block := f.block
	err := f.err
	var page *TimelinePage
	if len(f.pages) > 0 {
		page = f.pages[0]
		f.pages = f.pages[1:]
	}
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &TimelinePage{}
	}
	return page, nil
}

func (f *fakeFetcher) enqueue(page *TimelinePage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) lastRecord() fetchRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func mkTweets(ids ...string) []*Tweet {
	out := make([]*Tweet, 0, len(ids))
	for _, id := range ids {
		out = append(out, &Tweet{ID: id, Text: "tweet " + id})
	}
	return out
}

func viewIDs(v *View) []string {
	return tweetIDs(v.Tweets())
}

func TestViewRefreshReplaces(t *testing.T) {
	f := &fakeFetcher{}
	v := NewView(nil, f.fetch)

	f.enqueue(&TimelinePage{Tweets: mkTweets("1", "2"), Cursor: "C1"})
	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, []string{"1", "2"}, viewIDs(v))
	assert.Equal(t, "C1", v.Cursor())

	f.enqueue(&TimelinePage{Tweets: mkTweets("3"), Cursor: "C2"})
	require.NoError(t, v.Refresh(context.Background()))

	assert.Equal(t, []string{"3"}, viewIDs(v), "refresh replaces, never merges")
	assert.Equal(t, "C2", v.Cursor())
	assert.Equal(t, "C1", f.lastRecord().cursor, "refresh continues from the current window")
	assert.Equal(t, []string{"1", "2"}, f.lastRecord().seenIDs)
}

func TestViewRefreshKeepsCursorOnEmptyPageCursor(t *testing.T) {
	f := &fakeFetcher{}
	v := NewView(nil, f.fetch)

	f.enqueue(&TimelinePage{Tweets: mkTweets("1"), Cursor: "C1"})
	require.NoError(t, v.Refresh(context.Background()))

	f.enqueue(&TimelinePage{Tweets: mkTweets("2")})
	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, "C1", v.Cursor(), "a refresh without a cursor must not wipe pagination")
}

func TestViewLoadMoreAppends(t *testing.T) {
	f := &fakeFetcher{}
	v := NewView(nil, f.fetch)

	f.enqueue(&TimelinePage{Tweets: mkTweets("1", "2"), Cursor: "C1"})
	require.NoError(t, v.Refresh(context.Background()))

	f.enqueue(&TimelinePage{Tweets: mkTweets("3", "4"), Cursor: "C2"})
	require.NoError(t, v.LoadMore(context.Background()))

	assert.Equal(t, []string{"1", "2", "3", "4"}, viewIDs(v))
	assert.Equal(t, "C2", v.Cursor())
	assert.Equal(t, "C1", f.lastRecord().cursor)
}

func TestViewLoadMoreExhaustion(t *testing.T) {
	f := &fakeFetcher{}
	v := NewView(nil, f.fetch)

	f.enqueue(&TimelinePage{Tweets: mkTweets("1"), Cursor: "C1"})
	require.NoError(t, v.Refresh(context.Background()))

	// Final page: tweets but no cursor.
	f.enqueue(&TimelinePage{Tweets: mkTweets("2")})
	require.NoError(t, v.LoadMore(context.Background()))
	assert.Equal(t, "", v.Cursor())

	before := f.callCount()
	require.NoError(t, v.LoadMore(context.Background()))
	assert.Equal(t, before, f.callCount(), "no cursor means no fetch")
	assert.Equal(t, []string{"1", "2"}, viewIDs(v))
}

func TestViewLoadMoreWithoutCursorIsNoop(t *testing.T) {
	f := &fakeFetcher{}
	v := NewView(nil, f.fetch)

	require.NoError(t, v.LoadMore(context.Background()))
	assert.Equal(t, 0, f.callCount())
}

func TestViewConcurrentFetchIsNoop(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{})}
	v := NewView(nil, f.fetch)
	v.cursor = "C1"

	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()

	// Wait for the first fetch to be in flight.
	for f.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	assert.True(t, v.Loading())

	require.NoError(t, v.Refresh(context.Background()))
	require.NoError(t, v.LoadMore(context.Background()))
	assert.Equal(t, 1, f.callCount(), "redundant calls while loading never reach the fetcher")

	close(f.block)
	require.NoError(t, <-done)
	assert.False(t, v.Loading())
}

func TestViewFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	v := NewView(nil, f.fetch)
	v.tweets = mkTweets("1")

	require.Error(t, v.Refresh(context.Background()))
	assert.Equal(t, "boom", v.Err())
	assert.Equal(t, []string{"1"}, viewIDs(v), "stale items survive a failed refresh")
	assert.False(t, v.Loading())

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, "", v.Err(), "error state clears on the next successful fetch")
}

func TestViewUpdateReplacesInPlace(t *testing.T) {
	v := NewView(nil, nil)
	v.tweets = mkTweets("1", "2", "3")

	v.Update(&Tweet{ID: "2", Text: "edited", Liked: true})

	got := v.Tweets()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2", "3"}, viewIDs(v), "order is preserved")
	assert.Equal(t, "edited", got[1].Text)
	assert.True(t, got[1].Liked)
}

func TestViewUpdateUnknownIDIsNoop(t *testing.T) {
	v := NewView(nil, nil)
	v.tweets = mkTweets("1", "2")
	before := v.Tweets()

	v.Update(&Tweet{ID: "404", Text: "ghost"})
	v.Update(nil)

	after := v.Tweets()
	require.Len(t, after, 2)
	for i := range before {
		assert.Same(t, before[i], after[i], "absent ids change nothing, and are never appended")
	}
}

func TestViewRemove(t *testing.T) {
	v := NewView(nil, nil)
	v.tweets = mkTweets("1", "2", "3")

	v.Remove("2")
	assert.Equal(t, []string{"1", "3"}, viewIDs(v))

	v.Remove("404")
	assert.Equal(t, []string{"1", "3"}, viewIDs(v))
}

func TestViewInvalidateOnCredentialChange(t *testing.T) {
	store := NewCredentialStore()
	f := &fakeFetcher{}
	v := NewView(store, f.fetch)
	v.tweets = mkTweets("1")
	v.cursor = "C1"

	store.Set("new-ct0", "new-token", "u%3D7")

	assert.Empty(t, v.Tweets())
	assert.Equal(t, "", v.Cursor())
	assert.Equal(t, 0, f.callCount(), "invalidation never fetches on its own")
}
