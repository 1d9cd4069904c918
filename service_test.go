package xfeed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *fakeDoer) {
	store := authedStore()
	c, doer := newTestClient(store)
	return NewService(store, c), doer
}

func seedViews(s *Service, ids ...string) {
	for _, v := range []*View{s.Home, s.Following, s.Bookmarks, s.Likes} {
		v.mu.Lock()
		v.tweets = mkTweets(ids...)
		v.mu.Unlock()
	}
}

func TestServiceLikeBroadcasts(t *testing.T) {
	s, doer := newTestService()
	seedViews(s, "1", "2")

	require.NoError(t, s.Like(context.Background(), "2"))

	assert.Equal(t, 1, doer.callCount())
	assert.Contains(t, doer.lastCall().Body, `"tweet_id":"2"`)
	for _, v := range []*View{s.Home, s.Following, s.Bookmarks, s.Likes} {
		got := v.Tweets()
		assert.False(t, got[0].Liked)
		assert.True(t, got[1].Liked, "every view holding the tweet sees the flip")
	}
}

func TestServiceUnlikeDropsFromLikesView(t *testing.T) {
	s, _ := newTestService()
	seedViews(s, "1", "2")

	require.NoError(t, s.Unlike(context.Background(), "2"))

	assert.Equal(t, []string{"1", "2"}, viewIDs(s.Home))
	assert.False(t, s.Home.Tweets()[1].Liked)
	assert.Equal(t, []string{"1"}, viewIDs(s.Likes), "an unliked tweet leaves the likes view")
}

func TestServiceRemoveBookmarkDropsFromBookmarksView(t *testing.T) {
	s, _ := newTestService()
	seedViews(s, "1", "2")

	require.NoError(t, s.RemoveBookmark(context.Background(), "1"))

	assert.Equal(t, []string{"2"}, viewIDs(s.Bookmarks))
	assert.Equal(t, []string{"1", "2"}, viewIDs(s.Home))
}

func TestServiceMutationFailureLeavesStateUntouched(t *testing.T) {
	s, doer := newTestService()
	seedViews(s, "1")
	doer.enqueue(403, `{"errors":[{"message":"denied"}]}`)

	err := s.Like(context.Background(), "1")
	require.ErrorIs(t, err, ErrAuthRejected)
	assert.False(t, s.Home.Tweets()[0].Liked, "local state flips only after upstream accepts")
}

func TestServiceDetailKeyedByTweetID(t *testing.T) {
	s, _ := newTestService()

	d1 := s.Detail("100")
	d2 := s.Detail("100")
	assert.Same(t, d1, d2, "one state per opened tweet id")
	assert.NotSame(t, d1, s.Detail("200"))

	s.CloseDetail("100")
	assert.NotSame(t, d1, s.Detail("100"), "closing forgets the state")
}

func TestServiceBroadcastReachesOpenDetail(t *testing.T) {
	s, doer := newTestService()

	d := s.Detail("FOCAL")
	doer.enqueue(200, detailBody(`[{
		"entries": [{
			"entryId": "conversationthread-1",
			"content": {"items": [
				`+threadItemJSON("PARENT")+`,
				`+threadItemJSON("FOCAL")+`,
				`+threadItemJSON("R1")+`
			]}
		}]
	}]`))
	require.NoError(t, d.Load(context.Background()))

	require.NoError(t, s.Bookmark(context.Background(), "R1"))
	require.NoError(t, s.Like(context.Background(), "FOCAL"))
	require.NoError(t, s.Like(context.Background(), "PARENT"))

	detail := d.Detail()
	assert.True(t, detail.Liked)
	assert.True(t, detail.ReplyToTweet.Liked)
	assert.True(t, detail.Replies[0].Bookmarked)
}

func TestServiceRefreshAll(t *testing.T) {
	s, doer := newTestService()

	require.NoError(t, s.RefreshAll(context.Background()))
	assert.Equal(t, 4, doer.callCount(), "all four views fetch")
	for _, v := range []*View{s.Home, s.Following, s.Bookmarks, s.Likes} {
		assert.False(t, v.Loading())
		assert.Equal(t, "", v.Err())
	}
}

func TestDetailStateLoadReplaces(t *testing.T) {
	s, doer := newTestService()
	d := s.Detail("FOCAL")

	assert.Nil(t, d.Detail())

	doer.enqueue(200, detailBody(`[{
		"entries": [{
			"entryId": "conversationthread-1",
			"content": {"items": [
				`+threadItemJSON("FOCAL")+`,
				`+threadItemJSON("R1")+`
			]}
		}, `+cursorEntryJSON("cursor-showmorethreads-1", "MORE1")+`]
	}]`))
	require.NoError(t, d.Load(context.Background()))

	detail := d.Detail()
	require.NotNil(t, detail)
	assert.Equal(t, "FOCAL", detail.ID)
	require.Len(t, detail.Replies, 1)
	assert.True(t, detail.HasMoreReplies)
	assert.Equal(t, "MORE1", detail.RepliesCursor)
}

func TestDetailStateLoadMoreReplies(t *testing.T) {
	s, doer := newTestService()
	d := s.Detail("FOCAL")

	// Before the first Load there is nothing to extend.
	require.NoError(t, d.LoadMoreReplies(context.Background()))
	assert.Equal(t, 0, doer.callCount())

	doer.enqueue(200, detailBody(`[{
		"entries": [
			{"entryId": "conversationthread-1", "content": {"items": [
				`+threadItemJSON("FOCAL")+`,
				`+threadItemJSON("R1")+`
			]}},
			`+cursorEntryJSON("cursor-showmorethreads-1", "MORE1")+`
		]
	}]`))
	require.NoError(t, d.Load(context.Background()))

	doer.enqueue(200, detailBody(`[{
		"type": "TimelineAddToModule",
		"moduleItems": [
			`+threadItemJSON("R2")+`,
			`+threadItemJSON("R3")+`
		]
	}]`))
	require.NoError(t, d.LoadMoreReplies(context.Background()))

	detail := d.Detail()
	require.Len(t, detail.Replies, 3)
	assert.Equal(t, "R3", detail.Replies[2].ID)
	assert.False(t, detail.HasMoreReplies, "a page without a cursor ends pagination")

	before := doer.callCount()
	require.NoError(t, d.LoadMoreReplies(context.Background()))
	assert.Equal(t, before, doer.callCount(), "exhausted threads never refetch")
}

func TestDetailStateEmptyContinuationCollapsesCursor(t *testing.T) {
	s, doer := newTestService()
	d := s.Detail("FOCAL")

	doer.enqueue(200, detailBody(`[{
		"entries": [
			`+tweetEntryJSON("FOCAL")+`,
			`+cursorEntryJSON("cursor-showmorethreads-1", "MORE1")+`
		]
	}]`))
	require.NoError(t, d.Load(context.Background()))
	require.True(t, d.Detail().HasMoreReplies)

	doer.enqueue(200, detailBody(`[{
		"entries": [`+cursorEntryJSON("cursor-showmorethreads-2", "MORE2")+`]
	}]`))
	require.NoError(t, d.LoadMoreReplies(context.Background()))

	detail := d.Detail()
	assert.False(t, detail.HasMoreReplies)
	assert.Equal(t, "", detail.RepliesCursor)
}
