package xfeed

import "context"

// Write actions. Each is a POST mutation with the tweet id as the only
// variable; upstream acknowledges with a body this layer does not need to
// inspect beyond the HTTP status. The caller flips the local Liked/Bookmarked
// flag after success.

// Like marks a tweet as liked.
func (c *Client) Like(ctx context.Context, tweetID string) error {
	_, err := c.post(ctx, "FavoriteTweet", map[string]any{"tweet_id": tweetID})
	return err
}

// Unlike removes a like.
func (c *Client) Unlike(ctx context.Context, tweetID string) error {
	_, err := c.post(ctx, "UnfavoriteTweet", map[string]any{"tweet_id": tweetID})
	return err
}

// Bookmark saves a tweet to bookmarks.
func (c *Client) Bookmark(ctx context.Context, tweetID string) error {
	_, err := c.post(ctx, "CreateBookmark", map[string]any{"tweet_id": tweetID})
	return err
}

// RemoveBookmark deletes a tweet from bookmarks.
func (c *Client) RemoveBookmark(ctx context.Context, tweetID string) error {
	_, err := c.post(ctx, "DeleteBookmark", map[string]any{"tweet_id": tweetID})
	return err
}
