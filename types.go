package xfeed

import "time"

// TwitterUser is the resolved author of a tweet. Upstream serves user data in
// two shapes (a "legacy" sub-object and a newer "core" sub-object); both are
// normalized into this one.
type TwitterUser struct {
	ID        string
	Name      string
	Username  string
	AvatarURL string
	Verified  bool
	Bio       string
}

// MediaType is the upstream media classification.
type MediaType string

const (
	MediaPhoto       MediaType = "photo"
	MediaVideo       MediaType = "video"
	MediaAnimatedGIF MediaType = "animated_gif"
)

// MediaVariant is one playable rendition of a video or animated GIF.
type MediaVariant struct {
	BitRate     int
	ContentType string
	URL         string
}

// MediaItem is a single photo, video, or animated GIF attached to a tweet.
type MediaItem struct {
	MediaKey   string
	Type       MediaType
	URL        string
	PreviewURL string
	Width      int
	Height     int
	Variants   []MediaVariant
	AltText    string
}

// BestVariantURL returns the URL of the highest-bitrate video/mp4 variant.
// When no mp4 variant exists the preview image serves as a non-playable
// placeholder.
func (m *MediaItem) BestVariantURL() string {
	best := -1
	url := ""
	for _, v := range m.Variants {
		if v.ContentType != "video/mp4" {
			continue
		}
		if v.BitRate > best {
			best = v.BitRate
			url = v.URL
		}
	}
	if url == "" {
		return m.PreviewURL
	}
	return url
}

// TweetMetrics holds the public engagement counters.
type TweetMetrics struct {
	Retweets int
	Replies  int
	Likes    int
	Quotes   int
}

// Tweet is the normalized timeline item. ID is the sole identity key: every
// update locates by ID and replaces in place.
type Tweet struct {
	ID        string
	Text      string
	AuthorID  string
	Author    *TwitterUser
	CreatedAt time.Time
	Metrics   TweetMetrics
	Media     []MediaItem
	Quoted    *Tweet
	ReplyToID string

	// Liked and Bookmarked are local state: parsing seeds them from upstream
	// flags where present, write actions flip them afterwards.
	Liked      bool
	Bookmarked bool
}

// TweetDetail is the focal tweet of a conversation view together with its
// reconstructed surroundings.
type TweetDetail struct {
	Tweet

	// ReplyToTweet is the nearest ancestor only, not the full chain.
	ReplyToTweet *Tweet
	Replies      []*Tweet

	RepliesCursor  string
	HasMoreReplies bool
}

// TimelinePage is one page of a timeline-shaped response.
type TimelinePage struct {
	Tweets []*Tweet
	Cursor string
}

// RepliesPage is one continuation page of a tweet's reply thread.
type RepliesPage struct {
	Replies []*Tweet
	Cursor  string
}
