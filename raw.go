package xfeed

import "encoding/json"

// Raw upstream wire shapes. Every endpoint nests differently at the top, but
// all share the instructions → entries → content → itemContent →
// tweet_results.result pattern. The shapes here are an external, versioned,
// occasionally-breaking contract; the fixtures in the _test.go files pin the
// variants this package supports.

type timelineObj struct {
	Instructions []timelineInstruction `json:"instructions"`
}

type timelineInstruction struct {
	Type        string          `json:"type"`
	Entries     []timelineEntry `json:"entries"`
	Entry       *timelineEntry  `json:"entry"`
	ModuleItems []moduleItem    `json:"moduleItems"`
}

type timelineEntry struct {
	EntryID   string          `json:"entryId"`
	SortIndex string          `json:"sortIndex"`
	Content   timelineContent `json:"content"`
}

type timelineContent struct {
	EntryType   string               `json:"entryType"`
	TypeName    string               `json:"__typename"`
	ItemContent *timelineItemContent `json:"itemContent"`
	Items       []moduleItem         `json:"items"`
	Value       string               `json:"value"`
	CursorType  string               `json:"cursorType"`
}

// moduleItem is the container upstream uses both inside conversation-thread
// entries and in paginated reply continuations.
type moduleItem struct {
	EntryID string `json:"entryId"`
	Item    struct {
		ItemContent timelineItemContent `json:"itemContent"`
	} `json:"item"`
}

type timelineItemContent struct {
	TypeName     string `json:"__typename"`
	ItemType     string `json:"itemType"`
	TweetResults struct {
		Result *rawTweetResult `json:"result"`
	} `json:"tweet_results"`
	Value      string `json:"value"`
	CursorType string `json:"cursorType"`
}

// rawTweetResult is one tweet node of unknown variant: a normal tweet, a
// tombstone, a visibility wrapper around an inner tweet, or a promoted unit.
type rawTweetResult struct {
	TypeName  string          `json:"__typename"`
	RestID    string          `json:"rest_id"`
	Tweet     *rawTweetResult `json:"tweet"`
	Tombstone *rawTombstone   `json:"tombstone"`
	Core      struct {
		UserResults struct {
			Result *rawUserResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Card               *rawCard        `json:"card"`
	PromotedMetadata   json.RawMessage `json:"promotedMetadata"`
	QuotedStatusResult *struct {
		Result *rawTweetResult `json:"result"`
	} `json:"quoted_status_result"`
	Legacy *rawTweetLegacy `json:"legacy"`
}

type rawTombstone struct {
	Text struct {
		Text string `json:"text"`
	} `json:"text"`
}

type rawCard struct {
	Legacy struct {
		Name string `json:"name"`
	} `json:"legacy"`
	Name string `json:"name"`
}

func (c *rawCard) name() string {
	if c == nil {
		return ""
	}
	if c.Legacy.Name != "" {
		return c.Legacy.Name
	}
	return c.Name
}

type rawTweetLegacy struct {
	IDStr                string `json:"id_str"`
	UserIDStr            string `json:"user_id_str"`
	FullText             string `json:"full_text"`
	Text                 string `json:"text"`
	CreatedAt            string `json:"created_at"`
	RetweetCount         int    `json:"retweet_count"`
	ReplyCount           int    `json:"reply_count"`
	FavoriteCount        int    `json:"favorite_count"`
	QuoteCount           int    `json:"quote_count"`
	Favorited            bool   `json:"favorited"`
	Bookmarked           bool   `json:"bookmarked"`
	InReplyToStatusIDStr string `json:"in_reply_to_status_id_str"`
	Scopes               *struct {
		Followers *bool `json:"followers"`
	} `json:"scopes"`
	ExtendedEntities struct {
		Media []rawMedia `json:"media"`
	} `json:"extended_entities"`
}

// rawUserResult carries both user sub-shapes upstream alternates between: the
// older legacy block and the newer core/avatar pair.
type rawUserResult struct {
	TypeName       string        `json:"__typename"`
	RestID         string        `json:"rest_id"`
	IsBlueVerified bool          `json:"is_blue_verified"`
	Legacy         rawUserLegacy `json:"legacy"`
	Core           struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"core"`
	Avatar struct {
		ImageURL string `json:"image_url"`
	} `json:"avatar"`
}

type rawUserLegacy struct {
	IDStr           string `json:"id_str"`
	Name            string `json:"name"`
	ScreenName      string `json:"screen_name"`
	ProfileImageURL string `json:"profile_image_url_https"`
	Verified        bool   `json:"verified"`
	Description     string `json:"description"`
}

type rawMedia struct {
	IDStr         string `json:"id_str"`
	MediaKey      string `json:"media_key"`
	Type          string `json:"type"`
	MediaURLHTTPS string `json:"media_url_https"`
	ExtAltText    string `json:"ext_alt_text"`
	OriginalInfo  struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"original_info"`
	VideoInfo struct {
		Variants []struct {
			Bitrate     int    `json:"bitrate"`
			ContentType string `json:"content_type"`
			URL         string `json:"url"`
		} `json:"variants"`
	} `json:"video_info"`
}
