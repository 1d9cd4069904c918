package xfeed

import (
	"context"
	"fmt"
	"strings"
)

// parseTimeline walks the shared instruction/entry envelope used by the home,
// latest, bookmarks and likes timelines. Entry order is display order. Cursor
// markers and promoted entries never become tweets; only the bottom cursor is
// kept, "newer than" pagination is not supported.
func parseTimeline(tl timelineObj) *TimelinePage {
	page := &TimelinePage{}

	for _, instruction := range tl.Instructions {
		entries := instruction.Entries
		if instruction.Entry != nil {
			entries = append(entries, *instruction.Entry)
		}
		for _, entry := range entries {
			switch {
			case strings.HasPrefix(entry.EntryID, "cursor-bottom"):
				page.Cursor = cursorValue(entry)
				continue
			case strings.HasPrefix(entry.EntryID, "cursor-top"):
				continue
			case strings.Contains(strings.ToLower(entry.EntryID), "promoted"):
				continue
			}

			if entry.Content.ItemContent == nil {
				continue
			}
			if t := parseTweetResult(entry.Content.ItemContent.TweetResults.Result); t != nil {
				page.Tweets = append(page.Tweets, t)
			}
		}
	}
	return page
}

// cursorValue reads the pagination token from either place upstream puts it.
func cursorValue(entry timelineEntry) string {
	if entry.Content.Value != "" {
		return entry.Content.Value
	}
	if entry.Content.ItemContent != nil {
		return entry.Content.ItemContent.Value
	}
	return ""
}

// HomeTimeline fetches the algorithmic ("For You") home timeline. seenIDs are
// tweet ids already displayed; upstream filters them from the response.
func (c *Client) HomeTimeline(ctx context.Context, count int, cursor string, seenIDs []string) (*TimelinePage, error) {
	variables := map[string]any{
		"count":                  count,
		"includePromotedContent": false,
		"latestControlAvailable": true,
		"withCommunity":          true,
	}
	// "ptr" marks a pull-to-refresh continuation, "launch" a cold load.
	if cursor != "" {
		variables["cursor"] = cursor
		variables["requestContext"] = "ptr"
	} else {
		variables["requestContext"] = "launch"
	}
	if len(seenIDs) > 0 {
		variables["seenTweetIds"] = seenIDs
	}

	body, err := c.get(ctx, "HomeTimeline", variables)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data struct {
			Home struct {
				HomeTimelineURT timelineObj `json:"home_timeline_urt"`
			} `json:"home"`
		} `json:"data"`
	}
	if err := decode("HomeTimeline", body, &raw); err != nil {
		return nil, err
	}
	return parseTimeline(raw.Data.Home.HomeTimelineURT), nil
}

// HomeLatestTimeline fetches the chronological ("Following") home timeline.
// Upstream serves this operation over POST.
func (c *Client) HomeLatestTimeline(ctx context.Context, count int, cursor string, seenIDs []string) (*TimelinePage, error) {
	variables := map[string]any{
		"count":                  count,
		"includePromotedContent": false,
		"latestControlAvailable": true,
		"requestContext":         "launch",
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	if len(seenIDs) > 0 {
		variables["seenTweetIds"] = seenIDs
	}

	body, err := c.post(ctx, "HomeLatestTimeline", variables)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data struct {
			Home struct {
				HomeTimelineURT timelineObj `json:"home_timeline_urt"`
			} `json:"home"`
		} `json:"data"`
	}
	if err := decode("HomeLatestTimeline", body, &raw); err != nil {
		return nil, err
	}
	return parseTimeline(raw.Data.Home.HomeTimelineURT), nil
}

// Bookmarks fetches the bookmarks timeline. The endpoint does not mark its own
// items, so every returned tweet is forced Bookmarked.
func (c *Client) Bookmarks(ctx context.Context, count int, cursor string) (*TimelinePage, error) {
	variables := map[string]any{
		"count":                  count,
		"includePromotedContent": false,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}

	body, err := c.get(ctx, "Bookmarks", variables)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data struct {
			BookmarkTimelineV2 struct {
				Timeline timelineObj `json:"timeline"`
			} `json:"bookmark_timeline_v2"`
		} `json:"data"`
	}
	if err := decode("Bookmarks", body, &raw); err != nil {
		return nil, err
	}

	page := parseTimeline(raw.Data.BookmarkTimelineV2.Timeline)
	for _, t := range page.Tweets {
		t.Bookmarked = true
	}
	return page, nil
}

// Likes fetches the authenticated user's liked tweets. The endpoint is
// user-scoped and cannot be called without the id derived from the twid
// cookie.
func (c *Client) Likes(ctx context.Context, count int, cursor string) (*TimelinePage, error) {
	userID := c.creds.UserID()
	if userID == "" {
		return nil, fmt.Errorf("Likes: %w", ErrMissingUserID)
	}

	variables := map[string]any{
		"userId":                 userID,
		"count":                  count,
		"includePromotedContent": false,
		"withClientEventToken":   false,
		"withBirdwatchNotes":     false,
		"withVoice":              true,
		"withV2Timeline":         true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}

	body, err := c.get(ctx, "Likes", variables)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data struct {
			User struct {
				Result struct {
					Timeline struct {
						Timeline timelineObj `json:"timeline"`
					} `json:"timeline"`
					TimelineV2 struct {
						Timeline timelineObj `json:"timeline"`
					} `json:"timeline_v2"`
				} `json:"result"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := decode("Likes", body, &raw); err != nil {
		return nil, err
	}

	tl := raw.Data.User.Result.TimelineV2.Timeline
	if len(tl.Instructions) == 0 {
		tl = raw.Data.User.Result.Timeline.Timeline
	}
	return parseTimeline(tl), nil
}
