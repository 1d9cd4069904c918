package xfeed

import (
	"context"
	"fmt"
	"strings"
)

// detailEnvelope is the TweetDetail response shape: a conversation instruction
// list plus a direct tweetResult fallback some responses carry instead.
type detailEnvelope struct {
	Data struct {
		TweetResult struct {
			Result *rawTweetResult `json:"result"`
		} `json:"tweetResult"`
		ThreadedConversation struct {
			Instructions []timelineInstruction `json:"instructions"`
		} `json:"threaded_conversation_with_injections_v2"`
	} `json:"data"`
}

// TweetDetail fetches a tweet and reconstructs its conversation: the focal
// tweet, its nearest ancestor, and the ordered replies below it.
func (c *Client) TweetDetail(ctx context.Context, tweetID string) (*TweetDetail, error) {
	body, err := c.get(ctx, "TweetDetail", detailVariables(tweetID, ""))
	if err != nil {
		return nil, err
	}

	var raw detailEnvelope
	if err := decode("TweetDetail", body, &raw); err != nil {
		return nil, err
	}

	detail := reconstructThread(raw.Data.ThreadedConversation.Instructions, tweetID)

	if detail.main == nil && raw.Data.TweetResult.Result != nil {
		detail.main = parseTweetResult(raw.Data.TweetResult.Result)
	}
	if detail.main == nil {
		return nil, fmt.Errorf("TweetDetail %s: %w", tweetID, ErrDetailParse)
	}

	return &TweetDetail{
		Tweet:          *detail.main,
		ReplyToTweet:   detail.replyTo,
		Replies:        detail.replies,
		RepliesCursor:  detail.cursor,
		HasMoreReplies: detail.cursor != "",
	}, nil
}

// MoreReplies fetches one continuation page of a tweet's replies. Paginated
// continuations arrive in a different container (module items) than the first
// page, and upstream sometimes re-includes the focal tweet; both are handled
// here. An empty page discards the next cursor so pagination always
// terminates.
func (c *Client) MoreReplies(ctx context.Context, tweetID, cursor string) (*RepliesPage, error) {
	body, err := c.get(ctx, "TweetDetail", detailVariables(tweetID, cursor))
	if err != nil {
		return nil, err
	}

	var raw detailEnvelope
	if err := decode("TweetDetail", body, &raw); err != nil {
		return nil, err
	}

	page := &RepliesPage{}
	appendReply := func(t *Tweet) {
		if t == nil || t.ID == tweetID {
			return
		}
		page.Replies = append(page.Replies, t)
	}

	for _, instruction := range raw.Data.ThreadedConversation.Instructions {
		// Continuations use TimelineAddToModule with a bare moduleItems list.
		for _, item := range instruction.ModuleItems {
			if isThreadCursorID(item.EntryID) {
				page.Cursor = item.Item.ItemContent.Value
				continue
			}
			appendReply(parseTweetResult(item.Item.ItemContent.TweetResults.Result))
		}

		for _, entry := range instruction.Entries {
			if skipDetailEntry(entry.EntryID) {
				continue
			}
			if isThreadCursorID(entry.EntryID) {
				page.Cursor = cursorValue(entry)
				continue
			}
			for _, item := range entry.Content.Items {
				if isThreadCursorID(item.EntryID) {
					page.Cursor = item.Item.ItemContent.Value
					continue
				}
				appendReply(parseTweetResult(item.Item.ItemContent.TweetResults.Result))
			}
			if entry.Content.ItemContent != nil {
				appendReply(parseTweetResult(entry.Content.ItemContent.TweetResults.Result))
			}
		}
	}

	// No replies means the thread is exhausted regardless of what upstream
	// put in the cursor slot.
	if len(page.Replies) == 0 {
		page.Cursor = ""
	}
	return page, nil
}

func detailVariables(tweetID, cursor string) map[string]any {
	variables := map[string]any{
		"focalTweetId":                           tweetID,
		"referrer":                               "home",
		"with_rux_injections":                    false,
		"rankingMode":                            "Relevance",
		"includePromotedContent":                 false,
		"withCommunity":                          true,
		"withQuickPromoteEligibilityTweetFields": true,
		"withBirdwatchNotes":                     true,
		"withVoice":                              true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	return variables
}

type threadResult struct {
	main    *Tweet
	replyTo *Tweet
	replies []*Tweet
	cursor  string
}

// reconstructThread walks the conversation instruction list. A conversation
// thread entry holds one linear run of tweets: when the focal tweet appears in
// it, everything before collapses to the nearest ancestor and everything after
// becomes replies; when it doesn't, the whole run is replies.
func reconstructThread(instructions []timelineInstruction, focalID string) threadResult {
	var res threadResult

	for _, instruction := range instructions {
		for _, entry := range instruction.Entries {
			if skipDetailEntry(entry.EntryID) {
				continue
			}
			if isThreadCursorID(entry.EntryID) {
				res.cursor = cursorValue(entry)
				continue
			}

			if len(entry.Content.Items) > 0 {
				res.mergeThreadItems(entry.Content.Items, focalID)
				continue
			}

			if entry.Content.ItemContent == nil {
				continue
			}
			t := parseTweetResult(entry.Content.ItemContent.TweetResults.Result)
			if t == nil {
				continue
			}
			if t.ID == focalID {
				res.main = t
			} else {
				res.replies = append(res.replies, t)
			}
		}
	}
	return res
}

func (res *threadResult) mergeThreadItems(items []moduleItem, focalID string) {
	var thread []*Tweet
	for _, item := range items {
		if isThreadCursorID(item.EntryID) {
			res.cursor = item.Item.ItemContent.Value
			continue
		}
		if t := parseTweetResult(item.Item.ItemContent.TweetResults.Result); t != nil {
			thread = append(thread, t)
		}
	}

	focal := -1
	for i, t := range thread {
		if t.ID == focalID {
			focal = i
			break
		}
	}
	if focal == -1 {
		res.replies = append(res.replies, thread...)
		return
	}

	res.main = thread[focal]
	if focal > 0 {
		res.replyTo = thread[focal-1]
	}
	res.replies = append(res.replies, thread[focal+1:]...)
}

// skipDetailEntry drops recommendation modules that are never part of the
// reply tree.
func skipDetailEntry(entryID string) bool {
	id := strings.ToLower(entryID)
	return strings.Contains(id, "relatedtweets") ||
		strings.Contains(id, "who-to-follow") ||
		strings.Contains(id, "whotofollow")
}

// isThreadCursorID matches both cursor spellings the detail endpoint uses.
func isThreadCursorID(entryID string) bool {
	id := strings.ToLower(entryID)
	return strings.HasPrefix(id, "cursor-bottom") ||
		strings.Contains(id, "showmore") ||
		strings.Contains(id, "cursor-showmorethreads")
}
