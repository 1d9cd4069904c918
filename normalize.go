package xfeed

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const createdAtLayout = "Mon Jan 02 15:04:05 +0000 2006"

// maxQuoteDepth bounds quoted-tweet recursion. Upstream truncates quotes after
// one level, but the payload is untrusted input.
const maxQuoteDepth = 2

// unavailableUser is the fixed author attached to tombstone placeholders.
var unavailableUser = TwitterUser{
	ID:       "unavailable",
	Name:     "Unavailable",
	Username: "unavailable",
}

// nodeKind is the closed classification of a raw tweet node, decided before
// any field mapping touches it.
type nodeKind int

const (
	nodeNormal nodeKind = iota
	nodeTombstone
	nodeVisibility
	nodePromoted
	nodeMalformed
)

func classifyNode(r *rawTweetResult) nodeKind {
	switch {
	case r == nil:
		return nodeMalformed
	case r.TypeName == "TweetTombstone" || r.Tombstone != nil:
		return nodeTombstone
	case r.TypeName == "TweetWithVisibilityResults" && r.Tweet != nil:
		return nodeVisibility
	case isPromoted(r):
		return nodePromoted
	case r.Legacy == nil:
		return nodeMalformed
	default:
		return nodeNormal
	}
}

// isPromoted detects advertisement units via any of the known signals.
func isPromoted(r *rawTweetResult) bool {
	if len(r.PromotedMetadata) > 0 && string(r.PromotedMetadata) != "null" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Card.name()), "promo") {
		return true
	}
	if strings.Contains(r.TypeName, "Promoted") {
		return true
	}
	if r.Legacy != nil && r.Legacy.Scopes != nil &&
		r.Legacy.Scopes.Followers != nil && !*r.Legacy.Scopes.Followers {
		return true
	}
	return false
}

// parseTweetResult normalizes one raw tweet node. It returns nil for nodes
// that must be filtered out (promoted units, malformed nodes); tombstones are
// returned as placeholder tweets, not filtered. It never panics on missing
// optional fields.
func parseTweetResult(r *rawTweetResult) *Tweet {
	return parseTweetResultDepth(r, 0)
}

func parseTweetResultDepth(r *rawTweetResult, depth int) *Tweet {
	switch classifyNode(r) {
	case nodeTombstone:
		return tombstoneTweet(r)
	case nodeVisibility:
		return parseTweetResultDepth(r.Tweet, depth)
	case nodePromoted:
		return nil
	case nodeMalformed:
		if r != nil {
			slog.Debug("skip tweet node without legacy data", slog.String("typename", r.TypeName))
		}
		return nil
	}

	legacy := r.Legacy

	text := legacy.FullText
	if text == "" {
		text = legacy.Text
	}

	id := legacy.IDStr
	if id == "" {
		id = r.RestID
	}

	t := &Tweet{
		ID:       id,
		Text:     text,
		AuthorID: legacy.UserIDStr,
		Metrics: TweetMetrics{
			Retweets: legacy.RetweetCount,
			Replies:  legacy.ReplyCount,
			Likes:    legacy.FavoriteCount,
			Quotes:   legacy.QuoteCount,
		},
		ReplyToID:  legacy.InReplyToStatusIDStr,
		Liked:      legacy.Favorited,
		Bookmarked: legacy.Bookmarked,
	}

	if legacy.CreatedAt != "" {
		if ts, err := time.Parse(createdAtLayout, legacy.CreatedAt); err == nil {
			t.CreatedAt = ts
		}
	}

	t.Author = parseUserResult(r.Core.UserResults.Result)
	if t.Author != nil && t.AuthorID == "" {
		t.AuthorID = t.Author.ID
	}

	for i := range legacy.ExtendedEntities.Media {
		t.Media = append(t.Media, parseMedia(&legacy.ExtendedEntities.Media[i]))
	}

	if r.QuotedStatusResult != nil && depth < maxQuoteDepth {
		if quoted := parseTweetResultDepth(r.QuotedStatusResult.Result, depth+1); quoted != nil {
			t.Quoted = quoted
		}
	}

	return t
}

// tombstoneTweet synthesizes a visible placeholder for a deleted or withheld
// tweet. Tombstones are shown, not filtered.
func tombstoneTweet(r *rawTweetResult) *Tweet {
	msg := "This tweet is unavailable"
	if r.Tombstone != nil && r.Tombstone.Text.Text != "" {
		msg = r.Tombstone.Text.Text
	}

	id := r.RestID
	if id == "" {
		id = "tombstone-" + uuid.NewString()
	}

	author := unavailableUser
	return &Tweet{
		ID:       id,
		Text:     "⚠️ " + msg,
		AuthorID: author.ID,
		Author:   &author,
	}
}

// parseUserResult resolves an author from either user sub-shape: the legacy
// block takes precedence, the core block is the fallback. A node with neither
// name yields nil; the id-only AuthorID reference on the tweet remains valid.
func parseUserResult(r *rawUserResult) *TwitterUser {
	if r == nil {
		return nil
	}

	u := &TwitterUser{
		ID:        r.Legacy.IDStr,
		Name:      r.Legacy.Name,
		Username:  r.Legacy.ScreenName,
		AvatarURL: upgradeAvatarURL(r.Legacy.ProfileImageURL),
		Verified:  r.Legacy.Verified || r.IsBlueVerified,
		Bio:       r.Legacy.Description,
	}
	if u.ID == "" {
		u.ID = r.RestID
	}
	if u.Name == "" && u.Username == "" {
		u.Name = r.Core.Name
		u.Username = r.Core.ScreenName
		u.AvatarURL = r.Avatar.ImageURL
	}
	if u.Name == "" && u.Username == "" {
		return nil
	}
	return u
}

// upgradeAvatarURL swaps the thumbnail suffix for the 400x400 rendition.
func upgradeAvatarURL(url string) string {
	return strings.Replace(url, "_normal", "_400x400", 1)
}

func parseMedia(m *rawMedia) MediaItem {
	key := m.MediaKey
	if key == "" {
		key = m.IDStr
	}

	var mt MediaType
	switch m.Type {
	case "photo":
		mt = MediaPhoto
	case "animated_gif":
		mt = MediaAnimatedGIF
	default:
		mt = MediaVideo
	}

	item := MediaItem{
		MediaKey:   key,
		Type:       mt,
		URL:        m.MediaURLHTTPS,
		PreviewURL: m.MediaURLHTTPS,
		Width:      m.OriginalInfo.Width,
		Height:     m.OriginalInfo.Height,
		AltText:    m.ExtAltText,
	}
	for _, v := range m.VideoInfo.Variants {
		item.Variants = append(item.Variants, MediaVariant{
			BitRate:     v.Bitrate,
			ContentType: v.ContentType,
			URL:         v.URL,
		})
	}
	return item
}
