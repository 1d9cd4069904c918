package xfeed

import "fmt"

const defaultGraphQLBase = "https://x.com/i/api/graphql"

// BearerToken is the public web-app bearer token sent with every request.
const BearerToken = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

// Endpoint holds the rotating GraphQL query ID for a named operation. The IDs
// are opaque, change when the web app redeploys, and must be refreshed from
// the web client's network traffic when upstream starts returning 404.
type Endpoint struct {
	ID   string
	Name string
}

// URL returns the full URL for this endpoint under the given base.
func (e Endpoint) URL(base string) string {
	return fmt.Sprintf("%s/%s/%s", base, e.ID, e.Name)
}

// Endpoints maps operation names to their current query IDs.
var Endpoints = map[string]Endpoint{
	"HomeTimeline":       {ID: "c-CzHF1LboFilMpsx4ZCrQ", Name: "HomeTimeline"},
	"HomeLatestTimeline": {ID: "BKB7oi212Fi7kQtCBGE4zA", Name: "HomeLatestTimeline"},
	"TweetDetail":        {ID: "xd_EMdYvB9hfZsZ6Idri0w", Name: "TweetDetail"},
	"Bookmarks":          {ID: "2neUNDqrrFzbLui8yallcQ", Name: "Bookmarks"},
	"Likes":              {ID: "px5hwmbuL4vsTjwAEd1LpA", Name: "Likes"},
	"CreateBookmark":     {ID: "aoDbu3RHznuiSkQ9aNM67Q", Name: "CreateBookmark"},
	"DeleteBookmark":     {ID: "Wlmlj2-xzyS1GN3a6cj-mQ", Name: "DeleteBookmark"},
	"FavoriteTweet":      {ID: "lI07N6Otwv1PhnEgXILM7A", Name: "FavoriteTweet"},
	"UnfavoriteTweet":    {ID: "ZYKSe-w7KEslx3JhSIk5LA", Name: "UnfavoriteTweet"},
}

// gqlFeatures returns the feature-flag bag the web client sends with every
// GraphQL call. Upstream rejects requests missing flags it expects, so the
// whole bag goes out even for operations that ignore most of it.
func gqlFeatures() map[string]any {
	return map[string]any{
		"articles_preview_enabled":                                                true,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"longform_notetweets_consumption_enabled":                                 true,
		"longform_notetweets_inline_media_enabled":                                true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"premium_content_api_read_enabled":                                        false,
		"profile_label_improvements_pcf_label_in_post_enabled":                    true,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"responsive_web_enhance_cards_enabled":                                    false,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_grok_analysis_button_from_backend":                        false,
		"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
		"responsive_web_grok_analyze_post_followups_enabled":                      true,
		"responsive_web_grok_image_annotation_enabled":                            true,
		"responsive_web_grok_share_attachment_enabled":                            true,
		"responsive_web_grok_show_grok_translated_post":                           false,
		"responsive_web_jetfuel_frame":                                            false,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"rweb_tipjar_consumption_enabled":                                         true,
		"rweb_video_screen_enabled":                                               false,
		"standardized_nudges_misinfo":                                             true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"verified_phone_label_enabled":                                            false,
		"view_counts_everywhere_api_enabled":                                      true,
	}
}
