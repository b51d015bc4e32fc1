// Package catalog declares the page tools and binds each one to a page.Manager
// operation. The registry it builds is the single dispatch table shared by the
// MCP and HTTP surfaces.
package catalog

import (
	"context"

	"github.com/mwiater/pagemcp/internal/page"
	"github.com/mwiater/pagemcp/internal/tools"
)

func param(name string, kind tools.Kind, required bool, description string) tools.Parameter {
	return tools.Parameter{Name: name, Kind: kind, Required: required, Description: description}
}

var postIDParam = param("post_id", tools.KindString, true, "ID of the post")

// metricTools are the single-metric insight tools, in catalog order.
var metricTools = []struct {
	name, metric, description string
}{
	{"get_post_impressions", page.MetricImpressions, "Fetch total impressions of a post"},
	{"get_post_impressions_unique", page.MetricImpressionsUnique, "Fetch unique impressions of a post"},
	{"get_post_impressions_paid", page.MetricImpressionsPaid, "Fetch paid impressions of a post"},
	{"get_post_impressions_organic", page.MetricImpressionsOrganic, "Fetch organic impressions of a post"},
	{"get_post_engaged_users", page.MetricEngagedUsers, "Fetch number of engaged users"},
	{"get_post_clicks", page.MetricClicks, "Fetch number of post clicks"},
	{"get_post_reactions_like_total", page.MetricReactionsLike, "Fetch number of 'Like' reactions"},
	{"get_post_reactions_love_total", page.MetricReactionsLove, "Fetch number of 'Love' reactions"},
	{"get_post_reactions_wow_total", page.MetricReactionsWow, "Fetch number of 'Wow' reactions"},
	{"get_post_reactions_haha_total", page.MetricReactionsHaha, "Fetch number of 'Haha' reactions"},
	{"get_post_reactions_sorry_total", page.MetricReactionsSorry, "Fetch number of 'Sorry' reactions"},
	{"get_post_reactions_anger_total", page.MetricReactionsAnger, "Fetch number of 'Anger' reactions"},
}

// New builds the registry of every page tool. A duplicate name is a programming
// error and is returned so the caller can abort startup.
func New(m *page.Manager, opts ...tools.Option) (*tools.Registry, error) {
	r := tools.NewRegistry(opts...)
	for _, def := range Definitions(m) {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Definitions returns the tool definitions in catalog order.
func Definitions(m *page.Manager) []tools.Definition {
	defs := []tools.Definition{
		// Post operations
		{
			Name:        "post_to_facebook",
			Description: "Create a new Facebook Page post with a text message",
			Parameters:  []tools.Parameter{param("message", tools.KindString, true, "The message to post")},
			Handler: func(ctx context.Context, args tools.Args) (any, error) {
				return m.PostToFacebook(ctx, args.String("message"))
			},
		},
		{
			Name:        "post_image_to_facebook",
			Description: "Post an image with a caption to the Facebook page",
			Parameters: []tools.Parameter{
				param("image_url", tools.KindString, true, "URL of the image to post"),
				param("caption", tools.KindString, false, "Caption for the image"),
			},
			Handler: func(ctx context.Context, args tools.Args) (any, error) {
				return m.PostImageToFacebook(ctx, args.String("image_url"), args.StringOr("caption", ""))
			},
		},
		{
			Name:        "schedule_post",
			Description: "Schedule a new post for future publishing",
			Parameters: []tools.Parameter{
				param("message", tools.KindString, true, "The message to schedule"),
				param("publish_time", tools.KindInteger, true, "Unix timestamp for when to publish"),
			},
			Handler: func(ctx context.Context, args tools.Args) (any, error) {
				return m.SchedulePost(ctx, args.String("message"), args.Int("publish_time"))
			},
		},
		{
			Name:        "update_post",
			Description: "Update an existing post's message",
			Parameters: []tools.Parameter{
				param("post_id", tools.KindString, true, "ID of the post to update"),
				param("new_message", tools.KindString, true, "New message content"),
			},
			Handler: func(ctx context.Context, args tools.Args) (any, error) {
				return m.UpdatePost(ctx, args.String("post_id"), args.String("new_message"))
			},
		},
		{
			Name:        "delete_post",
			Description: "Delete a specific post from the Facebook Page",
			Parameters:  []tools.Parameter{param("post_id", tools.KindString, true, "ID of the post to delete")},
			Annotations: tools.Annotations{Destructive: true},
			Handler: func(ctx context.Context, args tools.Args) (any, error) {
				return m.DeletePost(ctx, args.String("post_id"))
			},
		},

		// Comment operations
		{
			Name:        "reply_to_comment",
			Description: "Reply to a specific comment on a Facebook post",
			Parameters: []tools.Parameter{
				postIDParam,
				param("comment_id", tools.KindString, true, "ID of the comment to reply to"),
				param("message", tools.KindString, true, "Reply message"),
			},
			Handler: func(ctx context.Context, args tools.Args) (any, error) {
				return m.ReplyToComment(ctx, args.String("post_id"), args.String("comment_id"), args.String("message"))
			},
		},
		{
			Name:        "delete_comment",
			Description: "Delete a specific comment from the Page",
			Parameters:  []tools.Parameter{param("comment_id", tools.KindString, true, "ID of the comment to delete")},
			Annotations: tools.Annotations{Destructive: true},
			Handler: func(ctx context.Context, args tools.Args) (any, error) {
				return m.DeleteComment(ctx, args.String("comment_id"))
			},
		},
		{
			Name:        "delete_comment_from_post",
			Description: "Delete a comment from a specific post",
			Parameters: []tools.Parameter{
				postIDParam,
				param("comment_id", tools.KindString, true, "ID of the comment to delete"),
			},
			Annotations: tools.Annotations{Destructive: true},
			Handler: func(ctx context.Context, args tools.Args) (any, error) {
				return m.DeleteCommentFromPost(ctx, args.String("post_id"), args.String("comment_id"))
			},
		},
		{
			Name:        "filter_negative_comments",
			Description: "Filter comments for basic negative sentiment",
			Parameters:  []tools.Parameter{param("comments", tools.KindObject, true, "Comments object to filter")},
			Annotations: tools.Annotations{ReadOnly: true},
			Handler: func(_ context.Context, args tools.Args) (any, error) {
				comments := args.Object("comments")
				if comments == nil {
					comments = map[string]any{}
				}
				return m.FilterNegativeComments(comments), nil
			},
		},

		// Read operations
		{
			Name:        "get_page_posts",
			Description: "Fetch the most recent posts on the Page",
			Annotations: tools.Annotations{ReadOnly: true},
			Handler: func(ctx context.Context, _ tools.Args) (any, error) {
				return m.GetPagePosts(ctx)
			},
		},
		postTool("get_post_comments", "Retrieve all comments for a given post", func(ctx context.Context, postID string) (any, error) {
			return m.GetPostComments(ctx, postID)
		}),
		postTool("get_number_of_comments", "Count the number of comments on a given post", func(ctx context.Context, postID string) (any, error) {
			return m.CommentCount(ctx, postID)
		}),
		postTool("get_number_of_likes", "Return the number of likes on a post", func(ctx context.Context, postID string) (any, error) {
			return m.LikeCount(ctx, postID)
		}),
		postTool("get_post_top_commenters", "Get the top commenters on a post", func(ctx context.Context, postID string) (any, error) {
			return m.TopCommenters(ctx, postID)
		}),
		{
			Name:        "get_page_fan_count",
			Description: "Get the Page's total fan/like count",
			Annotations: tools.Annotations{ReadOnly: true},
			Handler: func(ctx context.Context, _ tools.Args) (any, error) {
				return m.FanCount(ctx)
			},
		},
		postTool("get_post_share_count", "Get the number of shares for a post", func(ctx context.Context, postID string) (any, error) {
			return m.ShareCount(ctx, postID)
		}),

		// Insights
		postTool("get_post_insights", "Fetch all insights metrics (impressions, reactions, clicks, etc)", func(ctx context.Context, postID string) (any, error) {
			return m.PostInsights(ctx, postID)
		}),
	}

	for _, mt := range metricTools {
		metric := mt.metric
		defs = append(defs, postTool(mt.name, mt.description, func(ctx context.Context, postID string) (any, error) {
			return m.Metric(ctx, postID, metric)
		}))
	}

	// Messaging
	defs = append(defs, tools.Definition{
		Name:        "send_dm_to_user",
		Description: "Send a direct message to a user",
		Parameters: []tools.Parameter{
			param("user_id", tools.KindString, true, "ID of the user to message"),
			param("message", tools.KindString, true, "Message to send"),
		},
		Handler: func(ctx context.Context, args tools.Args) (any, error) {
			return m.SendDMToUser(ctx, args.String("user_id"), args.String("message"))
		},
	})

	return defs
}

// postTool declares a read-only tool whose only argument is post_id.
func postTool(name, description string, run func(ctx context.Context, postID string) (any, error)) tools.Definition {
	return tools.Definition{
		Name:        name,
		Description: description,
		Parameters:  []tools.Parameter{postIDParam},
		Annotations: tools.Annotations{ReadOnly: true},
		Handler: func(ctx context.Context, args tools.Args) (any, error) {
			return run(ctx, args.String("post_id"))
		},
	}
}
