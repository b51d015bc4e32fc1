// Package page implements the page operations exposed as tools. Most map
// one-to-one onto a Graph call; the rest are small compositions over them
// (counters, top commenters, insight bundles, sentiment filtering).
package page

import (
	"context"
	"sort"

	"github.com/mwiater/pagemcp/internal/graph"
)

// Backend is the subset of the Graph client the manager depends on.
type Backend interface {
	PageID() string
	PostMessage(ctx context.Context, message string) (graph.Object, error)
	PostImage(ctx context.Context, imageURL, caption string) (graph.Object, error)
	SchedulePost(ctx context.Context, message string, publishTime int64) (graph.Object, error)
	UpdatePost(ctx context.Context, postID, message string) (graph.Object, error)
	ReplyToComment(ctx context.Context, commentID, message string) (graph.Object, error)
	GetPosts(ctx context.Context) (graph.Object, error)
	GetComments(ctx context.Context, postID string) (graph.Object, error)
	DeletePost(ctx context.Context, postID string) (graph.Object, error)
	DeleteComment(ctx context.Context, commentID string) (graph.Object, error)
	GetInsights(ctx context.Context, postID, metric, period string) (graph.Object, error)
	GetBulkInsights(ctx context.Context, postID string, metrics []string, period string) (graph.Object, error)
	GetFields(ctx context.Context, objectID string, fields ...string) (graph.Object, error)
	SendMessage(ctx context.Context, userID, message string) (graph.Object, error)
}

var _ Backend = (*graph.Client)(nil)

// Insight metric names.
const (
	MetricImpressions        = "post_impressions"
	MetricImpressionsUnique  = "post_impressions_unique"
	MetricImpressionsPaid    = "post_impressions_paid"
	MetricImpressionsOrganic = "post_impressions_organic"
	MetricEngagedUsers       = "post_engaged_users"
	MetricClicks             = "post_clicks"
	MetricReactionsLike      = "post_reactions_like_total"
	MetricReactionsLove      = "post_reactions_love_total"
	MetricReactionsWow       = "post_reactions_wow_total"
	MetricReactionsHaha      = "post_reactions_haha_total"
	MetricReactionsSorry     = "post_reactions_sorry_total"
	MetricReactionsAnger     = "post_reactions_anger_total"
)

// AllMetrics is the bundle fetched by PostInsights.
var AllMetrics = []string{
	MetricImpressions,
	MetricImpressionsUnique,
	MetricImpressionsPaid,
	MetricImpressionsOrganic,
	MetricEngagedUsers,
	MetricClicks,
	MetricReactionsLike,
	MetricReactionsLove,
	MetricReactionsWow,
	MetricReactionsHaha,
	MetricReactionsSorry,
	MetricReactionsAnger,
}

// Manager runs page operations against a Backend.
type Manager struct {
	api Backend
}

// NewManager returns a manager bound to api.
func NewManager(api Backend) *Manager {
	return &Manager{api: api}
}

func (m *Manager) PostToFacebook(ctx context.Context, message string) (graph.Object, error) {
	return m.api.PostMessage(ctx, message)
}

func (m *Manager) PostImageToFacebook(ctx context.Context, imageURL, caption string) (graph.Object, error) {
	return m.api.PostImage(ctx, imageURL, caption)
}

func (m *Manager) SchedulePost(ctx context.Context, message string, publishTime int64) (graph.Object, error) {
	return m.api.SchedulePost(ctx, message, publishTime)
}

func (m *Manager) UpdatePost(ctx context.Context, postID, newMessage string) (graph.Object, error) {
	return m.api.UpdatePost(ctx, postID, newMessage)
}

func (m *Manager) DeletePost(ctx context.Context, postID string) (graph.Object, error) {
	return m.api.DeletePost(ctx, postID)
}

// ReplyToComment replies under commentID. Comment ids are globally unique, so
// postID is accepted for the tool contract but not needed by the API.
func (m *Manager) ReplyToComment(ctx context.Context, postID, commentID, message string) (graph.Object, error) {
	return m.api.ReplyToComment(ctx, commentID, message)
}

func (m *Manager) DeleteComment(ctx context.Context, commentID string) (graph.Object, error) {
	return m.api.DeleteComment(ctx, commentID)
}

// DeleteCommentFromPost is DeleteComment with the post id carried for callers.
func (m *Manager) DeleteCommentFromPost(ctx context.Context, postID, commentID string) (graph.Object, error) {
	return m.api.DeleteComment(ctx, commentID)
}

func (m *Manager) GetPagePosts(ctx context.Context) (graph.Object, error) {
	return m.api.GetPosts(ctx)
}

func (m *Manager) GetPostComments(ctx context.Context, postID string) (graph.Object, error) {
	return m.api.GetComments(ctx, postID)
}

// CommentCount returns the number of comments in the first page of results.
func (m *Manager) CommentCount(ctx context.Context, postID string) (int, error) {
	comments, err := m.api.GetComments(ctx, postID)
	if err != nil {
		return 0, err
	}
	return len(listOf(comments["data"])), nil
}

// LikeCount returns the total like count of a post, zero when the summary is absent.
func (m *Manager) LikeCount(ctx context.Context, postID string) (int64, error) {
	obj, err := m.api.GetFields(ctx, postID, "likes.summary(true)")
	if err != nil {
		return 0, err
	}
	return intAt(obj, "likes", "summary", "total_count"), nil
}

// ShareCount returns the share count of a post, zero when the post has no shares.
func (m *Manager) ShareCount(ctx context.Context, postID string) (int64, error) {
	obj, err := m.api.GetFields(ctx, postID, "shares")
	if err != nil {
		return 0, err
	}
	return intAt(obj, "shares", "count"), nil
}

// FanCount returns the page's fan count.
func (m *Manager) FanCount(ctx context.Context) (int64, error) {
	obj, err := m.api.GetFields(ctx, m.api.PageID(), "fan_count")
	if err != nil {
		return 0, err
	}
	return intAt(obj, "fan_count"), nil
}

// Commenter is one entry of TopCommenters.
type Commenter struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Count  int    `json:"count"`
}

// TopCommenters groups the comments of a post by author, most active first.
// Ties keep the order in which authors first appear.
func (m *Manager) TopCommenters(ctx context.Context, postID string) ([]Commenter, error) {
	comments, err := m.api.GetComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	out := []Commenter{}
	for _, c := range listOf(comments["data"]) {
		from, _ := objectOf(c)["from"].(map[string]any)
		id, _ := from["id"].(string)
		if id == "" {
			continue
		}
		i, ok := index[id]
		if !ok {
			name, _ := from["name"].(string)
			index[id] = len(out)
			out = append(out, Commenter{UserID: id, Name: name})
			i = len(out) - 1
		}
		out[i].Count++
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	return out, nil
}

// PostInsights fetches every metric in AllMetrics for a post.
func (m *Manager) PostInsights(ctx context.Context, postID string) (graph.Object, error) {
	return m.api.GetBulkInsights(ctx, postID, AllMetrics, graph.DefaultPeriod)
}

// Metric fetches a single insight metric for a post.
func (m *Manager) Metric(ctx context.Context, postID, metric string) (graph.Object, error) {
	return m.api.GetInsights(ctx, postID, metric, graph.DefaultPeriod)
}

func (m *Manager) SendDMToUser(ctx context.Context, userID, message string) (graph.Object, error) {
	return m.api.SendMessage(ctx, userID, message)
}

// FilterNegativeComments returns the comments from a Graph comments payload
// ({"data": [...]}) whose message looks negative.
func (m *Manager) FilterNegativeComments(comments map[string]any) []map[string]any {
	return FilterNegative(comments)
}

func listOf(v any) []any {
	list, _ := v.([]any)
	return list
}

func objectOf(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

// intAt walks nested objects and returns the number at path, zero when absent.
func intAt(obj map[string]any, path ...string) int64 {
	var cur any = obj
	for _, key := range path {
		cur = objectOf(cur)[key]
	}
	switch v := cur.(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}
