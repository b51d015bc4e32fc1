// Package graph is a thin client for the resource-oriented Graph API that backs
// the page tools. Every method issues exactly one request and returns the decoded
// JSON body without interpreting it.
package graph

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/mwiater/pagemcp/internal", "graph")

const (
	// DefaultBaseURL is the Graph API root used when the configuration omits one.
	DefaultBaseURL = "https://graph.facebook.com/v22.0"
	// DefaultPeriod is the insights aggregation period used by the page tools.
	DefaultPeriod = "lifetime"
	// defaultTimeout bounds a single Graph request when no client is supplied.
	defaultTimeout = 30 * time.Second
	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 10 << 20
)

// Object is a decoded Graph API response body.
type Object = map[string]any

// Client issues authenticated requests against a single page.
type Client struct {
	baseURL     string
	pageID      string
	accessToken string
	httpClient  *http.Client
}

// New returns a client for the page identified by pageID.
func New(baseURL, pageID, accessToken string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		pageID:      pageID,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	if client != nil {
		c.httpClient = client
	}
	return c
}

// PageID returns the page the client acts on.
func (c *Client) PageID() string {
	return c.pageID
}

// PostMessage creates a text post on the page feed.
func (c *Client) PostMessage(ctx context.Context, message string) (Object, error) {
	return c.do(ctx, http.MethodPost, c.pageID+"/feed", url.Values{"message": {message}})
}

// PostImage publishes a photo from a public URL with an optional caption.
func (c *Client) PostImage(ctx context.Context, imageURL, caption string) (Object, error) {
	return c.do(ctx, http.MethodPost, c.pageID+"/photos", url.Values{
		"url":     {imageURL},
		"caption": {caption},
	})
}

// SchedulePost creates an unpublished post that goes live at publishTime (unix seconds).
func (c *Client) SchedulePost(ctx context.Context, message string, publishTime int64) (Object, error) {
	return c.do(ctx, http.MethodPost, c.pageID+"/feed", url.Values{
		"message":                {message},
		"published":              {"false"},
		"scheduled_publish_time": {strconv.FormatInt(publishTime, 10)},
	})
}

// UpdatePost replaces the message of an existing post.
func (c *Client) UpdatePost(ctx context.Context, postID, message string) (Object, error) {
	return c.do(ctx, http.MethodPost, postID, url.Values{"message": {message}})
}

// ReplyToComment posts a reply under the given comment.
func (c *Client) ReplyToComment(ctx context.Context, commentID, message string) (Object, error) {
	return c.do(ctx, http.MethodPost, commentID+"/comments", url.Values{"message": {message}})
}

// GetPosts lists the page's recent posts.
func (c *Client) GetPosts(ctx context.Context) (Object, error) {
	return c.do(ctx, http.MethodGet, c.pageID+"/posts", url.Values{"fields": {"id,message,created_time"}})
}

// GetComments lists the comments on a post.
func (c *Client) GetComments(ctx context.Context, postID string) (Object, error) {
	return c.do(ctx, http.MethodGet, postID+"/comments", url.Values{"fields": {"id,message,from,created_time"}})
}

// DeletePost removes a post from the page.
func (c *Client) DeletePost(ctx context.Context, postID string) (Object, error) {
	return c.do(ctx, http.MethodDelete, postID, url.Values{})
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, commentID string) (Object, error) {
	return c.do(ctx, http.MethodDelete, commentID, url.Values{})
}

// GetInsights fetches one insight metric, or a comma separated list of them, for a post.
func (c *Client) GetInsights(ctx context.Context, postID, metric, period string) (Object, error) {
	if period == "" {
		period = DefaultPeriod
	}
	return c.do(ctx, http.MethodGet, postID+"/insights", url.Values{
		"metric": {metric},
		"period": {period},
	})
}

// GetBulkInsights fetches several insight metrics in a single request.
func (c *Client) GetBulkInsights(ctx context.Context, postID string, metrics []string, period string) (Object, error) {
	return c.GetInsights(ctx, postID, strings.Join(metrics, ","), period)
}

// GetFields reads the named fields of any Graph object.
func (c *Client) GetFields(ctx context.Context, objectID string, fields ...string) (Object, error) {
	return c.do(ctx, http.MethodGet, objectID, url.Values{"fields": {strings.Join(fields, ",")}})
}

// SendMessage sends a direct message from the page to a user.
func (c *Client) SendMessage(ctx context.Context, userID, message string) (Object, error) {
	recipient, err := json.Marshal(map[string]string{"id": userID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode recipient")
	}
	text, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode message")
	}
	return c.do(ctx, http.MethodPost, "me/messages", url.Values{
		"recipient":      {string(recipient)},
		"message":        {string(text)},
		"messaging_type": {"RESPONSE"},
	})
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values) (Object, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", c.accessToken)
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/") + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, &Error{Message: "failed to create request", cause: err}
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"method", method,
			"endpoint", endpoint,
			"err", err.Error(),
		)
		return nil, &Error{Message: "request failed", cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "failed to read response", cause: err}
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"elapsed", time.Since(started).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, body)
	}

	var out Object
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body), Message: "failed to parse response", cause: err}
	}
	if out == nil {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body), Message: "empty response"}
	}
	return out, nil
}
