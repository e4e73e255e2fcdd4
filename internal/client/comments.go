package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/SketchShifter/vidtube_backend/internal/models"
)

type contentBody struct {
	Content string `json:"content"`
}

func pageQuery(page, limit int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListVideoComments 動画のコメント一覧
func (c *Client) ListVideoComments(ctx context.Context, videoID string, page, limit int) (*models.CommentPage, error) {
	var out models.CommentPage
	path := "/api/v1/comments/" + url.PathEscape(videoID) + pageQuery(page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTweetComments ツイートのコメント一覧
func (c *Client) ListTweetComments(ctx context.Context, tweetID string, page, limit int) (*models.CommentPage, error) {
	var out models.CommentPage
	path := "/api/v1/comments/tweet/" + url.PathEscape(tweetID) + pageQuery(page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddVideoComment 動画にコメント
func (c *Client) AddVideoComment(ctx context.Context, videoID, content string) (*models.CommentView, error) {
	return c.sendComment(ctx, http.MethodPost, "/api/v1/comments/"+url.PathEscape(videoID), content)
}

// AddTweetComment ツイートにコメント
func (c *Client) AddTweetComment(ctx context.Context, tweetID, content string) (*models.CommentView, error) {
	return c.sendComment(ctx, http.MethodPost, "/api/v1/comments/tweet/"+url.PathEscape(tweetID), content)
}

// UpdateComment コメントを編集
func (c *Client) UpdateComment(ctx context.Context, commentID, content string) (*models.CommentView, error) {
	return c.sendComment(ctx, http.MethodPatch, "/api/v1/comments/c/"+url.PathEscape(commentID), content)
}

// DeleteComment コメントと返信を削除
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/comments/c/"+url.PathEscape(commentID), nil, nil)
}

// ListReplies 返信一覧
func (c *Client) ListReplies(ctx context.Context, commentID string) ([]models.CommentView, error) {
	var out []models.CommentView
	if err := c.do(ctx, http.MethodGet, "/api/v1/comments/replies/"+url.PathEscape(commentID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reply コメントに返信
func (c *Client) Reply(ctx context.Context, commentID, content string) (*models.CommentView, error) {
	return c.sendComment(ctx, http.MethodPost, "/api/v1/comments/replies/"+url.PathEscape(commentID), content)
}

func (c *Client) sendComment(ctx context.Context, method, path, content string) (*models.CommentView, error) {
	var out models.CommentView
	if err := c.do(ctx, method, path, contentBody{Content: content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
