package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SketchShifter/vidtube_backend/internal/logger"

	"golang.org/x/sync/singleflight"
)

// refreshTimeout トークン更新リクエストのタイムアウト
const refreshTimeout = 30 * time.Second

// ErrNotLoggedIn トークンが保存されていない
var ErrNotLoggedIn = errors.New("not logged in")

// APIError APIが返したエラーレスポンス
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsStatus エラーが指定のHTTPステータスか
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// envelope APIの共通レスポンス
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// Client vidtube APIのクライアント
//
// 401を受け取るとリフレッシュトークンでアクセストークンを更新し、1回だけ再試行する。
// 同時に401を受け取ったリクエストは1回の更新結果を共有する。
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore
	refreshes  singleflight.Group
}

// Option クライアントの設定
type Option func(*Client)

// WithHTTPClient 使用するhttp.Clientを指定
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New 新しいクライアントを作成
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login ログインしてトークンを保存
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) error {
	body := map[string]string{"password": password}
	if strings.Contains(usernameOrEmail, "@") {
		body["email"] = usernameOrEmail
	} else {
		body["username"] = usernameOrEmail
	}

	var tokens Tokens
	if err := c.send(ctx, http.MethodPost, "/api/v1/users/login", "", body, &tokens); err != nil {
		return err
	}
	return c.store.Save(tokens)
}

// do 認証付きでリクエストを送信。401なら更新して1回だけ再試行する
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	tokens, err := c.store.Load()
	if err != nil {
		return err
	}
	if tokens.AccessToken == "" && tokens.RefreshToken == "" {
		return ErrNotLoggedIn
	}

	err = c.send(ctx, method, path, tokens.AccessToken, body, out)
	if !IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	access, err := c.refresh(ctx, tokens.AccessToken)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, access, body, out)
}

// refresh アクセストークンを更新して返す
//
// 同時に呼ばれた場合は1回の更新を待ち合わせる。failed と異なるトークンが
// すでに保存されていれば、他の呼び出しが更新済みなのでそれを使う。
// 更新処理は呼び出し元のキャンセルに影響されず、待っている他の呼び出しにも結果が届く。
func (c *Client) refresh(ctx context.Context, failed string) (string, error) {
	ch := c.refreshes.DoChan("refresh", func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		tokens, err := c.store.Load()
		if err != nil {
			return "", err
		}
		if tokens.AccessToken != "" && tokens.AccessToken != failed {
			return tokens.AccessToken, nil
		}
		if tokens.RefreshToken == "" {
			return "", ErrNotLoggedIn
		}

		var fresh Tokens
		body := map[string]string{"refreshToken": tokens.RefreshToken}
		if err := c.send(rctx, http.MethodPost, "/api/v1/users/refresh-token", "", body, &fresh); err != nil {
			return "", fmt.Errorf("refresh access token: %w", err)
		}
		if err := c.store.Save(fresh); err != nil {
			return "", err
		}
		logger.For(rctx).Debug("アクセストークンを更新しました")
		return fresh.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			logger.For(ctx).Debug("他のリクエストの更新結果を使用します")
		}
		return res.Val.(string), nil
	}
}

// send リクエストを1回送信し、data を out にデコード
func (c *Client) send(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
