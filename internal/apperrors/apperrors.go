package apperrors

import (
	"errors"
	"net/http"
)

// Kind エラー種別
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error HTTPステータスに対応付けられるアプリケーションエラー
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation 入力値エラー (400)
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// Unauthorized 認証エラー (401)
func Unauthorized(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden 権限エラー (403)
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound リソースが存在しない (404)
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict 一意制約違反など (409)
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal 想定外のエラー (500)
func Internal(err error, message string) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf エラー種別を取得。apperrors以外のエラーはKindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is 指定した種別かどうか
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus エラー種別に対応するHTTPステータス
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage クライアントに返すメッセージ。内部エラーのメッセージはログ専用
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal && appErr.Message != "" {
		return appErr.Message
	}
	return "Something went wrong"
}
