package models

// デフォルトのページング設定
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest ページ指定
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest 不正な値はデフォルトに丸める
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset スキップ件数
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination ページング情報
type Pagination struct {
	TotalItems  int64 `json:"totalItems"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination 総件数からページング情報を作成
func NewPagination(total int64, req PageRequest) Pagination {
	// 総ページ数を計算
	pages := int(total) / req.Limit
	if int(total)%req.Limit > 0 {
		pages++
	}

	return Pagination{
		TotalItems:  total,
		CurrentPage: req.Page,
		TotalPages:  pages,
		Limit:       req.Limit,
		HasNextPage: req.Page < pages,
		HasPrevPage: req.Page > 1,
	}
}
