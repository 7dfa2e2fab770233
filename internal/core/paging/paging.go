package paging

import "errors"

// MaxPageSize は 1 ページあたりの最大件数です。
const MaxPageSize = 200

var (
	ErrInvalidPage     = errors.New("paging: page must be >= 1")
	ErrInvalidPageSize = errors.New("paging: invalid page size")
)

// Offset は 1 始まりのページ番号から取得開始位置 size*(page-1) を計算します。
func Offset(page, size int) (int, error) {
	if page < 1 {
		return 0, ErrInvalidPage
	}
	if size < 1 || size > MaxPageSize {
		return 0, ErrInvalidPageSize
	}
	return size * (page - 1), nil
}

// PageCount は総件数を表示するのに必要なページ数を返します。
func PageCount(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
