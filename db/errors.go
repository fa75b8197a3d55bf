package db

import (
	"errors"

	"gorm.io/gorm"
)

// 业务错误：controllers 按这些哨兵映射 HTTP 状态码
var (
	ErrNotFound        = errors.New("record not found")
	ErrCopyUnavailable = errors.New("book copy is not available")
	ErrLimitExceeded   = errors.New("issue limit reached for this library card")
	ErrCardInactive    = errors.New("library card is inactive")
	ErrAlreadyReturned = errors.New("issue already returned")
	ErrConflict        = errors.New("conflicting record already exists")
)

// asNotFound 把 gorm 的 record-not-found 统一翻译成 ErrNotFound
func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
