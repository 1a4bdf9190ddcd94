package analyzer

import (
	"errors"
	"fmt"
)

// ErrUnreadableDocument 文档无法作为分页文本解析（结构损坏、加密、非PDF等）
// 对同一文档重试没有意义，调用方应直接向用户报告
var ErrUnreadableDocument = errors.New("无法读取简历文档")

// DocumentError 包含文档标识的读取错误
type DocumentError struct {
	URI    string
	Detail string
	Err    error
}

func (e *DocumentError) Error() string {
	msg := fmt.Sprintf("%s (URI:%s)", ErrUnreadableDocument, e.URI)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrUnreadableDocument) 对所有 DocumentError 成立
func (e *DocumentError) Is(target error) bool {
	return target == ErrUnreadableDocument
}

// NewUnreadableError 构造文档读取错误
func NewUnreadableError(uri, detail string, cause error) error {
	return &DocumentError{URI: uri, Detail: detail, Err: cause}
}
