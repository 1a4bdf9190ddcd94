package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrMissingComponent = errors.New("处理器缺少必要组件")
	ErrEmptyUpload      = errors.New("上传的简历为空")
	ErrPersistFailed    = errors.New("保存分析记录失败")
	ErrArchiveFailed    = errors.New("归档原始简历失败")
	ErrCacheFailed      = errors.New("读写报告缓存失败")
)

// ResumeProcessError 包含详细错误信息的自定义错误
type ResumeProcessError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ResumeProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *ResumeProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func NewPersistError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "persist",
		BaseErr:        ErrPersistFailed,
		Detail:         detail,
	}
}

func NewArchiveError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "archive",
		BaseErr:        ErrArchiveFailed,
		Detail:         detail,
	}
}

func NewCacheError(uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             "cache",
		BaseErr:        ErrCacheFailed,
		Detail:         detail,
	}
}
