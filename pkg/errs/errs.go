package errs

import (
	"errors"
	"fmt"
)

// 错误分类，所有业务错误都应能通过 errors.Is 归入以下一类
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyExists   = errors.New("already exists")
	ErrConflict        = errors.New("conflict")
)

// Error 携带业务描述的分类错误
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New 创建一个属于 kind 分类的错误
func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf 同 New，支持格式化
func Newf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NotFound 资源不存在
func NotFound(msg string) error { return New(ErrNotFound, msg) }

// Forbidden 无权限、被封禁或超出编辑窗口
func Forbidden(msg string) error { return New(ErrForbidden, msg) }

// InvalidArgument 参数不合法
func InvalidArgument(msg string) error { return New(ErrInvalidArgument, msg) }

// AlreadyExists 唯一约束冲突
func AlreadyExists(msg string) error { return New(ErrAlreadyExists, msg) }

// Conflict 并发插入失败，调用方应按更新路径重试
func Conflict(msg string) error { return New(ErrConflict, msg) }

// Kind 返回错误所属分类，无法识别时返回 nil
func Kind(err error) error {
	for _, k := range []error{ErrNotFound, ErrForbidden, ErrInvalidArgument, ErrAlreadyExists, ErrConflict} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
