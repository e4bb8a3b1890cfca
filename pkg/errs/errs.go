// Package errs 定义业务错误类型
//
// 六类错误码对应六类失败：参数校验、记录不存在、重复操作、无权限、
// 状态非法、下游/系统异常。前五类属于业务失败，错误信息原样返回给调用方；
// 系统错误只返回笼统提示，细节进日志。
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 业务错误码
type Code string

const (
	CodeValidation Code = "validation" // 参数校验失败
	CodeNotFound   Code = "not_found"  // 记录不存在
	CodeConflict   Code = "conflict"   // 重复操作/冲突
	CodePermission Code = "permission" // 无权限
	CodeState      Code = "state"      // 当前状态下操作非法
	CodeSystem     Code = "system"     // 存储/下游异常
)

// Error 业务错误
type Error struct {
	Code Code   // 稳定的错误码
	Msg  string // 面向调用方的提示
	Err  error  // 底层错误，仅用于日志
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus 错误码对应的 HTTP 状态码
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodePermission:
		return http.StatusForbidden
	case CodeState:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewValidation 参数校验错误
func NewValidation(msg string) *Error {
	return &Error{Code: CodeValidation, Msg: msg}
}

// NewNotFound 记录不存在
func NewNotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Msg: msg}
}

// NewConflict 重复操作
func NewConflict(msg string) *Error {
	return &Error{Code: CodeConflict, Msg: msg}
}

// NewPermission 无权限
func NewPermission(msg string) *Error {
	return &Error{Code: CodePermission, Msg: msg}
}

// NewState 状态非法
func NewState(msg string) *Error {
	return &Error{Code: CodeState, Msg: msg}
}

// NewSystem 系统错误，msg 返回给调用方，err 进日志
func NewSystem(msg string, err error) *Error {
	return &Error{Code: CodeSystem, Msg: msg, Err: err}
}

// From 提取业务错误，非业务错误包装为系统错误
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeSystem, Msg: "服务器内部错误", Err: err}
}

// IsCode 判断错误是否为指定错误码
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsConflict 是否为冲突错误
func IsConflict(err error) bool { return IsCode(err, CodeConflict) }

// IsNotFound 是否为不存在错误
func IsNotFound(err error) bool { return IsCode(err, CodeNotFound) }

// IsState 是否为状态错误
func IsState(err error) bool { return IsCode(err, CodeState) }

// IsValidation 是否为校验错误
func IsValidation(err error) bool { return IsCode(err, CodeValidation) }

// IsPermission 是否为权限错误
func IsPermission(err error) bool { return IsCode(err, CodePermission) }
