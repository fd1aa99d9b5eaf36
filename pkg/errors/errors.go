// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// Media intake errors (1100-1199)
	CodeNotVideo      = 1100
	CodeMediaDownload = 1101
	CodeProbeFailed   = 1102
	CodeMediaTooLarge = 1103

	// Engine errors (1200-1299)
	CodeEngineLoad    = 1200
	CodeEngineExec    = 1201
	CodeEngineStorage = 1202

	// Export errors (1300-1399)
	CodeExportNoClips      = 1300
	CodeExportInvalidClips = 1301
	CodeExportFailed       = 1302
	CodeExportBusy         = 1303

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "参数错误 Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "资源不存在 Resource not found")

	// Media intake
	ErrNotVideo      = New(CodeNotVideo, "仅支持视频文件 Only video files are supported")
	ErrMediaDownload = New(CodeMediaDownload, "媒体下载失败 Media download failed")

	// Engine
	ErrEngineLoad = New(CodeEngineLoad, "媒体引擎加载失败 Media engine failed to load")

	// Export
	ErrExportNoClips      = New(CodeExportNoClips, "请先添加视频片段 Add clips first")
	ErrExportInvalidClips = New(CodeExportInvalidClips, "每个片段必须超过最短时长 Every clip must exceed the minimum length")
	ErrExportFailed       = New(CodeExportFailed, "导出失败，请重试 Export failed, please retry")
	ErrExportBusy         = New(CodeExportBusy, "导出正在进行中 An export is already in progress")

	// Storage
	ErrDBError      = New(CodeDBError, "数据库错误 Database error")
	ErrFileNotFound = New(CodeFileNotFound, "文件不存在 File not found")
)
