package toolerr

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Code identifies a class of tool failure.
type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeFileNotFound     Code = "FILE_NOT_FOUND"
	CodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"
	CodeDBNotFound       Code = "DB_NOT_FOUND"
	CodeDB               Code = "DB_ERROR"
	CodeCompile          Code = "COMPILE_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// retryableByCode is the single source of truth for retry semantics.
var retryableByCode = map[Code]bool{
	CodeValidation:       false,
	CodeFileNotFound:     false,
	CodeTemplateNotFound: false,
	CodeDBNotFound:       false,
	CodeDB:               true,
	CodeCompile:          true,
	CodeInternal:         true,
}

// Error is the error shape every tool operation surfaces to callers.
// Message is always sanitized before it leaves this package.
type Error struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New builds an Error with the retryability implied by code.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:      code,
		Message:   Sanitize(fmt.Sprintf(format, args...)),
		Retryable: retryableByCode[code],
	}
}

func Validation(format string, args ...any) *Error {
	return New(CodeValidation, format, args...)
}

func FileNotFound(format string, args ...any) *Error {
	return New(CodeFileNotFound, format, args...)
}

func TemplateNotFound(format string, args ...any) *Error {
	return New(CodeTemplateNotFound, format, args...)
}

func DBNotFound(format string, args ...any) *Error {
	return New(CodeDBNotFound, format, args...)
}

func DB(format string, args ...any) *Error {
	return New(CodeDB, format, args...)
}

func Compile(format string, args ...any) *Error {
	return New(CodeCompile, format, args...)
}

func Internal(format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasPrefix(msg, "Internal error:") {
		msg = "Internal error: " + msg
	}
	return New(CodeInternal, "%s", msg)
}

// From coerces any error into an *Error. Already-typed errors pass
// through unchanged; everything else becomes INTERNAL_ERROR.
func From(err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return Internal("%s", err.Error())
}

// CodeOf reports the taxonomy code carried by err, or CodeInternal
// when err is not an *Error.
func CodeOf(err error) Code {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return CodeInternal
}

const maxMessageLen = 200

var (
	sqlRe  = regexp.MustCompile(`(?i)\b(?:select\s+[\w*]+|insert\s+(?:or\s+\w+\s+)?into|update\s+\w+\s+set|delete\s+from|create\s+(?:table|index|unique)|alter\s+table|drop\s+(?:table|index)|pragma\s+\w+)\b[^;\n]*`)
	pathRe = regexp.MustCompile(`(?:/[\w.@~+-]+){2,}`)
)

// Sanitize reduces an error message to something safe to surface:
// first line only, SQL fragments and absolute paths redacted, length
// capped.
func Sanitize(msg string) string {
	line := msg
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)

	line = sqlRe.ReplaceAllString(line, "[SQL query]")
	line = pathRe.ReplaceAllStringFunc(line, func(p string) string {
		return filepath.Base(p) + " [path]"
	})

	if len(line) > maxMessageLen {
		line = line[:maxMessageLen-3] + "..."
	}
	return line
}
