package structs

import (
	"fmt"

	"github.com/pkg/errors"
)

type errorNotFound string

func (e errorNotFound) Error() string {
	return string(e)
}

func (e errorNotFound) NotFound() bool {
	return true
}

// NotFound returns an error that satisfies ErrorNotFound.
func NotFound(format string, args ...interface{}) error {
	return errorNotFound(fmt.Sprintf(format, args...))
}

// ErrorNotFound returns true if the error, or anything it wraps, is a "not found" error.
func ErrorNotFound(err error) bool {
	var nf interface{ NotFound() bool }

	if errors.As(err, &nf) {
		return nf.NotFound()
	}

	return false
}

type errorNotConfigured string

func (e errorNotConfigured) Error() string {
	return string(e)
}

func (e errorNotConfigured) NotConfigured() bool {
	return true
}

// NotConfigured returns an error that satisfies ErrorNotConfigured.
func NotConfigured(format string, args ...interface{}) error {
	return errorNotConfigured(fmt.Sprintf(format, args...))
}

// ErrorNotConfigured returns true if the error, or anything it wraps, reports
// a missing setting. These need an operator and are never retried.
func ErrorNotConfigured(err error) bool {
	var nc interface{ NotConfigured() bool }

	if errors.As(err, &nc) {
		return nc.NotConfigured()
	}

	return false
}
