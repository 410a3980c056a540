// Package httperr carries an HTTP status code alongside an error so handlers
// can return failures inline and the router renders them uniformly.
package httperr

import (
	"fmt"
	"net/http"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/pkg/errors"
	"github.com/stvp/rollbar"
)

type Error struct {
	code  int
	err   error
	stack rollbar.Stack
}

// Configure enables reporting of server errors. An empty token disables it.
func Configure(token, environment string) {
	rollbar.Token = token

	if environment != "" {
		rollbar.Environment = environment
	}
}

func New(code int, err error) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		code:  code,
		err:   err,
		stack: rollbar.BuildStack(3),
	}
}

func Errorf(code int, format string, args ...interface{}) *Error {
	return New(code, fmt.Errorf(format, args...))
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, err)
}

func Server(err error) *Error {
	return New(http.StatusInternalServerError, err)
}

// Classify maps a domain error to a status: validation failures are 400,
// missing objects are 404 and everything else is 500.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var he *Error
	if errors.As(err, &he) {
		return he
	}

	var ve structs.ValidationError
	if errors.As(err, &ve) {
		return New(http.StatusBadRequest, err)
	}

	if structs.ErrorNotFound(err) {
		return New(http.StatusNotFound, err)
	}

	return New(http.StatusInternalServerError, err)
}

func (e *Error) Code() int {
	return e.code
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Save reports the error when reporting is configured.
func (e *Error) Save(at string) {
	if rollbar.Token == "" {
		return
	}

	rollbar.ErrorWithStack(rollbar.ERR, e.err, e.stack, &rollbar.Field{Name: "at", Data: at})
}

func (e *Error) Server() bool {
	return e.code >= 500 && e.code < 600
}

func (e *Error) User() bool {
	return e.code >= 400 && e.code < 500
}
