// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperr defines the error kinds shared by services and handlers.
// Every kind is a go-errors category plus a text code and an HTTP code.
package apperr

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Kind classifies a domain failure. It doubles as the error's text code.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindExpired      Kind = "expired"
	KindExhausted    Kind = "exhausted"
	KindIntegrity    Kind = "integrity_failure"
	KindInvalid      Kind = "invalid"
)

type classification struct {
	category goerrors.Category
	code     int
}

// Only unauthorized, not found and conflict carry their own HTTP code.
var classifications = map[Kind]classification{
	KindNotFound:     {goerrors.CategoryNotFound, goerrors.CodeNotFound},
	KindUnauthorized: {goerrors.CategoryAuth, goerrors.CodeUnauthorized},
	KindConflict:     {goerrors.CategoryConflict, goerrors.CodeConflict},
	KindExpired:      {goerrors.CategoryBadInput, goerrors.CodeBadRequest},
	KindExhausted:    {goerrors.CategoryOperation, goerrors.CodeBadRequest},
	KindIntegrity:    {goerrors.CategoryInternal, goerrors.CodeBadRequest},
	KindInvalid:      {goerrors.CategoryValidation, goerrors.CodeBadRequest},
}

func classify(kind Kind) classification {
	if c, ok := classifications[kind]; ok {
		return c
	}
	return classification{goerrors.CategoryInternal, goerrors.CodeBadRequest}
}

// New creates an error of the given kind.
func New(kind Kind, message string) *goerrors.Error {
	c := classify(kind)
	return goerrors.New(message, c.category).
		WithTextCode(string(kind)).
		WithCode(c.code)
}

// Wrap creates an error of the given kind around a cause. The cause stays
// out of the client-facing message.
func Wrap(kind Kind, message string, err error) *goerrors.Error {
	c := classify(kind)
	return goerrors.Wrap(err, c.category, message).
		WithTextCode(string(kind)).
		WithCode(c.code)
}

func NotFound(message string) *goerrors.Error     { return New(KindNotFound, message) }
func Unauthorized(message string) *goerrors.Error { return New(KindUnauthorized, message) }
func Conflict(message string) *goerrors.Error     { return New(KindConflict, message) }
func Expired(message string) *goerrors.Error      { return New(KindExpired, message) }
func Exhausted(message string) *goerrors.Error    { return New(KindExhausted, message) }
func Integrity(message string) *goerrors.Error    { return New(KindIntegrity, message) }
func Invalid(message string) *goerrors.Error      { return New(KindInvalid, message) }

// Kinder is implemented by errors that classify themselves without being a
// go-errors value, such as password policy failures.
type Kinder interface {
	Kind() Kind
}

// From returns the go-errors value describing err, or nil if err carries no kind.
func From(err error) *goerrors.Error {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		return rich
	}
	var k Kinder
	if errors.As(err, &k) {
		return New(k.Kind(), err.Error())
	}
	return nil
}

// KindOf returns the kind of err, or "" if none.
func KindOf(err error) Kind {
	if rich := From(err); rich != nil {
		return Kind(rich.TextCode)
	}
	return ""
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
