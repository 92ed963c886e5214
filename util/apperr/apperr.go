// Package apperr holds the coded errors shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	ErrValidation           ErrCode = "VALIDATION"
	ErrInvalidQuantity      ErrCode = "INVALID_QUANTITY"
	ErrInvalidPeriod        ErrCode = "INVALID_PERIOD"
	ErrNotFound             ErrCode = "NOT_FOUND"
	ErrItemNotFound         ErrCode = "ITEM_NOT_FOUND"
	ErrInvalidTransition    ErrCode = "INVALID_TRANSITION"
	ErrQuoteNotEditable     ErrCode = "QUOTE_NOT_EDITABLE"
	ErrQuoteNotFinalized    ErrCode = "QUOTE_NOT_FINALIZED"
	ErrEmptyQuote           ErrCode = "EMPTY_QUOTE"
	ErrEquipmentUnavailable ErrCode = "EQUIPMENT_UNAVAILABLE"
	ErrUnsupportedModality  ErrCode = "UNSUPPORTED_MODALITY"
	ErrEquipmentInUse       ErrCode = "EQUIPMENT_IN_USE"
	ErrDuplicate            ErrCode = "DUPLICATE"
	ErrTransient            ErrCode = "TRANSIENT"
	ErrForbidden            ErrCode = "FORBIDDEN"
	ErrUnauthenticated      ErrCode = "UNAUTHENTICATED"
)

var messages = map[ErrCode]string{
	ErrValidation:           "invalid input",
	ErrInvalidQuantity:      "quantity must be at least 1",
	ErrInvalidPeriod:        "period must be at least 1",
	ErrNotFound:             "not found",
	ErrItemNotFound:         "quote item not found",
	ErrInvalidTransition:    "operation not allowed in the current status",
	ErrQuoteNotEditable:     "quote can no longer be changed",
	ErrQuoteNotFinalized:    "quote must be finalized first",
	ErrEmptyQuote:           "quote has no items",
	ErrEquipmentUnavailable: "equipment is not available in the requested quantity",
	ErrUnsupportedModality:  "equipment has no price for the requested modality",
	ErrEquipmentInUse:       "equipment is linked to pending or approved reservations",
	ErrDuplicate:            "already exists",
	ErrTransient:            "temporary failure, try again",
	ErrForbidden:            "forbidden",
	ErrUnauthenticated:      "unauthenticated",
}

// Message is the human readable text for a code.
func Message(c ErrCode) string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "internal error"
}

type codedError struct {
	code   ErrCode
	detail string
	cause  error
}

func (e *codedError) Error() string {
	msg := string(e.code)
	if e.detail != "" {
		msg += ": " + e.detail
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *codedError) Code() ErrCode  { return e.code }
func (e *codedError) Detail() string { return e.detail }
func (e *codedError) Unwrap() error  { return e.cause }

func New(c ErrCode) error { return &codedError{code: c} }

func Newf(c ErrCode, format string, args ...any) error {
	return &codedError{code: c, detail: fmt.Sprintf(format, args...)}
}

func Wrap(c ErrCode, err error, detail string) error {
	return &codedError{code: c, detail: detail, cause: err}
}

// Code extracts the error code, "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Detail extracts the detail text of a coded error.
func Detail(err error) string {
	var ce interface{ Detail() string }
	if errors.As(err, &ce) {
		return ce.Detail()
	}
	return ""
}

func Is(err error, c ErrCode) bool { return Code(err) == c }

// IsValidation reports input-shape errors (never retried).
func IsValidation(err error) bool {
	switch Code(err) {
	case ErrValidation, ErrInvalidQuantity, ErrInvalidPeriod, ErrUnsupportedModality:
		return true
	}
	return false
}

// Retryable reports whether the caller may retry with backoff.
func Retryable(err error) bool { return Code(err) == ErrTransient }
