// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package apperr is the closed error taxonomy shared by every component:
// catalog, retrieval, embedding, LLM oracle, workers, supervisor, and the
// turn orchestrator. Every error that crosses a component boundary is an
// *Error wrapping an underlying cause, carrying a stable Code for
// classification with errors.Is/errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a stable identifier for one class of failure. Codes are never
// renamed once shipped; callers match on Code, not on error text.
type Code string

const (
	CodeInvalidQuantity        Code = "invalid_quantity"
	CodeMissingField           Code = "missing_field"
	CodeBadImage               Code = "bad_image"
	CodeNotFound               Code = "not_found"
	CodeInsufficientInventory  Code = "insufficient_inventory"
	CodeRetrieverUnavailable   Code = "retriever_unavailable"
	CodeEmbeddingFailure       Code = "embedding_failure"
	CodeLLMFailure             Code = "llm_failure"
	CodeLoopExhausted          Code = "loop_exhausted"
	CodeTurnTimeout            Code = "turn_timeout"
	CodeStoreFailure           Code = "store_failure"
)

// Error is the concrete error type for every apperr constructor. It wraps
// an optional underlying cause and exposes Code for classification.
type Error struct {
	Code    Code
	Message string
	Cause   error

	// fields carries structured detail for codes that need it
	// (insufficient_inventory: product_id/requested/available).
	ProductID string
	Requested int
	Available int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Code, so plain
// errors.Is(err, apperr.NotFound("x","y")) style checks are unnecessary;
// callers instead compare codes via CodeOf.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the Code from err, walking the wrap chain. Returns ""
// when err is nil or carries no apperr.Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func NotFound(kind, id string) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", kind, id)}
}

func InvalidQuantity() error {
	return &Error{Code: CodeInvalidQuantity, Message: "quantity must be >= 1"}
}

func MissingField(name string) error {
	return &Error{Code: CodeMissingField, Message: fmt.Sprintf("missing field %q", name)}
}

func BadImage(reason string) error {
	return &Error{Code: CodeBadImage, Message: reason}
}

func InsufficientInventory(productID string, requested, available int) error {
	return &Error{
		Code:      CodeInsufficientInventory,
		Message:   fmt.Sprintf("product %s: requested %d, only %d available", productID, requested, available),
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

func RetrieverUnavailable(cause error) error {
	return &Error{Code: CodeRetrieverUnavailable, Message: "retriever unavailable", Cause: cause}
}

func EmbeddingFailure(cause error) error {
	return &Error{Code: CodeEmbeddingFailure, Message: "embedding oracle failed", Cause: cause}
}

func LLMFailure(reason string, cause error) error {
	return &Error{Code: CodeLLMFailure, Message: reason, Cause: cause}
}

func LoopExhausted(calls int) error {
	return &Error{Code: CodeLoopExhausted, Message: fmt.Sprintf("exceeded %d tool calls", calls)}
}

func TurnTimeout() error {
	return &Error{Code: CodeTurnTimeout, Message: "turn deadline exceeded"}
}

func StoreFailure(cause error) error {
	return &Error{Code: CodeStoreFailure, Message: "store failure", Cause: cause}
}

// UserMessage renders the spec's user-visible text policy: generic wording
// for store/LLM/timeout failures, specific wording for business errors.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "I couldn't complete that — please try again."
	}
	switch e.Code {
	case CodeInsufficientInventory:
		return fmt.Sprintf("We only have %d of those left.", e.Available)
	case CodeNotFound:
		return "I couldn't find that product."
	case CodeInvalidQuantity:
		return "Please choose a quantity of at least 1."
	case CodeMissingField, CodeBadImage:
		return e.Message
	default:
		return "I couldn't complete that — please try again."
	}
}
