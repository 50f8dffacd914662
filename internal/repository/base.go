// Package repository provides data access layer implementations for the application.
package repository

import "errors"

// Sentinel errors surfaced by repositories so services can map them to API
// error codes without inspecting SQL state.
var (
	// ErrQuotaExceeded is returned when a session has used its daily
	// confession allowance.
	ErrQuotaExceeded = errors.New("daily confession quota exceeded")

	// ErrAlreadyReviewed is returned when a moderation decision targets
	// content that has already left the pending state.
	ErrAlreadyReviewed = errors.New("content already reviewed")

	// ErrInsufficientTokens is returned when a purchase costs more than
	// the balance holds.
	ErrInsufficientTokens = errors.New("insufficient token balance")

	// ErrAlreadyCredited is returned when a once-only credit repeats its
	// dedup key.
	ErrAlreadyCredited = errors.New("credit already recorded")
)
