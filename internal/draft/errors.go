// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package draft

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid draft request")

	// ErrGeneration matches every *GenerationError via errors.Is.
	ErrGeneration = errors.New("draft generation failed")

	// ErrEmptyCompletion is wrapped in a GenerationError when a text
	// service answers with nothing but whitespace.
	ErrEmptyCompletion = errors.New("empty completion")
)

// ValidationError reports a request rejected before any outbound call.
type ValidationError struct {
	Field   string // "prompt" or "category_id"
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// GenerationError reports a fatal failure while producing the draft.
// Part names what failed: "title", "body", "excerpt" or "category".
type GenerationError struct {
	Part string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Part, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }
