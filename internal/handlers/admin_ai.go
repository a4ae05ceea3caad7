// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"blogcms/internal/ai"
	"blogcms/internal/draft"
	"blogcms/internal/middleware"
)

// DraftGenerator turns a prompt into a candidate post.
// *draft.Generator satisfies it.
type DraftGenerator interface {
	Generate(ctx context.Context, req draft.Request) (*draft.Draft, error)
}

// ProviderRegistry exposes runtime selection of the completion backend.
// *ai.Registry satisfies it.
type ProviderRegistry interface {
	ActiveName() string
	Available() []string
	SetActive(name string) error
}

// AI groups the AI-assisted authoring endpoints.
type AI struct {
	generator DraftGenerator
	providers ProviderRegistry
}

// NewAI creates the AI handler group.
func NewAI(generator DraftGenerator, providers ProviderRegistry) *AI {
	return &AI{generator: generator, providers: providers}
}

// draftRequest keeps category_id as a string so a malformed id is reported
// as a field error rather than a JSON syntax error.
type draftRequest struct {
	Prompt     string `json:"prompt"`
	CategoryID string `json:"category_id"`
}

// GenerateDraft runs the prompt-to-draft workflow. Nothing is persisted:
// the editor reviews the draft and submits it to CreatePost.
//
//	200 draft, 400 validation failure, 502 completion failure.
func (h *AI) GenerateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	categoryID := uuid.Nil
	if s := strings.TrimSpace(req.CategoryID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeFieldError(w, "category_id", "category_id is not a valid id")
			return
		}
		categoryID = id
	}

	d, err := h.generator.Generate(r.Context(), draft.Request{
		Prompt:     req.Prompt,
		CategoryID: categoryID,
	})
	if err != nil {
		h.writeDraftError(w, r, err)
		return
	}

	user := "anonymous"
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		user = sess.Email
	}
	slog.Info("draft generated", "user", user, "category", d.CategoryID, "title", d.Title)
	writeJSON(w, http.StatusOK, d)
}

func (h *AI) writeDraftError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *draft.ValidationError
	var gErr *draft.GenerationError
	switch {
	case errors.As(err, &vErr):
		writeFieldError(w, vErr.Field, vErr.Message)
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		slog.Info("draft generation abandoned by client", "error", err)
	case errors.As(err, &gErr):
		slog.Error("draft generation failed", "part", gErr.Part, "error", gErr.Err)
		writeError(w, http.StatusBadGateway, "draft generation failed, please try again")
	default:
		internalError(w, "draft generation failed", err)
	}
}

// providerStatus is the body of the provider endpoints.
type providerStatus struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

func (h *AI) status() providerStatus {
	return providerStatus{
		Active:    h.providers.ActiveName(),
		Available: nonNil(h.providers.Available()),
	}
}

// Provider reports the active completion provider and the configured ones.
func (h *AI) Provider(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

type setProviderRequest struct {
	Provider string `json:"provider"`
}

// SetProvider switches the active completion provider at runtime.
func (h *AI) SetProvider(w http.ResponseWriter, r *http.Request) {
	var req setProviderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Provider)
	if name == "" {
		writeFieldError(w, "provider", "No provider specified.")
		return
	}

	if err := h.providers.SetActive(name); err != nil {
		if errors.Is(err, ai.ErrUnknownProvider) {
			slog.Warn("failed to switch AI provider", "provider", name, "error", err)
			writeFieldError(w, "provider", "Provider not available (no API key configured).")
			return
		}
		internalError(w, "switch provider failed", err, "provider", name)
		return
	}

	slog.Info("ai provider switched", "provider", name)
	writeJSON(w, http.StatusOK, h.status())
}
