// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package draft turns a short prompt into a reviewable blog post draft.
// Three text completions (title, body, excerpt) and one image search run
// concurrently. A failed text completion fails the whole draft; a failed
// image search falls back to a fixed image URL.
package draft

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"blogcms/internal/models"
)

// Image fallback reasons reported to the Observer.
const (
	FallbackEmptyQuery   = "empty_query"
	FallbackUnconfigured = "unconfigured"
	FallbackSearchFailed = "search_failed"
	FallbackInvalidURL   = "invalid_url"
)

// Draft generation outcomes reported to the Observer.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeGenerationError = "generation_error"
)

// TextCompleter produces text for a single natural-language instruction.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Pinner is implemented by completers that switch backends at runtime.
// Generate pins once so every part of a draft comes from the same backend.
type Pinner interface {
	Pin() (func(ctx context.Context, prompt string) (string, error), error)
}

// ImageSearcher returns the URL of a photo matching a keyword query.
type ImageSearcher interface {
	SearchImage(ctx context.Context, query string) (string, error)
}

// CategoryLookup reports whether a category exists.
type CategoryLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Observer receives generation events for operator visibility.
type Observer interface {
	ImageFallback(reason string)
	DraftGenerated(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ImageFallback(string)                 {}
func (nopObserver) DraftGenerated(string, time.Duration) {}

// Request is the input to Generate.
type Request struct {
	Prompt     string    `json:"prompt"`
	CategoryID uuid.UUID `json:"category_id"`
}

// Draft is a fully populated, unpersisted candidate post.
type Draft struct {
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Excerpt    string    `json:"excerpt"`
	ImageURL   string    `json:"image_url"`
	CategoryID uuid.UUID `json:"category_id"`
}

// Generator runs the prompt-to-draft workflow. It holds no per-request
// state and is safe for concurrent use.
type Generator struct {
	text          TextCompleter
	images        ImageSearcher
	categories    CategoryLookup
	fallbackImage string
	observer      Observer
}

// Option configures a Generator.
type Option func(*Generator)

// WithFallbackImage overrides the image URL used when image search fails.
func WithFallbackImage(u string) Option {
	return func(g *Generator) {
		if u != "" {
			g.fallbackImage = u
		}
	}
}

// WithObserver attaches an Observer for fallback and outcome events.
func WithObserver(o Observer) Option {
	return func(g *Generator) {
		if o != nil {
			g.observer = o
		}
	}
}

// DefaultFallbackImage is used when no WithFallbackImage option is given.
const DefaultFallbackImage = models.DefaultFeaturedImage

// NewGenerator creates a Generator. images may be nil, in which case every
// draft gets the fallback image.
func NewGenerator(text TextCompleter, images ImageSearcher, categories CategoryLookup, opts ...Option) *Generator {
	g := &Generator{
		text:          text,
		images:        images,
		categories:    categories,
		fallbackImage: DefaultFallbackImage,
		observer:      nopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate validates req and produces a draft. The error, when non-nil, is
// either a *ValidationError or a *GenerationError, and the draft is nil.
func (g *Generator) Generate(ctx context.Context, req Request) (*Draft, error) {
	start := time.Now()
	d, err := g.generate(ctx, req)

	outcome := OutcomeSuccess
	switch err.(type) {
	case nil:
	case *ValidationError:
		outcome = OutcomeValidationError
	default:
		outcome = OutcomeGenerationError
	}
	g.observer.DraftGenerated(outcome, time.Since(start))

	return d, err
}

func (g *Generator) generate(ctx context.Context, req Request) (*Draft, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, &ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	if req.CategoryID == uuid.Nil {
		return nil, &ValidationError{Field: "category_id", Message: "category is required"}
	}

	exists, err := g.categories.Exists(ctx, req.CategoryID)
	if err != nil {
		return nil, &GenerationError{Part: "category", Err: err}
	}
	if !exists {
		return nil, &ValidationError{Field: "category_id", Message: "category does not exist"}
	}

	complete := g.text.Complete
	if p, ok := g.text.(Pinner); ok {
		if complete, err = p.Pin(); err != nil {
			return nil, &GenerationError{Part: "provider", Err: err}
		}
	}

	d := &Draft{CategoryID: req.CategoryID}
	parts := []struct {
		name        string
		instruction string
		out         *string
	}{
		{"title", TitleInstruction(prompt), &d.Title},
		{"body", BodyInstruction(prompt), &d.Body},
		{"excerpt", ExcerptInstruction(prompt), &d.Excerpt},
	}

	// Each goroutine writes only its own field. Siblings keep running when
	// one fails; ctx is the only thing that stops them early.
	var eg errgroup.Group
	for _, p := range parts {
		p := p
		eg.Go(func() error {
			text, err := complete(ctx, p.instruction)
			if err != nil {
				return &GenerationError{Part: p.name, Err: err}
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return &GenerationError{Part: p.name, Err: ErrEmptyCompletion}
			}
			*p.out = text
			return nil
		})
	}

	query := Keywords(prompt)
	eg.Go(func() error {
		d.ImageURL = g.resolveImage(ctx, query)
		return nil
	})

	if err := eg.Wait(); err != nil {
		slog.Warn("draft generation failed", "error", err)
		return nil, err
	}
	return d, nil
}

// resolveImage never fails: every problem degrades to the fallback URL.
func (g *Generator) resolveImage(ctx context.Context, query string) string {
	if query == "" {
		return g.fallback(FallbackEmptyQuery, nil)
	}
	if g.images == nil {
		return g.fallback(FallbackUnconfigured, nil)
	}

	found, err := g.images.SearchImage(ctx, query)
	if err != nil {
		return g.fallback(FallbackSearchFailed, err)
	}
	if !isHTTPURL(strings.TrimSpace(found)) {
		return g.fallback(FallbackInvalidURL, nil)
	}
	return strings.TrimSpace(found)
}

func (g *Generator) fallback(reason string, err error) string {
	if err != nil {
		slog.Warn("image search failed, using fallback", "reason", reason, "error", err)
	} else {
		slog.Warn("image search skipped, using fallback", "reason", reason)
	}
	g.observer.ImageFallback(reason)
	return g.fallbackImage
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
