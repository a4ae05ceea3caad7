// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface over text-completion services
// (OpenRouter, OpenAI, Mistral, Claude). Each backend implements Provider,
// and the Registry routes completions to the active one by name.
package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrUnknownProvider is returned when a provider name has no configured backend.
var ErrUnknownProvider = errors.New("ai: unknown provider")

// defaultTimeout bounds a single completion when the config leaves it unset.
const defaultTimeout = 90 * time.Second

// Provider is a text-completion backend. A completion is one user
// instruction in, the generated text out.
type Provider interface {
	// Complete sends a single user message and returns the content of the
	// first choice. A well-formed response without choices yields "".
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the provider identifier (e.g., "openrouter", "claude").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration

	// OpenRouter attribution headers (HTTP-Referer, X-Title). Ignored by
	// other backends.
	Referer string
	Title   string
}

func (c ProviderConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// Registry manages available providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry creates a registry with a provider for every config that has a
// non-empty API key. Configs without keys and unknown names are skipped.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openrouter":
			r.providers[name] = newOpenRouter(cfg)
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "mistral":
			r.providers[name] = newMistral(cfg)
		case "claude":
			r.providers[name] = newClaude(cfg)
		}
	}

	return r
}

// Complete calls the active provider.
func (r *Registry) Complete(ctx context.Context, prompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Complete(ctx, prompt)
}

// Pin resolves the active provider once and returns its Complete method.
// Calls through the returned function keep using that provider even if
// SetActive switches the registry afterwards.
func (r *Registry) Pin() (func(ctx context.Context, prompt string) (string, error), error) {
	p, err := r.Active()
	if err != nil {
		return nil, err
	}
	return p.Complete, nil
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("%w: no provider configured for %q", ErrUnknownProvider, r.active)
	}
	return p, nil
}

// SetActive switches the active provider at runtime.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("%w: %q is not available (no API key?)", ErrUnknownProvider, name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the sorted names of all configured providers.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a provider. Used for tests and custom backends.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// HasProvider checks whether a named provider is configured.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}
