// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// mockProvider is a test double implementing the Provider interface.
// It records calls and returns configurable responses.
type mockProvider struct {
	name       string
	response   string
	err        error
	callCount  int
	lastPrompt string
	mu         sync.Mutex
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastPrompt = prompt
	return m.response, m.err
}

// ---------- Registry.Complete ----------

func TestRegistryComplete(t *testing.T) {
	t.Run("delegates to active provider", func(t *testing.T) {
		mock := &mockProvider{name: "test", response: "Hello from mock"}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		result, err := reg.Complete(context.Background(), "write a title")
		if err != nil {
			t.Fatalf("Complete: unexpected error: %v", err)
		}
		if result != "Hello from mock" {
			t.Errorf("result: got %q, want %q", result, "Hello from mock")
		}

		mock.mu.Lock()
		defer mock.mu.Unlock()
		if mock.callCount != 1 {
			t.Errorf("callCount: got %d, want 1", mock.callCount)
		}
		if mock.lastPrompt != "write a title" {
			t.Errorf("prompt: got %q, want %q", mock.lastPrompt, "write a title")
		}
	})

	t.Run("propagates provider error", func(t *testing.T) {
		mock := &mockProvider{name: "test", err: fmt.Errorf("api failure")}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		_, err := reg.Complete(context.Background(), "x")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if err.Error() != "api failure" {
			t.Errorf("error: got %q, want %q", err.Error(), "api failure")
		}
	})
}

func TestRegistryCompleteNoProvider(t *testing.T) {
	mock := &mockProvider{name: "openai", response: "hi"}

	reg := &Registry{
		providers: map[string]Provider{"openai": mock},
		active:    "openrouter", // not registered
	}

	_, err := reg.Complete(context.Background(), "x")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if mock.callCount != 0 {
		t.Errorf("inactive provider was called %d times", mock.callCount)
	}
}

// ---------- Registry.SetActive ----------

func TestRegistrySetActive(t *testing.T) {
	t.Run("switches to valid provider", func(t *testing.T) {
		reg := &Registry{
			providers: map[string]Provider{
				"a": &mockProvider{name: "a", response: "from a"},
				"b": &mockProvider{name: "b", response: "from b"},
			},
			active: "a",
		}

		if err := reg.SetActive("b"); err != nil {
			t.Fatalf("SetActive(b): unexpected error: %v", err)
		}
		if reg.ActiveName() != "b" {
			t.Errorf("ActiveName: got %q, want %q", reg.ActiveName(), "b")
		}

		result, err := reg.Complete(context.Background(), "x")
		if err != nil {
			t.Fatalf("Complete: unexpected error: %v", err)
		}
		if result != "from b" {
			t.Errorf("result: got %q, want %q", result, "from b")
		}
	})

	t.Run("rejects unknown provider and keeps current", func(t *testing.T) {
		reg := &Registry{
			providers: map[string]Provider{"openai": &mockProvider{name: "openai"}},
			active:    "openai",
		}

		for _, name := range []string{"nonexistent", ""} {
			if err := reg.SetActive(name); !errors.Is(err, ErrUnknownProvider) {
				t.Errorf("SetActive(%q): expected ErrUnknownProvider, got %v", name, err)
			}
		}
		if reg.ActiveName() != "openai" {
			t.Errorf("ActiveName should remain openai, got %q", reg.ActiveName())
		}
	})
}

// ---------- Registry.Pin ----------

func TestRegistryPin(t *testing.T) {
	t.Run("keeps provider across switch", func(t *testing.T) {
		a := &mockProvider{name: "a", response: "from a"}
		b := &mockProvider{name: "b", response: "from b"}
		reg := &Registry{
			providers: map[string]Provider{"a": a, "b": b},
			active:    "a",
		}

		complete, err := reg.Pin()
		if err != nil {
			t.Fatalf("Pin: unexpected error: %v", err)
		}
		if err := reg.SetActive("b"); err != nil {
			t.Fatalf("SetActive(b): %v", err)
		}

		result, err := complete(context.Background(), "x")
		if err != nil {
			t.Fatalf("pinned Complete: %v", err)
		}
		if result != "from a" {
			t.Errorf("pinned result: got %q, want %q", result, "from a")
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.callCount != 0 {
			t.Errorf("provider b called %d times through pinned func", b.callCount)
		}
	})

	t.Run("no active provider", func(t *testing.T) {
		reg := &Registry{providers: map[string]Provider{}}

		complete, err := reg.Pin()
		if !errors.Is(err, ErrUnknownProvider) {
			t.Fatalf("expected ErrUnknownProvider, got %v", err)
		}
		if complete != nil {
			t.Error("expected nil func on error")
		}
	})
}

// ---------- Registry.Available / HasProvider / Register ----------

func TestRegistryAvailableSorted(t *testing.T) {
	reg := &Registry{
		providers: map[string]Provider{
			"openrouter": &mockProvider{name: "openrouter"},
			"claude":     &mockProvider{name: "claude"},
			"mistral":    &mockProvider{name: "mistral"},
		},
	}

	got := reg.Available()
	want := []string{"claude", "mistral", "openrouter"}
	if len(got) != len(want) {
		t.Fatalf("Available: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Available[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	empty := &Registry{providers: map[string]Provider{}}
	if n := len(empty.Available()); n != 0 {
		t.Errorf("empty registry: got %d providers", n)
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry("custom", nil)
	if reg.HasProvider("custom") {
		t.Fatal("custom should not exist before Register")
	}

	reg.Register("custom", &mockProvider{name: "custom", response: "ok"})

	if !reg.HasProvider("custom") {
		t.Fatal("custom should exist after Register")
	}
	got, err := reg.Complete(context.Background(), "x")
	if err != nil || got != "ok" {
		t.Fatalf("Complete = %q, %v", got, err)
	}
}

// ---------- Concurrency ----------

func TestRegistryConcurrency(t *testing.T) {
	reg := &Registry{
		providers: map[string]Provider{
			"a": &mockProvider{name: "a", response: "from a"},
			"b": &mockProvider{name: "b", response: "from b"},
		},
		active: "a",
	}

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			name := "a"
			if i%2 == 0 {
				name = "b"
			}
			reg.SetActive(name)
		}(i)
	}

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			result, err := reg.Complete(context.Background(), "x")
			if err != nil {
				t.Errorf("Complete error during concurrency: %v", err)
				return
			}
			if result != "from a" && result != "from b" {
				t.Errorf("unexpected result: %q", result)
			}
		}()
	}

	wg.Wait()
}

// ---------- NewRegistry ----------

func TestNewRegistryProviderNames(t *testing.T) {
	for _, name := range []string{"openrouter", "openai", "mistral", "claude"} {
		t.Run(name, func(t *testing.T) {
			reg := NewRegistry(name, map[string]ProviderConfig{
				name: {APIKey: "test-key", Model: "test-model"},
			})

			p, err := reg.Active()
			if err != nil {
				t.Fatalf("Active: unexpected error: %v", err)
			}
			if p.Name() != name {
				t.Errorf("Name: got %q, want %q", p.Name(), name)
			}
		})
	}
}
