// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imagesearch looks up stock photos for draft posts using the
// Pexels search API.
package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoResults is returned when a search succeeds but matches no photos.
var ErrNoResults = errors.New("imagesearch: no results")

// DefaultBaseURL is the Pexels API root.
const DefaultBaseURL = "https://api.pexels.com/v1"

// Client queries the Pexels search endpoint for a single landscape photo.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Pexels client. An empty baseURL selects DefaultBaseURL.
func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// SearchImage returns the large-size URL of the first landscape photo
// matching query.
func (c *Client) SearchImage(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("pexels request: %w", err)
	}
	// Pexels takes the bare key, no scheme.
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pexels http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("pexels read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pexels API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("pexels unmarshal: %w", err)
	}

	if len(result.Photos) == 0 || result.Photos[0].Src.Large == "" {
		return "", ErrNoResults
	}
	return result.Photos[0].Src.Large, nil
}

type searchResponse struct {
	Photos []struct {
		Src struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}
