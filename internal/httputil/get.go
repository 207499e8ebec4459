// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/bactfetch/pkg/types"
)

// Get issues a single GET request. Connections are attempted once; a
// transport error or a non-2xx status is returned as types.ErrTransport.
// On success the caller owns resp.Body.
func Get(ctx context.Context, client *http.Client, url, userAgent, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", types.ErrTransport, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d from %s", types.ErrTransport, resp.StatusCode, url)
	}
	return resp, nil
}

// GetBytes fetches url and returns the whole body.
func GetBytes(ctx context.Context, client *http.Client, url, userAgent, accept string) ([]byte, error) {
	resp, err := Get(ctx, client, url, userAgent, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrTransport, url, err)
	}
	return data, nil
}
