// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/bactfetch/internal/httputil"
	"github.com/pdiddy/bactfetch/pkg/types"
)

const (
	DefaultBaseURL  = "https://rest.ensembl.org"
	DefaultDivision = "EnsemblBacteria"

	jsonContentType = "application/json"
)

// Client queries the Ensembl REST API for the species catalog and for
// taxonomy subtrees. It implements TaxonResolver.
type Client struct {
	HTTP     *http.Client
	BaseURL  string
	Division string

	UserAgent string
}

// NewClient returns a Client for cfg, filling in defaults.
func NewClient(client *http.Client, cfg types.CatalogConfig) *Client {
	c := &Client{
		HTTP:      client,
		BaseURL:   cfg.BaseURL,
		Division:  cfg.Division,
		UserAgent: cfg.UserAgent,
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Division == "" {
		c.Division = DefaultDivision
	}
	return c
}

func (c *Client) endpoint(path string) string {
	params := url.Values{
		"division":     {c.Division},
		"content-type": {jsonContentType},
	}
	return strings.TrimRight(c.BaseURL, "/") + path + "?" + params.Encode()
}

// Species fetches the genome catalog of the configured division.
func (c *Client) Species(ctx context.Context) (*Index, error) {
	resp, err := httputil.Get(ctx, c.HTTP, c.endpoint("/info/species"), c.UserAgent, jsonContentType)
	if err != nil {
		return nil, fmt.Errorf("fetching species catalog: %w", err)
	}
	defer resp.Body.Close()
	return Decode(resp.Body)
}

// subtreeGenome is one element of the /info/genomes/taxonomy response.
type subtreeGenome struct {
	Name string `json:"name"`
}

// Subtree returns the names of the genomes whose lineage includes taxon.
func (c *Client) Subtree(ctx context.Context, taxon string) ([]string, error) {
	u := c.endpoint("/info/genomes/taxonomy/" + url.PathEscape(taxon))
	resp, err := httputil.Get(ctx, c.HTTP, u, c.UserAgent, jsonContentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var genomes []subtreeGenome
	if err := json.NewDecoder(resp.Body).Decode(&genomes); err != nil {
		return nil, fmt.Errorf("parsing taxonomy response: %w", err)
	}
	names := make([]string, 0, len(genomes))
	for _, g := range genomes {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return names, nil
}
