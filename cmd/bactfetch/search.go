// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bactfetch/internal/console"
	"github.com/pdiddy/bactfetch/internal/fetch"
	"github.com/pdiddy/bactfetch/internal/httputil"
	"github.com/pdiddy/bactfetch/internal/index"
	"github.com/pdiddy/bactfetch/internal/listing"
	"github.com/pdiddy/bactfetch/internal/plan"
	"github.com/pdiddy/bactfetch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search SPECIES",
	Short: "Search the Ensembl Bacteria index for EMBL records of a species or strain",
	Long: `Search builds a species → EMBL accession index from the Ensembl Bacteria
FTP index page and prints the entries whose species name contains SPECIES
(case-insensitive, underscores match spaces) as "species<TAB>accession" lines.

The index page is downloaded unless --index or --table is given. Several
--index files are merged. With --download, the EMBL record of every match is
fetched from ENA into --out-dir; files already present are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringArrayP("index", "i", nil, "Ensembl index HTML file (repeatable)")
	searchCmd.Flags().String("table", "", "species table file produced by --save-table")
	searchCmd.Flags().String("save-table", "", "write the full species index to this file")
	searchCmd.Flags().BoolP("download", "d", false, "download the EMBL files of the matches")
	searchCmd.Flags().BoolP("count", "c", false, "print only the number of matches")
	searchCmd.Flags().String("manifest", "", "write the download manifest to this YAML file")

	rootCmd.AddCommand(searchCmd)
}

// searchOptions carries the flags of one search run.
type searchOptions struct {
	Query      string
	IndexFiles []string
	Table      string
	SaveTable  string
	Download   bool
	Count      bool
	Manifest   string
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts := searchOptions{Query: args[0]}
	opts.IndexFiles, _ = cmd.Flags().GetStringArray("index")
	opts.Table, _ = cmd.Flags().GetString("table")
	opts.SaveTable, _ = cmd.Flags().GetString("save-table")
	opts.Download, _ = cmd.Flags().GetBool("download")
	opts.Count, _ = cmd.Flags().GetBool("count")
	opts.Manifest, _ = cmd.Flags().GetString("manifest")

	cfg := loadConfig(viper.GetViper())
	stderr := console.NewWriter(os.Stderr, console.Style{Color: cfg.Color})
	client := newHTTPClient(cfg.Retrieval.HTTPConfig)

	return speciesSearch(cmd.Context(), client, cfg, opts, os.Stdout, stderr)
}

// buildSpeciesIndex assembles the index from a saved table, local index
// pages, or the remote index page, in that order of preference.
func buildSpeciesIndex(ctx context.Context, client *http.Client, cfg types.Config, opts searchOptions, stderr io.Writer) (*index.SpeciesIndex, error) {
	idx := index.New()
	if opts.Table != "" {
		loaded, err := index.LoadTable(opts.Table)
		if err != nil {
			return nil, err
		}
		idx = loaded
	}

	for _, path := range opts.IndexFiles {
		parsed, err := listing.ParseFile(path, idx, stderr)
		if err != nil {
			return nil, err
		}
		idx = parsed
	}

	if opts.Table == "" && len(opts.IndexFiles) == 0 {
		fmt.Fprintf(stderr, "downloading: %s (index page)\n", cfg.Listing.URL)
		page, err := httputil.GetBytes(ctx, client, cfg.Listing.URL, cfg.Retrieval.UserAgent, "text/html")
		if err != nil {
			return nil, fmt.Errorf("fetching index page: %w", err)
		}
		parsed, err := listing.Parse(bytes.NewReader(page), idx, stderr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Listing.URL, err)
		}
		idx = parsed
	}
	return idx, nil
}

func speciesSearch(ctx context.Context, client *http.Client, cfg types.Config, opts searchOptions, stdout, stderr io.Writer) error {
	idx, err := buildSpeciesIndex(ctx, client, cfg, opts, stderr)
	if err != nil {
		return err
	}
	if opts.SaveTable != "" {
		if err := idx.SaveTable(opts.SaveTable); err != nil {
			return fmt.Errorf("saving species table: %w", err)
		}
	}

	matches := idx.Search(opts.Query)
	if opts.Count {
		fmt.Fprintln(stdout, matches.Len())
	} else if err := matches.WriteTable(stdout); err != nil {
		return err
	}

	if !opts.Download {
		return nil
	}
	m := plan.EMBL(matches, cfg.Retrieval)
	fetcher := &fetch.Fetcher{
		HTTP:      client,
		UserAgent: cfg.Retrieval.UserAgent,
		Delay:     cfg.Retrieval.Delay,
	}
	return download(ctx, fetcher, m, opts.Manifest, stderr)
}

// download writes the optional manifest and runs the batch.
func download(ctx context.Context, f *fetch.Fetcher, m types.Manifest, manifestPath string, stderr io.Writer) error {
	if manifestPath != "" {
		if err := plan.WriteManifest(manifestPath, m); err != nil {
			return err
		}
	}
	result := f.Batch(ctx, m, stderr)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to download", result.Failed)
	}
	return nil
}
