// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bactfetch/internal/catalog"
	"github.com/pdiddy/bactfetch/internal/console"
	"github.com/pdiddy/bactfetch/internal/fetch"
	"github.com/pdiddy/bactfetch/internal/ftparchive"
	"github.com/pdiddy/bactfetch/internal/plan"
	"github.com/pdiddy/bactfetch/internal/snapshot"
	"github.com/pdiddy/bactfetch/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Work with the Ensembl REST species catalog (refresh, search)",
	Long: `Catalog keeps a local snapshot of the Ensembl REST species catalog for the
EnsemblBacteria division. Refresh the snapshot first, then search it by name
or by taxon and optionally download GenBank files from the FTP archive.`,
}

// --- refresh subcommand ---

var catalogRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Download the species catalog and store it as the local snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(viper.GetViper())
		client := catalog.NewClient(newHTTPClient(cfg.Catalog.HTTPConfig), cfg.Catalog)
		return refreshCatalog(cmd.Context(), client, cfg.Catalog.SnapshotPath, os.Stderr)
	},
}

// speciesSource fetches the full catalog.
type speciesSource interface {
	Species(ctx context.Context) (*catalog.Index, error)
}

func refreshCatalog(ctx context.Context, src speciesSource, snapshotPath string, stderr io.Writer) error {
	idx, err := src.Species(ctx)
	if err != nil {
		return err
	}

	store, err := snapshot.Open(snapshotPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(ctx, idx.Records(), time.Now()); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	fmt.Fprintf(stderr, "stored %d genomes in %s\n", idx.Len(), snapshotPath)
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search the local catalog snapshot by name or taxon",
	Long: `Search filters the local catalog snapshot. QUERY is matched
case-insensitively against the genome name, the display name, or both
(--field). --taxon keeps only genomes under the named taxon, resolved through
the REST taxonomy endpoint. Matches are printed as a tab-separated table.

With --download, each matching genome directory in the FTP archive is listed
and its chromosome files (not CHECKSUMS, README or plasmids) are fetched into
--out-dir; files already present are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogSearch,
}

func init() {
	catalogSearchCmd.Flags().String("field", "any", "field to match: name, display, or any")
	catalogSearchCmd.Flags().String("taxon", "", "restrict to genomes under this taxon (name or id)")
	catalogSearchCmd.Flags().BoolP("download", "d", false, "download the GenBank files of the matches")
	catalogSearchCmd.Flags().BoolP("count", "c", false, "print only the number of matches")
	catalogSearchCmd.Flags().String("manifest", "", "write the download manifest to this YAML file")

	catalogCmd.AddCommand(catalogRefreshCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	rootCmd.AddCommand(catalogCmd)
}

// catalogSearchOptions carries the flags of one catalog search run.
type catalogSearchOptions struct {
	Query    string
	Field    catalog.Field
	Taxon    string
	Download bool
	Count    bool
	Manifest string
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	var opts catalogSearchOptions
	if len(args) > 0 {
		opts.Query = args[0]
	}
	fieldName, _ := cmd.Flags().GetString("field")
	field, err := catalog.ParseField(fieldName)
	if err != nil {
		return err
	}
	opts.Field = field
	opts.Taxon, _ = cmd.Flags().GetString("taxon")
	opts.Download, _ = cmd.Flags().GetBool("download")
	opts.Count, _ = cmd.Flags().GetBool("count")
	opts.Manifest, _ = cmd.Flags().GetString("manifest")

	cfg := loadConfig(viper.GetViper())
	stderr := console.NewWriter(os.Stderr, console.Style{Color: cfg.Color})
	client := catalog.NewClient(newHTTPClient(cfg.Catalog.HTTPConfig), cfg.Catalog)

	matches, err := searchCatalog(cmd.Context(), client, cfg, opts, os.Stdout, stderr)
	if err != nil || matches == nil || !opts.Download {
		return err
	}

	session, err := ftparchive.Dial(cfg.FTP)
	if err != nil {
		return err
	}
	defer session.Close()

	m, err := plan.FTP(session, matches.Records(), cfg.FTP.Root, cfg.Retrieval)
	if err != nil {
		return err
	}
	fetcher := &fetch.Fetcher{FTP: session, Delay: cfg.Retrieval.Delay}
	return download(cmd.Context(), fetcher, m, opts.Manifest, stderr)
}

// searchCatalog loads the snapshot, filters it and prints the result. It
// returns a nil index without error when no snapshot exists yet.
func searchCatalog(ctx context.Context, resolver catalog.TaxonResolver, cfg types.Config, opts catalogSearchOptions, stdout, stderr io.Writer) (*catalog.Index, error) {
	path := cfg.Catalog.SnapshotPath
	records, err := loadSnapshot(ctx, path, stderr)
	if errors.Is(err, types.ErrNoSnapshot) {
		fmt.Fprintf(stderr, "error: no local catalog snapshot found at %s; run \"bactfetch catalog refresh\" first\n", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	idx := catalog.New(records)
	if opts.Query != "" {
		idx = idx.Filter(opts.Query, opts.Field)
	}
	if opts.Taxon != "" {
		idx, err = idx.FilterByTaxon(ctx, resolver, opts.Taxon)
		if err != nil {
			return nil, err
		}
	}

	if opts.Count {
		fmt.Fprintln(stdout, idx.Len())
		return idx, nil
	}
	table, err := idx.Table()
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(stdout, table); err != nil {
		return nil, err
	}
	return idx, nil
}

func loadSnapshot(ctx context.Context, path string, stderr io.Writer) ([]types.GenomeRecord, error) {
	store, err := snapshot.OpenExisting(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	refreshed, err := store.RefreshedAt(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(stderr, "catalog snapshot %s (refreshed %s)\n", path, refreshed.Format(time.DateTime))
	return store.Load(ctx)
}
