// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bactfetch CLI.
// bactfetch indexes Ensembl Bacteria genomes, searches them by species or
// lineage, and downloads their sequence files.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bactfetch/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the bactfetch CLI.
var rootCmd = &cobra.Command{
	Use:   "bactfetch",
	Short: "Search and download Ensembl Bacteria genome files",
	Long: `bactfetch builds a local index of bacterial genomes from Ensembl Bacteria,
searches it by species name or taxonomic lineage, and downloads the matching
genome files.

Two sources are supported. "search" reads the Ensembl Bacteria FTP index page
and downloads EMBL records from ENA. "catalog" works on a local snapshot of
the Ensembl REST species catalog and downloads GenBank files from the Ensembl
Genomes FTP archive.

Data products go to stdout; progress and warnings go to stderr.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./bactfetch.yaml or ~/.config/bactfetch/bactfetch.yaml)")
	pf.StringP("out-dir", "o", ".", "destination directory for downloads")
	pf.Bool("force", false, "download files even if already present on disk")
	pf.Duration("delay", 0, "pause between consecutive downloads (default 10s)")
	pf.Bool("color", false, "colorize diagnostics on stderr")

	for key, flag := range map[string]string{
		"retrieval.out_dir": "out-dir",
		"retrieval.force":   "force",
		"retrieval.delay":   "delay",
		"color":             "color",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bactfetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bactfetch"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("BACTFETCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
