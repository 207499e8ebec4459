// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/bactfetch/internal/catalog"
	"github.com/pdiddy/bactfetch/internal/fetch"
	"github.com/pdiddy/bactfetch/internal/ftparchive"
	"github.com/pdiddy/bactfetch/internal/listing"
	"github.com/pdiddy/bactfetch/internal/plan"
	"github.com/pdiddy/bactfetch/internal/snapshot"
	"github.com/pdiddy/bactfetch/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "bactfetch/0.1"
)

// setDefaults registers the built-in value of every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", defaultTimeout)
	v.SetDefault("http.user_agent", defaultUserAgent)
	v.SetDefault("listing.url", listing.DefaultURL)
	v.SetDefault("catalog.base_url", catalog.DefaultBaseURL)
	v.SetDefault("catalog.division", catalog.DefaultDivision)
	v.SetDefault("catalog.snapshot_path", snapshot.DefaultPath)
	v.SetDefault("ftp.addr", ftparchive.DefaultAddr)
	v.SetDefault("ftp.root", ftparchive.DefaultRoot)
	v.SetDefault("ftp.timeout", defaultTimeout)
	v.SetDefault("retrieval.embl_base_url", plan.DefaultEMBLBaseURL)
	v.SetDefault("retrieval.out_dir", ".")
}

// loadConfig assembles a Config from v, applying loaded secrets.
func loadConfig(v *viper.Viper) types.Config {
	httpCfg := types.HTTPConfig{
		Timeout:   v.GetDuration("http.timeout"),
		UserAgent: v.GetString("http.user_agent"),
	}
	if httpCfg.Timeout == 0 {
		httpCfg.Timeout = defaultTimeout
	}

	delay := v.GetDuration("retrieval.delay")
	if delay == 0 {
		delay = fetch.DefaultDelay
	}

	cfg := types.Config{
		Listing: types.ListingConfig{
			URL: v.GetString("listing.url"),
		},
		Catalog: types.CatalogConfig{
			HTTPConfig:   httpCfg,
			BaseURL:      v.GetString("catalog.base_url"),
			Division:     v.GetString("catalog.division"),
			SnapshotPath: v.GetString("catalog.snapshot_path"),
		},
		FTP: types.FTPConfig{
			Addr:     v.GetString("ftp.addr"),
			Root:     v.GetString("ftp.root"),
			User:     v.GetString("ftp.user"),
			Password: v.GetString("ftp.password"),
			Timeout:  v.GetDuration("ftp.timeout"),
		},
		Retrieval: types.RetrievalConfig{
			HTTPConfig:  httpCfg,
			EMBLBaseURL: v.GetString("retrieval.embl_base_url"),
			OutDir:      v.GetString("retrieval.out_dir"),
			Force:       v.GetBool("retrieval.force"),
			Delay:       delay,
		},
		Color: v.GetBool("color"),
	}
	loadedSecrets.ApplyFTP(&cfg.FTP)
	return cfg
}

func newHTTPClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}
