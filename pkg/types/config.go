package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bactfetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ListingConfig locates the Ensembl Bacteria FTP index page that maps
// species to EMBL accessions.
type ListingConfig struct {
	// URL is the HTML index page fetched when no local copy is given.
	URL string `json:"url" yaml:"url"`
}

// CatalogConfig holds settings for the REST species catalog.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the REST server root (e.g. "https://rest.ensembl.org").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Division restricts the catalog to one Ensembl division
	// (default "EnsemblBacteria").
	Division string `json:"division" yaml:"division"`

	// SnapshotPath is the local SQLite file holding the last refreshed catalog.
	SnapshotPath string `json:"snapshot_path" yaml:"snapshot_path"`
}

// FTPConfig locates the genome archive.
type FTPConfig struct {
	// Addr is host:port of the FTP server.
	Addr string `json:"addr" yaml:"addr"`

	// Root is the directory holding one sub-directory per genome name.
	Root string `json:"root" yaml:"root"`

	// User and Password default to anonymous access.
	User     string `json:"user" yaml:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// RetrievalConfig holds settings for planning and fetching genome files.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// EMBLBaseURL is prefixed to an accession to form the EMBL download URL.
	EMBLBaseURL string `json:"embl_base_url" yaml:"embl_base_url"`

	// OutDir is the destination directory for downloaded files.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// Force re-downloads files that already exist in OutDir.
	Force bool `json:"force" yaml:"force"`

	// Delay is the fixed pause between consecutive downloads (default 10s).
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// Config groups all settings for a bactfetch run.
type Config struct {
	Listing   ListingConfig   `json:"listing" yaml:"listing"`
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog"`
	FTP       FTPConfig       `json:"ftp" yaml:"ftp"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Color     bool            `json:"color" yaml:"color"`
}
