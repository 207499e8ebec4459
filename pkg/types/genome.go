// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bactfetch pipeline:
// species index entries, catalog genome records, and retrieval manifests.
package types

// SpeciesEntry pairs a species name with its remote accession identifier.
type SpeciesEntry struct {
	Species   string `json:"species" yaml:"species"`
	Accession string `json:"accession" yaml:"accession"`
}

// GenomeRecord is one genome from the REST species catalog. Records are
// loaded verbatim and never mutated, only filtered.
type GenomeRecord struct {
	Accession string `json:"accession" yaml:"accession"`
	Assembly  string `json:"assembly" yaml:"assembly"`

	// CommonName is null for most bacteria.
	CommonName *string `json:"common_name" yaml:"common_name"`

	DisplayName string `json:"display_name" yaml:"display_name"`
	Division    string `json:"division" yaml:"division"`

	// Name is the genome slug (e.g. "escherichia_coli_str_k_12_substr_mg1655").
	Name string `json:"name" yaml:"name"`

	Release int    `json:"release" yaml:"release"`
	TaxonID string `json:"taxon_id" yaml:"taxon_id"`
}

// Source identifies the transport used to retrieve a remote file.
type Source int

const (
	SourceHTTP Source = iota
	SourceFTP
)

func (s Source) String() string {
	switch s {
	case SourceHTTP:
		return "http"
	case SourceFTP:
		return "ftp"
	default:
		return "unknown"
	}
}

// MarshalText renders the source by name in exported manifests.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RemoteFileRef is one file selected for retrieval. RemotePath is a full
// URL for SourceHTTP and an absolute archive path for SourceFTP.
type RemoteFileRef struct {
	Source     Source `json:"source" yaml:"source"`
	RemotePath string `json:"remote_path" yaml:"remote_path"`
	LocalName  string `json:"local_name" yaml:"local_name"`

	// Label names the species or genome the file belongs to, for progress output.
	Label string `json:"label" yaml:"label"`
}

// Manifest is the ordered list of files chosen for one retrieval run.
type Manifest struct {
	Dir     string          `json:"dir" yaml:"dir"`
	Files   []RemoteFileRef `json:"files" yaml:"files"`
	Skipped int             `json:"skipped" yaml:"skipped"`
}

// Len returns the number of files to fetch.
func (m Manifest) Len() int {
	return len(m.Files)
}
