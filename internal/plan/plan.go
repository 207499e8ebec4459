// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan decides which remote genome files a retrieval run must
// fetch. Files whose local destination already exists are left out unless
// the run forces overwrites.
package plan

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bactfetch/internal/index"
	"github.com/pdiddy/bactfetch/pkg/types"
)

// DefaultEMBLBaseURL is the ENA view endpoint an accession is appended to.
const DefaultEMBLBaseURL = "http://www.ebi.ac.uk/ena/data/view/"

const (
	emblSuffix  = ".EMBL.gz"
	emblQuery   = "&display=text&download=gzip"
	slashToken  = "<SLASH>"
	plasmidMark = "plasmid"
)

// nonDataFiles are archive entries that never hold sequence data.
var nonDataFiles = map[string]bool{
	"CHECKSUMS": true,
	"README":    true,
}

// Lister lists the file names in a remote archive directory.
type Lister interface {
	List(dir string) ([]string, error)
}

// EMBLFileName returns the local file name for a species' EMBL record:
// "<species>.<accession>.EMBL.gz" with spaces as "-" and "/" as "<SLASH>".
func EMBLFileName(species, accession string) string {
	stem := strings.NewReplacer(" ", "-", "/", slashToken).Replace(species + "." + accession)
	return stem + emblSuffix
}

// EMBLURL returns the gzip download URL for accession.
func EMBLURL(base, accession string) string {
	if base == "" {
		base = DefaultEMBLBaseURL
	}
	return base + accession + emblQuery
}

// exists reports whether name is already present in dir.
func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// EMBL plans the EMBL downloads for every species in idx, in index order.
// It performs no network I/O.
func EMBL(idx *index.SpeciesIndex, cfg types.RetrievalConfig) types.Manifest {
	m := types.Manifest{Dir: cfg.OutDir}
	for _, e := range idx.Entries() {
		name := EMBLFileName(e.Species, e.Accession)
		if !cfg.Force && exists(cfg.OutDir, name) {
			m.Skipped++
			continue
		}
		m.Files = append(m.Files, types.RemoteFileRef{
			Source:     types.SourceHTTP,
			RemotePath: EMBLURL(cfg.EMBLBaseURL, e.Accession),
			LocalName:  name,
			Label:      e.Species,
		})
	}
	return m
}

// IsDataFile reports whether an archive entry holds chromosome sequence
// data: checksum and readme files and plasmid sequences are excluded.
func IsDataFile(name string) bool {
	if nonDataFiles[name] {
		return false
	}
	return !strings.Contains(strings.ToLower(name), plasmidMark)
}

// FTP plans the archive downloads for records by listing root/<name> for
// each genome. A listing failure aborts planning.
func FTP(lister Lister, records []types.GenomeRecord, root string, cfg types.RetrievalConfig) (types.Manifest, error) {
	m := types.Manifest{Dir: cfg.OutDir}
	for _, r := range records {
		dir := path.Join(root, r.Name)
		entries, err := lister.List(dir)
		if err != nil {
			return m, fmt.Errorf("listing %s for %s: %w", dir, r.Name, err)
		}
		for _, name := range entries {
			if !IsDataFile(name) {
				continue
			}
			if !cfg.Force && exists(cfg.OutDir, name) {
				m.Skipped++
				continue
			}
			m.Files = append(m.Files, types.RemoteFileRef{
				Source:     types.SourceFTP,
				RemotePath: path.Join(dir, name),
				LocalName:  name,
				Label:      r.Name,
			})
		}
	}
	return m, nil
}

// WriteManifest saves m as YAML.
func WriteManifest(filePath string, m types.Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(filePath, data, 0o644)
}
